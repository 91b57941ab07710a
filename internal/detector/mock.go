package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]HandLandmarks, len(m.hands))
	copy(out, m.hands)
	return out, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Digit positions in the synthetic hand, thumb first.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
)

// SyntheticHand builds a right-handed template pose with the given digits
// extended and mirrors it for the left hand. Extended digits point up (tip above
// the knuckle); retracted digits curl below it. The thumb extends outward,
// away from the palm, on the side its handedness dictates.
func SyntheticHand(h Handedness, extended [5]bool) HandLandmarks {
	lm := HandLandmarks{Handedness: h, Score: 0.95}

	lm.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	lm.Points[ThumbCMC] = Point3D{X: 0.54, Y: 0.76}
	lm.Points[ThumbMCP] = Point3D{X: 0.57, Y: 0.72}
	if extended[Thumb] {
		lm.Points[ThumbIP] = Point3D{X: 0.61, Y: 0.69}
		lm.Points[ThumbTip] = Point3D{X: 0.65, Y: 0.66}
	} else {
		lm.Points[ThumbIP] = Point3D{X: 0.55, Y: 0.69}
		lm.Points[ThumbTip] = Point3D{X: 0.52, Y: 0.68}
	}

	// Knuckle x for index..pinky.
	columns := [4]float64{0.55, 0.50, 0.45, 0.40}
	for i, x := range columns {
		mcp := IndexMCP + i*4
		lm.Points[mcp] = Point3D{X: x, Y: 0.66}
		if extended[i+1] {
			lm.Points[mcp+1] = Point3D{X: x, Y: 0.58}
			lm.Points[mcp+2] = Point3D{X: x, Y: 0.51}
			lm.Points[mcp+3] = Point3D{X: x, Y: 0.45}
		} else {
			lm.Points[mcp+1] = Point3D{X: x, Y: 0.62, Z: -0.04}
			lm.Points[mcp+2] = Point3D{X: x, Y: 0.67, Z: -0.05}
			lm.Points[mcp+3] = Point3D{X: x, Y: 0.71, Z: -0.03}
		}
	}

	if h == Left {
		for i := range lm.Points {
			lm.Points[i].X = 1 - lm.Points[i].X
		}
	}

	return lm
}

// OpenPalmLandmarks returns a hand with all five digits extended.
func OpenPalmLandmarks(h Handedness) HandLandmarks {
	return SyntheticHand(h, [5]bool{true, true, true, true, true})
}

// FistLandmarks returns a hand with every digit retracted.
func FistLandmarks(h Handedness) HandLandmarks {
	return SyntheticHand(h, [5]bool{})
}

// PointingLandmarks returns a hand with only the index finger extended.
func PointingLandmarks(h Handedness) HandLandmarks {
	return SyntheticHand(h, [5]bool{Index: true})
}

// WithTip returns a copy of the hand with one tip moved to p.
func (h HandLandmarks) WithTip(tip int, p Point3D) HandLandmarks {
	h.Points[tip] = p
	return h
}

// MoveTipTo translates the whole hand so that the given landmark lands on (x, y).
func (h HandLandmarks) MoveTipTo(landmark int, x, y float64) HandLandmarks {
	p := h.Points[landmark]
	return h.Translate(x-p.X, y-p.Y)
}
