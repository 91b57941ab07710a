// Package detector provides hand detection interfaces and the pose types consumed by the gesture engine.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// FingerTips lists the tip landmark of each digit, thumb first.
var FingerTips = [5]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// Handedness labels which hand a landmark set belongs to.
type Handedness string

const (
	Left  Handedness = "Left"
	Right Handedness = "Right"
)

// Point3D represents a 3D point in space with x, y, z coordinates.
// X and Y are normalized to the camera frame (0..1, y grows downward).
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness Handedness            `json:"handedness"`
	Score      float64               `json:"score"`
}

// Centroid returns the mean of all landmarks.
func (h *HandLandmarks) Centroid() Point3D {
	var c Point3D
	for _, p := range h.Points {
		c.X += p.X
		c.Y += p.Y
		c.Z += p.Z
	}
	c.X /= NumLandmarks
	c.Y /= NumLandmarks
	c.Z /= NumLandmarks
	return c
}

// Translate returns a copy of the hand shifted by (dx, dy) in normalized units.
func (h HandLandmarks) Translate(dx, dy float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}

// Pixel is a landmark position in screen-scaled camera coordinates.
type Pixel struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance between two pixels.
func (p Pixel) DistanceTo(q Pixel) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// FrameSize is the camera resolution landmarks are denormalized against.
// Every distance the engine compares must come from the same FrameSize.
type FrameSize struct {
	Width  float64
	Height float64
}

// Pixel denormalizes a landmark into frame pixels.
func (f FrameSize) Pixel(p Point3D) Pixel {
	return Pixel{X: p.X * f.Width, Y: p.Y * f.Height}
}
