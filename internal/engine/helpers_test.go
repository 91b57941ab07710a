package engine

import (
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/actuator"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

const (
	frameW = 1280.0
	frameH = 720.0
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type harness struct {
	t     *testing.T
	e     *Engine
	act   *actuator.Mock
	clock *fakeClock
}

func newHarness(t *testing.T, mutate ...func(*Config)) *harness {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	cfg := DefaultConfig()
	cfg.Now = clock.Now
	for _, m := range mutate {
		m(&cfg)
	}
	act := actuator.NewMock()
	e, err := New(cfg, act)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &harness{t: t, e: e, act: act, clock: clock}
}

// inMode skips calibration and puts the engine in m with the guards elapsed.
func (h *harness) inMode(m Mode) *harness {
	h.e.mode = m
	h.e.lastTransition = time.Time{}
	return h
}

// frame processes one frame with the given hands and fails the test on error.
func (h *harness) frame(hands ...detector.HandLandmarks) {
	h.t.Helper()
	if err := h.e.ProcessFrame(detector.NewFrameSet(hands, h.clock.now)); err != nil {
		h.t.Fatalf("ProcessFrame() error = %v", err)
	}
}

// hold feeds the same hands every step until total has elapsed, processing a
// frame at both ends of the interval.
func (h *harness) hold(total, step time.Duration, hands ...detector.HandLandmarks) {
	h.t.Helper()
	for elapsed := time.Duration(0); ; elapsed += step {
		h.frame(hands...)
		if elapsed >= total {
			return
		}
		h.clock.Advance(step)
	}
}

// px converts frame pixels to a normalized point.
func px(x, y float64) detector.Point3D {
	return detector.Point3D{X: x / frameW, Y: y / frameH}
}

func left(d gesture.Digits) detector.HandLandmarks {
	return detector.SyntheticHand(detector.Left, d)
}

func right(d gesture.Digits) detector.HandLandmarks {
	return detector.SyntheticHand(detector.Right, d)
}

// pinch returns a right hand with index and middle extended, the index tip at
// (x, y) and the middle tip gap pixels to its right.
func pinch(x, y, gap float64) detector.HandLandmarks {
	return right(gesture.Digits{gesture.Index: true, gesture.Middle: true}).
		MoveTipTo(detector.IndexTip, x/frameW, y/frameH).
		WithTip(detector.MiddleTip, px(x+gap, y))
}

// thumbGap returns a right hand with thumb and index extended and the index
// tip d pixels straight above the thumb tip.
func thumbGap(d float64) detector.HandLandmarks {
	h := right(gesture.Digits{gesture.Thumb: true, gesture.Index: true})
	tip := h.Points[detector.ThumbTip]
	return h.WithTip(detector.IndexTip, px(tip.X*frameW, tip.Y*frameH-d))
}

func measure(h detector.HandLandmarks) gesture.FingerState {
	s := detector.PoseSample{HandLandmarks: h}
	return gesture.NewExtractor(detector.FrameSize{Width: frameW, Height: frameH}).Extract(&s)
}
