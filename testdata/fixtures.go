// Package testdata provides scripted hand poses for end-to-end tests. Poses
// are built in the pixel space of a 1280x720 camera frame.
package testdata

import (
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

const (
	FrameWidth  = 1280.0
	FrameHeight = 720.0
)

// Px converts frame pixels to a normalized point.
func Px(x, y float64) detector.Point3D {
	return detector.Point3D{X: x / FrameWidth, Y: y / FrameHeight}
}

// Step is a set of hands held for a duration.
type Step struct {
	Name  string
	Hands []detector.HandLandmarks
	Hold  time.Duration
}

// Script is a sequence of steps played at a fixed frame interval.
type Script []Step

// Duration returns the total hold time of the script.
func (s Script) Duration() time.Duration {
	var total time.Duration
	for _, step := range s {
		total += step.Hold
	}
	return total
}

// Clock is a manually advanced time source.
type Clock struct {
	now time.Time
}

// NewClock returns a Clock starting at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Unix(1700000000, 0).UTC()}
}

func (c *Clock) Now() time.Time          { return c.now }
func (c *Clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// Play feeds every step to process, one frame per interval, advancing clock
// between frames. Each step gets a frame at both ends of its hold. Play stops
// at the first error.
func (s Script) Play(clock *Clock, interval time.Duration, process func(detector.FrameSet) error) error {
	for _, step := range s {
		for elapsed := time.Duration(0); ; elapsed += interval {
			if err := process(detector.NewFrameSet(step.Hands, clock.Now())); err != nil {
				return err
			}
			if elapsed >= step.Hold {
				break
			}
			clock.Advance(interval)
		}
		clock.Advance(interval)
	}
	return nil
}

// Hold builds a single step.
func Hold(name string, d time.Duration, hands ...detector.HandLandmarks) Step {
	return Step{Name: name, Hands: hands, Hold: d}
}

// OpenHand is a right hand with every digit extended.
func OpenHand() detector.HandLandmarks {
	return detector.OpenPalmLandmarks(detector.Right)
}

// ThumbPinch is a right hand with index and middle extended and the thumb tip
// gap pixels to the right of the index tip.
func ThumbPinch(gap float64) detector.HandLandmarks {
	h := detector.SyntheticHand(detector.Right, [5]bool{detector.Index: true, detector.Middle: true})
	tip := h.Points[detector.IndexTip]
	return h.WithTip(detector.ThumbTip, detector.Point3D{X: tip.X + gap/FrameWidth, Y: tip.Y})
}

// Calibration walks through the procedure: an open hand, a pinch, then the
// completion pause with no hands.
func Calibration(hold, finish time.Duration) Script {
	return Script{
		Hold("open hand", hold, OpenHand()),
		Hold("pinch", hold, ThumbPinch(25)),
		Hold("complete", finish),
	}
}

// Sign returns the left-hand pose with exactly the given fingers extended.
func Sign(fingers ...int) detector.HandLandmarks {
	var d [5]bool
	for _, f := range fingers {
		d[f] = true
	}
	return detector.SyntheticHand(detector.Left, d)
}

// Left-hand mode signs.
var (
	MouseSign    = func() detector.HandLandmarks { return Sign(detector.Index) }
	SystemSign   = func() detector.HandLandmarks { return Sign(detector.Index, detector.Middle) }
	KeyboardSign = func() detector.HandLandmarks { return Sign(detector.Index, detector.Middle, detector.Ring) }
	IdleSign     = func() detector.HandLandmarks { return detector.OpenPalmLandmarks(detector.Left) }
)

// PointAt is a right hand with only the index extended and its tip at (x, y).
func PointAt(x, y float64) detector.HandLandmarks {
	return detector.PointingLandmarks(detector.Right).MoveTipTo(detector.IndexTip, x/FrameWidth, y/FrameHeight)
}

// PinchAt is a right hand with index and middle extended, the index tip at
// (x, y) and the middle tip gap pixels to its right.
func PinchAt(x, y, gap float64) detector.HandLandmarks {
	return detector.SyntheticHand(detector.Right, [5]bool{detector.Index: true, detector.Middle: true}).
		MoveTipTo(detector.IndexTip, x/FrameWidth, y/FrameHeight).
		WithTip(detector.MiddleTip, Px(x+gap, y))
}
