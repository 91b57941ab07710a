// Package gesture turns hand poses into finger states and recognizes
// frame-to-frame gestures such as two-hand zoom and one-hand scroll.
package gesture

import (
	"strings"

	"github.com/ayusman/mudra/internal/detector"
)

// Finger identifies one digit, thumb first.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
)

// Digits is the extended (true) / retracted (false) state of each finger.
type Digits [5]bool

// Count returns the number of extended digits.
func (d Digits) Count() int {
	n := 0
	for _, up := range d {
		if up {
			n++
		}
	}
	return n
}

// Extended reports whether f is extended.
func (d Digits) Extended(f Finger) bool {
	return d[f]
}

// Exactly reports whether the extended digits are precisely fs.
func (d Digits) Exactly(fs ...Finger) bool {
	var want Digits
	for _, f := range fs {
		want[f] = true
	}
	return d == want
}

// String renders the vector as "01100", thumb first.
func (d Digits) String() string {
	var b strings.Builder
	for _, up := range d {
		if up {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// FingerState is derived from one PoseSample and lives for one frame.
// Distances are in frame pixels.
type FingerState struct {
	Digits          Digits
	ThumbIndexDist  float64
	IndexMiddleDist float64
	ThumbTip        detector.Pixel
	IndexTip        detector.Pixel
	MiddleTip       detector.Pixel
}

// Extractor converts pose samples into finger states against a fixed frame size.
type Extractor struct {
	Frame detector.FrameSize
}

// NewExtractor creates an Extractor for the given camera resolution.
func NewExtractor(frame detector.FrameSize) Extractor {
	return Extractor{Frame: frame}
}

// Extract computes the digit vector and key fingertip distances.
//
// The thumb is extended when its tip lies outward of the joint two landmarks
// below it: to the right for a right hand, to the left for a left hand. The
// other digits are extended when the tip is above (smaller y) the joint three
// landmarks below it. No rotation compensation is applied, so a tilted hand can
// misreport; occluded or offscreen landmarks degrade the same way.
func (e Extractor) Extract(p *detector.PoseSample) FingerState {
	pts := &p.Points

	var d Digits
	tip, joint := pts[detector.ThumbTip], pts[detector.ThumbTip-2]
	if p.Handedness == detector.Left {
		d[Thumb] = tip.X < joint.X
	} else {
		d[Thumb] = tip.X > joint.X
	}
	for f := Index; f <= Pinky; f++ {
		t := detector.FingerTips[f]
		d[f] = pts[t].Y < pts[t-3].Y
	}

	thumb := e.Frame.Pixel(pts[detector.ThumbTip])
	index := e.Frame.Pixel(pts[detector.IndexTip])
	middle := e.Frame.Pixel(pts[detector.MiddleTip])

	return FingerState{
		Digits:          d,
		ThumbIndexDist:  thumb.DistanceTo(index),
		IndexMiddleDist: index.DistanceTo(middle),
		ThumbTip:        thumb,
		IndexTip:        index,
		MiddleTip:       middle,
	}
}
