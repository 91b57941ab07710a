package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// Kind is a recognized frame-to-frame gesture.
type Kind int

const (
	None Kind = iota
	ZoomIn
	ZoomOut
	ScrollUp
	ScrollDown
)

func (k Kind) String() string {
	switch k {
	case ZoomIn:
		return "zoom-in"
	case ZoomOut:
		return "zoom-out"
	case ScrollUp:
		return "scroll-up"
	case ScrollDown:
		return "scroll-down"
	default:
		return "none"
	}
}

// TrackerConfig holds the movement thresholds, in frame pixels.
type TrackerConfig struct {
	ZoomThreshold   float64
	ScrollThreshold float64
}

// DefaultTrackerConfig returns the standard thresholds.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		ZoomThreshold:   15,
		ScrollThreshold: 10,
	}
}

// Tracker keeps the previous frame's pose per hand and compares consecutive
// frames. A hand missing from a frame clears its slot, so deltas are only
// computed across two consecutive frames in which the hand was present.
type Tracker struct {
	extractor Extractor
	config    TrackerConfig
	previous  map[detector.Handedness]detector.PoseSample
}

// NewTracker creates a Tracker measuring against the given frame size.
func NewTracker(frame detector.FrameSize, config TrackerConfig) *Tracker {
	return &Tracker{
		extractor: NewExtractor(frame),
		config:    config,
		previous:  make(map[detector.Handedness]detector.PoseSample, 2),
	}
}

// Observe evaluates one frame and records it as the new previous frame.
//
// With both hands present, a change of more than ZoomThreshold in the distance
// between hand centroids yields ZoomOut (separating) or ZoomIn (closing).
// With only the right hand present and exactly index+middle extended, a
// vertical index-tip move of more than ScrollThreshold yields ScrollUp
// (moving up) or ScrollDown.
func (t *Tracker) Observe(set detector.FrameSet) Kind {
	left, right := set.Hand(detector.Left), set.Hand(detector.Right)
	prevLeft, hasPrevLeft := t.previous[detector.Left]
	prevRight, hasPrevRight := t.previous[detector.Right]

	kind := None
	switch {
	case left != nil && right != nil:
		if hasPrevLeft && hasPrevRight {
			delta := t.handSpan(left, right) - t.handSpan(&prevLeft, &prevRight)
			if math.Abs(delta) > t.config.ZoomThreshold {
				if delta > 0 {
					kind = ZoomOut
				} else {
					kind = ZoomIn
				}
			}
		}

	case right != nil:
		state := t.extractor.Extract(right)
		if state.Digits.Exactly(Index, Middle) && hasPrevRight {
			prevY := t.extractor.Frame.Pixel(prevRight.Points[detector.IndexTip]).Y
			dy := state.IndexTip.Y - prevY
			if math.Abs(dy) > t.config.ScrollThreshold {
				if dy < 0 {
					kind = ScrollUp
				} else {
					kind = ScrollDown
				}
			}
		}
	}

	t.remember(detector.Left, left)
	t.remember(detector.Right, right)
	return kind
}

// Reset forgets both previous poses.
func (t *Tracker) Reset() {
	clear(t.previous)
}

// Previous returns the stored pose for a hand, if any.
func (t *Tracker) Previous(h detector.Handedness) (detector.PoseSample, bool) {
	p, ok := t.previous[h]
	return p, ok
}

func (t *Tracker) remember(h detector.Handedness, s *detector.PoseSample) {
	if s == nil {
		delete(t.previous, h)
		return
	}
	t.previous[h] = *s
}

// handSpan is the pixel distance between the two hand centroids.
func (t *Tracker) handSpan(left, right *detector.PoseSample) float64 {
	l := t.extractor.Frame.Pixel(left.Centroid())
	r := t.extractor.Frame.Pixel(right.Centroid())
	return r.DistanceTo(l)
}
