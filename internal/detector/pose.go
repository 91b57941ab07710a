package detector

import "time"

// PoseSample is one hand's landmarks for one frame.
// It is owned by the frame pipeline for the duration of that frame and never persisted.
type PoseSample struct {
	HandLandmarks
	FrameTime time.Time `json:"frame_time"`
}

// FrameSet holds every hand detected in a single camera frame (zero, one or two).
type FrameSet struct {
	Samples []PoseSample
	Time    time.Time
}

// NewFrameSet stamps detected hands with the frame time.
// Hands with an unknown handedness label are dropped.
func NewFrameSet(hands []HandLandmarks, t time.Time) FrameSet {
	set := FrameSet{Time: t, Samples: make([]PoseSample, 0, len(hands))}
	for _, h := range hands {
		if h.Handedness != Left && h.Handedness != Right {
			continue
		}
		set.Samples = append(set.Samples, PoseSample{HandLandmarks: h, FrameTime: t})
	}
	return set
}

// Hand returns the first sample with the given handedness, or nil.
func (f FrameSet) Hand(h Handedness) *PoseSample {
	for i := range f.Samples {
		if f.Samples[i].Handedness == h {
			return &f.Samples[i]
		}
	}
	return nil
}

// Empty reports whether no hand was detected.
func (f FrameSet) Empty() bool {
	return len(f.Samples) == 0
}
