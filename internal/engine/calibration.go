package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Thresholds are the per-user distances, in frame pixels, derived by calibration.
type Thresholds struct {
	ClickDistance float64 `json:"click_distance"`
	VolMinDist    float64 `json:"vol_min_dist"`
	VolMaxDist    float64 `json:"vol_max_dist"`
}

// DefaultThresholds returns the thresholds used until calibration completes.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ClickDistance: 35,
		VolMinDist:    30,
		VolMaxDist:    200,
	}
}

// Validate checks ClickDistance > 0 and VolMinDist < VolMaxDist.
func (t Thresholds) Validate() error {
	if t.ClickDistance <= 0 {
		return fmt.Errorf("click distance must be positive, got %.2f", t.ClickDistance)
	}
	if t.VolMinDist < 0 || t.VolMinDist >= t.VolMaxDist {
		return fmt.Errorf("volume range must satisfy 0 <= min < max, got [%.2f, %.2f]", t.VolMinDist, t.VolMaxDist)
	}
	return nil
}

// Calibration step indices.
const (
	StepOpenHand = iota
	StepPinch
	StepComplete
)

const (
	minVolMaxDist = 150
	volMinPadding = 10
	clickPadding  = 15
)

var calibrationPrompts = [...]string{
	StepOpenHand: "Step 1: show an open hand for 3 seconds",
	StepPinch:    "Step 2: bring thumb and index together for 3 seconds",
	StepComplete: "Calibration complete",
}

// calibration is the 3-step procedure that measures Thresholds.
// A step's hold starts when a hand appears and restarts whenever the hand is
// lost; the procedure never regresses to an earlier step.
type calibration struct {
	step      int
	holding   bool
	holdStart time.Time
	measured  Thresholds

	hold   time.Duration
	finish time.Duration
}

func newCalibration(hold, finish time.Duration, base Thresholds) *calibration {
	return &calibration{hold: hold, finish: finish, measured: base}
}

// restart returns to step 0 keeping base as the fallback thresholds.
func (c *calibration) restart(base Thresholds) {
	c.step = StepOpenHand
	c.holding = false
	c.holdStart = time.Time{}
	c.measured = base
}

// calibrationOutcome reports what one observation did.
type calibrationOutcome struct {
	advanced bool
	done     bool
	err      error
}

// observe feeds one frame. state is nil when no hand is present.
func (c *calibration) observe(state *gesture.FingerState, now time.Time) calibrationOutcome {
	if c.step == StepComplete {
		if now.Sub(c.holdStart) >= c.finish {
			return calibrationOutcome{done: true}
		}
		return calibrationOutcome{}
	}

	if state == nil {
		if c.holding {
			c.holding = false
			return calibrationOutcome{err: fmt.Errorf("%w: hand lost during step %d", ErrInvalidCalibrationState, c.step+1)}
		}
		return calibrationOutcome{}
	}

	if !c.holding {
		c.holding = true
		c.holdStart = now
	}
	if now.Sub(c.holdStart) < c.hold {
		return calibrationOutcome{}
	}

	switch c.step {
	case StepOpenHand:
		c.measured.VolMaxDist = math.Max(minVolMaxDist, state.ThumbIndexDist)
		c.step = StepPinch
	case StepPinch:
		volMin := state.ThumbIndexDist + volMinPadding
		if volMin >= c.measured.VolMaxDist {
			c.holdStart = now
			return calibrationOutcome{err: fmt.Errorf("%w: pinch distance %.1f is not below max %.1f",
				ErrInvalidCalibrationState, volMin, c.measured.VolMaxDist)}
		}
		c.measured.VolMinDist = volMin
		c.measured.ClickDistance = state.IndexMiddleDist + clickPadding
		c.step = StepComplete
	}
	c.holdStart = now
	return calibrationOutcome{advanced: true}
}

// progress returns the hold fraction for the current step in [0, 1].
func (c *calibration) progress(now time.Time) float64 {
	var total time.Duration
	switch {
	case c.step == StepComplete:
		total = c.finish
	case c.holding:
		total = c.hold
	default:
		return 0
	}
	if total <= 0 {
		return 1
	}
	return math.Min(1, float64(now.Sub(c.holdStart))/float64(total))
}

func (c *calibration) prompt() string {
	return calibrationPrompts[c.step]
}
