package capture

import "time"

// RateController picks the capture rate: ActiveFPS while there is motion,
// falling back to IdleFPS after Quiet without motion.
type RateController struct {
	IdleFPS   int
	ActiveFPS int
	Quiet     time.Duration

	active     bool
	lastMotion time.Time
}

// NewRateController starts in the idle rate.
func NewRateController(idleFPS, activeFPS int, quiet time.Duration) *RateController {
	return &RateController{IdleFPS: idleFPS, ActiveFPS: activeFPS, Quiet: quiet}
}

// Observe records one motion sample and returns the rate to use and whether it changed.
func (r *RateController) Observe(motion bool, now time.Time) (int, bool) {
	if motion {
		r.lastMotion = now
		if !r.active {
			r.active = true
			return r.ActiveFPS, true
		}
		return r.ActiveFPS, false
	}
	if r.active && now.Sub(r.lastMotion) > r.Quiet {
		r.active = false
		return r.IdleFPS, true
	}
	return r.FPS(), false
}

// Active reports whether the active rate is in effect.
func (r *RateController) Active() bool {
	return r.active
}

// FPS returns the current rate.
func (r *RateController) FPS() int {
	if r.active {
		return r.ActiveFPS
	}
	return r.IdleFPS
}

// Interval returns the time between frames at the current rate.
func (r *RateController) Interval() time.Duration {
	fps := r.FPS()
	if fps <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(fps)
}
