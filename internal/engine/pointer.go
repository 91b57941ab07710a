package engine

import (
	"time"

	"github.com/ayusman/mudra/internal/actuator"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// pointer maps the right index fingertip to the screen and issues mouse actions.
type pointer struct {
	frame       detector.FrameSize
	screenW     float64
	screenH     float64
	margin      float64
	smoothening float64

	leftCooldown  time.Duration
	rightCooldown time.Duration

	smoothedX     float64
	smoothedY     float64
	dragging      bool
	cooldownUntil time.Time
}

// pointerEvent is one action the pointer decided to take this frame.
type pointerEvent struct {
	name    string
	command bool // discrete action, counted as an executed command
	run     func(actuator.Actuator) error
}

// mapToScreen linearly maps a camera pixel inside the margin rectangle to
// screen coordinates, clamping outside the rectangle.
func (p *pointer) mapToScreen(px detector.Pixel) (float64, float64) {
	x := interp(px.X, p.margin, p.frame.Width-p.margin, 0, p.screenW)
	y := interp(px.Y, p.margin, p.frame.Height-p.margin, 0, p.screenH)
	return x, y
}

// update evaluates the right hand for one frame and returns the actions to dispatch.
func (p *pointer) update(state gesture.FingerState, now time.Time, th Thresholds) []pointerEvent {
	var events []pointerEvent
	d := state.Digits
	movePattern := d.Extended(gesture.Index) && !d.Extended(gesture.Middle)

	if movePattern {
		if p.dragging {
			events = append(events, p.release())
		}
		mx, my := p.mapToScreen(state.IndexTip)
		p.smoothedX += (mx - p.smoothedX) / p.smoothening
		p.smoothedY += (my - p.smoothedY) / p.smoothening
		x, y := int(p.smoothedX), int(p.smoothedY)
		events = append(events, pointerEvent{name: "move", run: func(a actuator.Actuator) error {
			return a.MoveCursor(x, y)
		}})
	}

	if d.Extended(gesture.Index) && d.Extended(gesture.Middle) &&
		state.IndexMiddleDist < th.ClickDistance && now.After(p.cooldownUntil) {
		p.cooldownUntil = now.Add(p.leftCooldown)
		events = append(events, pointerEvent{name: "left-click", command: true, run: func(a actuator.Actuator) error {
			return a.Click(actuator.ButtonLeft)
		}})
	}

	if d.Extended(gesture.Thumb) && d.Extended(gesture.Index) &&
		state.ThumbIndexDist < th.ClickDistance && now.After(p.cooldownUntil) {
		p.cooldownUntil = now.Add(p.rightCooldown)
		events = append(events, pointerEvent{name: "right-click", command: true, run: func(a actuator.Actuator) error {
			return a.Click(actuator.ButtonRight)
		}})
	}

	switch {
	case d.Count() == 0:
		if !p.dragging {
			p.dragging = true
			events = append(events, pointerEvent{name: "drag-start", command: true, run: func(a actuator.Actuator) error {
				return a.MouseDown(actuator.ButtonLeft)
			}})
		}
	case p.dragging && !movePattern:
		events = append(events, p.release())
	}

	return events
}

// release ends an active drag. It is a no-op event when not dragging.
func (p *pointer) release() pointerEvent {
	p.dragging = false
	return pointerEvent{name: "drag-end", run: func(a actuator.Actuator) error {
		return a.MouseUp(actuator.ButtonLeft)
	}}
}

// interp maps v from [inMin, inMax] to [outMin, outMax], clamping to the endpoints.
func interp(v, inMin, inMax, outMin, outMax float64) float64 {
	if inMax <= inMin {
		return outMin
	}
	if v <= inMin {
		return outMin
	}
	if v >= inMax {
		return outMax
	}
	return outMin + (v-inMin)*(outMax-outMin)/(inMax-inMin)
}
