// Package engine turns per-frame hand poses into debounced, mode-scoped desktop
// actions: pointer control, volume, a virtual keyboard, zoom and scroll.
//
// The Engine is single-owner: one goroutine calls ProcessFrame and is the only
// mutator of the mode, thresholds and cooldowns. Other goroutines steer it with
// Submit and observe it with Status and Stats.
package engine

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/mudra/internal/actuator"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/google/uuid"
)

// Command is a request from outside the frame loop.
type Command int

const (
	// CommandStartCalibration restarts the calibration procedure from step 1.
	CommandStartCalibration Command = iota + 1
	// CommandStop stops the engine and releases any held drag.
	CommandStop
)

func (c Command) String() string {
	switch c {
	case CommandStartCalibration:
		return "start-calibration"
	case CommandStop:
		return "stop"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// ParseCommand returns the command with the given name.
func ParseCommand(name string) (Command, error) {
	for _, c := range []Command{CommandStartCalibration, CommandStop} {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", name)
}

const commandQueueSize = 16

// lastGestureTTL is how long a recognized gesture stays in the status.
const lastGestureTTL = time.Second

// Config holds engine settings. It is read once by New.
type Config struct {
	Frame        detector.FrameSize
	Margin       float64
	Smoothening  float64
	Thresholds   Thresholds
	Gestures     gesture.TrackerConfig
	ScrollAmount int

	ModeCooldown       time.Duration
	SettleDelay        time.Duration
	LeftClickCooldown  time.Duration
	RightClickCooldown time.Duration
	KeyCooldown        time.Duration
	KeyPinchFactor     float64
	CalibrationHold    time.Duration
	CalibrationFinish  time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// OnCalibrated is called on the frame goroutine when calibration completes.
	OnCalibrated func(CalibrationResult)
}

// DefaultConfig returns the standard engine configuration for a 1280x720 camera.
func DefaultConfig() Config {
	return Config{
		Frame:              detector.FrameSize{Width: 1280, Height: 720},
		Margin:             100,
		Smoothening:        5,
		Thresholds:         DefaultThresholds(),
		Gestures:           gesture.DefaultTrackerConfig(),
		ScrollAmount:       5,
		ModeCooldown:       time.Second,
		SettleDelay:        500 * time.Millisecond,
		LeftClickCooldown:  250 * time.Millisecond,
		RightClickCooldown: 450 * time.Millisecond,
		KeyCooldown:        550 * time.Millisecond,
		KeyPinchFactor:     1.2,
		CalibrationHold:    3 * time.Second,
		CalibrationFinish:  2 * time.Second,
		Now:                time.Now,
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c Config) Validate() error {
	if c.Frame.Width <= 0 || c.Frame.Height <= 0 {
		return fmt.Errorf("frame size must be positive, got %.0fx%.0f", c.Frame.Width, c.Frame.Height)
	}
	if c.Margin < 0 || 2*c.Margin >= c.Frame.Width || 2*c.Margin >= c.Frame.Height {
		return fmt.Errorf("margin %.0f does not fit a %.0fx%.0f frame", c.Margin, c.Frame.Width, c.Frame.Height)
	}
	if c.Smoothening < 1 {
		return fmt.Errorf("smoothening must be >= 1, got %.2f", c.Smoothening)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	return nil
}

// CalibrationResult is passed to Config.OnCalibrated.
type CalibrationResult struct {
	SessionID   string
	Thresholds  Thresholds
	CompletedAt time.Time
}

// Status is a snapshot of the engine, published once per frame.
type Status struct {
	SessionID           string        `json:"session_id"`
	Mode                Mode          `json:"mode"`
	Prompt              string        `json:"prompt,omitempty"`
	CalibrationStep     int           `json:"calibration_step"`
	CalibrationProgress float64       `json:"calibration_progress"`
	Thresholds          Thresholds    `json:"thresholds"`
	VolumeEnabled       bool          `json:"volume_enabled"`
	VolumePercent       float64       `json:"volume_percent"`
	HoveredKey          string        `json:"hovered_key,omitempty"`
	Text                string        `json:"text"`
	Dragging            bool          `json:"dragging"`
	LastGesture         string        `json:"last_gesture,omitempty"`
	Hands               int           `json:"hands"`
	Warnings            []string      `json:"warnings,omitempty"`
	Stats               StatsSnapshot `json:"stats"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// Engine is the gesture interaction engine.
type Engine struct {
	config    Config
	act       actuator.Actuator
	extractor gesture.Extractor
	tracker   *gesture.Tracker
	commands  chan Command
	stats     *Stats
	status    atomic.Pointer[Status]
	sessionID string

	perceptionDown atomic.Bool
	reportMu       sync.Mutex
	lastReport     string

	// Owned by the goroutine calling ProcessFrame.
	mode           Mode
	thresholds     Thresholds
	lastTransition time.Time
	calib          *calibration
	pointer        *pointer
	volume         *volume
	keyboard       *keyboard
	lastGesture    gesture.Kind
	lastGestureAt  time.Time
	lastDispatch   string
	lastSet        detector.FrameSet
}

// New creates an Engine in calibration mode. A missing volume backend is not
// an error: System Control is disabled with a warning.
func New(config Config, act actuator.Actuator) (*Engine, error) {
	if config.Now == nil {
		config.Now = time.Now
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	now := config.Now()
	screenW, screenH := act.ScreenSize()
	vol, _ := newVolume(act)

	e := &Engine{
		config:     config,
		act:        act,
		extractor:  gesture.NewExtractor(config.Frame),
		tracker:    gesture.NewTracker(config.Frame, config.Gestures),
		commands:   make(chan Command, commandQueueSize),
		stats:      newStats(now),
		sessionID:  uuid.NewString(),
		mode:       ModeCalibrating,
		thresholds: config.Thresholds,
		calib:      newCalibration(config.CalibrationHold, config.CalibrationFinish, config.Thresholds),
		pointer: &pointer{
			frame:         config.Frame,
			screenW:       float64(screenW),
			screenH:       float64(screenH),
			margin:        config.Margin,
			smoothening:   config.Smoothening,
			leftCooldown:  config.LeftClickCooldown,
			rightCooldown: config.RightClickCooldown,
		},
		volume: vol,
		keyboard: &keyboard{
			layout:      DefaultLayout(),
			pinchFactor: config.KeyPinchFactor,
			cooldown:    config.KeyCooldown,
		},
	}

	e.publish(now, detector.FrameSet{})
	log.Printf("Engine session %s started (screen %dx%d)", e.sessionID, screenW, screenH)
	return e, nil
}

// SessionID identifies this engine run.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Submit queues a command for the next frame. It never blocks and reports
// false when the queue is full.
func (e *Engine) Submit(cmd Command) bool {
	select {
	case e.commands <- cmd:
		return true
	default:
		log.Printf("Command queue full, dropping %s", cmd)
		return false
	}
}

// ProcessFrame runs one iteration: queued commands, advanced gestures, the
// active mode's controller, then left-hand mode transitions. It returns
// ErrStopped once the engine is stopped; every other failure is counted and
// logged, never returned.
func (e *Engine) ProcessFrame(set detector.FrameSet) error {
	now := e.config.Now()
	e.drainCommands(now)

	if e.mode == ModeStopped {
		e.publish(now, set)
		return ErrStopped
	}

	var left, right *gesture.FingerState
	if s := set.Hand(detector.Left); s != nil {
		st := e.extractor.Extract(s)
		left = &st
	}
	if s := set.Hand(detector.Right); s != nil {
		st := e.extractor.Extract(s)
		right = &st
	}

	if kind := e.tracker.Observe(set); kind != gesture.None && e.mode != ModeCalibrating {
		e.dispatchGesture(kind, now)
	}

	switch {
	case e.mode == ModeCalibrating:
		active := left
		if active == nil {
			active = right
		}
		e.runCalibration(active, now)
	case e.mode.Active() && right != nil && now.Sub(e.lastTransition) >= e.config.SettleDelay:
		e.runController(*right, now)
	}

	if left != nil && now.Sub(e.lastTransition) >= e.config.ModeCooldown {
		e.evaluateTransition(left.Digits, now)
	}

	e.lastSet = set
	e.publish(now, set)
	return nil
}

// Tick applies queued commands and refreshes the status without a new frame.
// Calibration holds, trackers and controllers only advance on ProcessFrame.
// Like ProcessFrame it returns ErrStopped once the engine is stopped.
func (e *Engine) Tick() error {
	now := e.config.Now()
	e.drainCommands(now)
	e.publish(now, e.lastSet)
	if e.mode == ModeStopped {
		return ErrStopped
	}
	return nil
}

// PerceptionDown reports whether the pose source is marked unavailable.
func (e *Engine) PerceptionDown() bool {
	return e.perceptionDown.Load()
}

// Shutdown stops the engine from the frame goroutine, releasing any held drag.
func (e *Engine) Shutdown() {
	now := e.config.Now()
	e.stop(now)
	e.publish(now, detector.FrameSet{})
}

// Status returns the most recent snapshot. Safe from any goroutine.
func (e *Engine) Status() Status {
	return *e.status.Load()
}

// Mode returns the mode as of the last processed frame.
func (e *Engine) Mode() Mode {
	return e.status.Load().Mode
}

// Thresholds returns the thresholds as of the last processed frame.
func (e *Engine) Thresholds() Thresholds {
	return e.status.Load().Thresholds
}

// Stats returns the live counters.
func (e *Engine) Stats() StatsSnapshot {
	return e.stats.Snapshot(e.config.Now())
}

// ReportError records a failure from the pose source. Safe from any goroutine.
// ErrPerceptionUnavailable marks perception down until ReportPerceptionRestored.
func (e *Engine) ReportError(err error) {
	if err == nil {
		return
	}
	e.stats.failure()
	if errors.Is(err, ErrPerceptionUnavailable) {
		if !e.perceptionDown.Swap(true) {
			log.Printf("Perception unavailable, retrying: %v", err)
		}
		return
	}

	e.reportMu.Lock()
	defer e.reportMu.Unlock()
	if msg := err.Error(); msg != e.lastReport {
		log.Printf("Frame error: %v", err)
		e.lastReport = msg
	}
}

// ReportPerceptionRestored clears the perception warning.
func (e *Engine) ReportPerceptionRestored() {
	if e.perceptionDown.Swap(false) {
		log.Println("Perception restored")
	}
	e.reportMu.Lock()
	e.lastReport = ""
	e.reportMu.Unlock()
}

func (e *Engine) drainCommands(now time.Time) {
	for {
		select {
		case cmd := <-e.commands:
			e.apply(cmd, now)
		default:
			return
		}
	}
}

func (e *Engine) apply(cmd Command, now time.Time) {
	switch cmd {
	case CommandStartCalibration:
		e.releaseDrag()
		e.keyboard.clear()
		e.tracker.Reset()
		e.volume.forget()
		e.calib.restart(e.thresholds)
		if e.mode != ModeCalibrating {
			log.Printf("Mode %s -> %s", e.mode, ModeCalibrating)
		}
		e.mode = ModeCalibrating
		e.lastTransition = now
		log.Println("Calibration started")
	case CommandStop:
		e.stop(now)
	default:
		log.Printf("Ignoring unknown command %s", cmd)
	}
}

func (e *Engine) stop(now time.Time) {
	if e.mode == ModeStopped {
		return
	}
	e.setMode(ModeStopped, now)
	e.releaseDrag()
	e.tracker.Reset()
}

// setMode switches modes, releasing resources tied to the mode being left.
func (e *Engine) setMode(next Mode, now time.Time) {
	prev := e.mode
	if prev == next {
		return
	}
	if prev == ModeMouseControl {
		e.releaseDrag()
	}
	if prev == ModeKeyboard {
		e.keyboard.clear()
	}
	if prev == ModeSystemControl {
		e.volume.forget()
	}
	e.mode = next
	e.lastTransition = now
	log.Printf("Mode %s -> %s", prev, next)
}

// evaluateTransition applies the left-hand mode rules.
func (e *Engine) evaluateTransition(d gesture.Digits, now time.Time) {
	switch {
	case d.Count() == 5 && e.mode != ModeIdle && e.mode != ModeCalibrating:
		e.keyboard.clear()
		e.transition(ModeIdle, now)
	case e.mode == ModeIdle:
		switch {
		case d.Exactly(gesture.Index):
			e.transition(ModeMouseControl, now)
		case d.Exactly(gesture.Index, gesture.Middle):
			e.transition(ModeSystemControl, now)
		case d.Exactly(gesture.Index, gesture.Middle, gesture.Ring):
			e.transition(ModeKeyboard, now)
		}
	}
}

// transition is a gesture-driven mode change, counted as a detected gesture.
func (e *Engine) transition(next Mode, now time.Time) {
	e.stats.gesture()
	e.setMode(next, now)
}

func (e *Engine) runCalibration(state *gesture.FingerState, now time.Time) {
	out := e.calib.observe(state, now)
	if out.err != nil {
		e.stats.failure()
		log.Printf("Calibration: %v", out.err)
	}
	if out.advanced {
		m := e.calib.measured
		switch e.calib.step {
		case StepPinch:
			log.Printf("Calibrated max distance: %.2f", m.VolMaxDist)
		case StepComplete:
			log.Printf("Calibrated min distance: %.2f, click distance: %.2f", m.VolMinDist, m.ClickDistance)
		}
	}
	if out.done {
		e.thresholds = e.calib.measured
		e.setMode(ModeIdle, now)
		log.Println("Calibration complete")
		if e.config.OnCalibrated != nil {
			e.config.OnCalibrated(CalibrationResult{
				SessionID:   e.sessionID,
				Thresholds:  e.thresholds,
				CompletedAt: now,
			})
		}
	}
}

// runController dispatches the right hand to the active mode's controller.
func (e *Engine) runController(state gesture.FingerState, now time.Time) {
	switch e.mode {
	case ModeMouseControl:
		for _, ev := range e.pointer.update(state, now, e.thresholds) {
			if ev.name == "move" {
				e.stats.gesture()
			}
			e.dispatch(ev.name, ev.run, ev.command)
		}

	case ModeSystemControl:
		if !e.volume.enabled {
			return
		}
		level, changed := e.volume.update(state.ThumbIndexDist, e.thresholds)
		if !changed {
			return
		}
		if !e.dispatch("set-volume", func(a actuator.Actuator) error {
			return a.SetVolume(level)
		}, false) {
			e.volume.forget()
		}

	case ModeKeyboard:
		press, ok := e.keyboard.update(state, now, e.thresholds)
		if !ok {
			return
		}
		if press.key.Action.Kind == KeyExit {
			e.stats.command()
			e.setMode(ModeIdle, now)
			return
		}
		e.dispatch("key "+press.key.Label, press.pressFunc(), true)
	}
}

func (e *Engine) dispatchGesture(kind gesture.Kind, now time.Time) {
	var run func(actuator.Actuator) error
	switch kind {
	case gesture.ZoomIn:
		run = func(a actuator.Actuator) error { return a.Zoom(actuator.ZoomIn) }
	case gesture.ZoomOut:
		run = func(a actuator.Actuator) error { return a.Zoom(actuator.ZoomOut) }
	case gesture.ScrollUp:
		run = func(a actuator.Actuator) error { return a.Scroll(e.config.ScrollAmount) }
	case gesture.ScrollDown:
		run = func(a actuator.Actuator) error { return a.Scroll(-e.config.ScrollAmount) }
	default:
		return
	}
	e.stats.gesture()
	e.dispatch(kind.String(), run, true)
	e.lastTransition = now
	e.lastGesture = kind
	e.lastGestureAt = now
}

func (e *Engine) releaseDrag() {
	if !e.pointer.dragging {
		return
	}
	ev := e.pointer.release()
	e.dispatch(ev.name, ev.run, ev.command)
}

// dispatch invokes one actuator call. Failures are counted and logged once per
// distinct error, never propagated.
func (e *Engine) dispatch(name string, run func(actuator.Actuator) error, command bool) bool {
	if err := run(e.act); err != nil {
		e.stats.failure()
		if errors.Is(err, actuator.ErrUnavailable) {
			err = fmt.Errorf("%w: %w", ErrActuatorUnavailable, err)
		}
		if msg := name + ": " + err.Error(); msg != e.lastDispatch {
			log.Printf("Dispatch %s failed: %v", name, err)
			e.lastDispatch = msg
		}
		return false
	}
	e.lastDispatch = ""
	if command {
		e.stats.command()
	}
	return true
}

func (e *Engine) publish(now time.Time, set detector.FrameSet) {
	rightPresent := set.Hand(detector.Right) != nil
	s := &Status{
		SessionID:     e.sessionID,
		Mode:          e.mode,
		Thresholds:    e.thresholds,
		VolumeEnabled: e.volume.enabled,
		VolumePercent: e.volume.percent,
		Text:          e.keyboard.String(),
		Dragging:      e.pointer.dragging,
		Hands:         len(set.Samples),
		Stats:         e.stats.Snapshot(now),
		UpdatedAt:     now,
	}

	switch e.mode {
	case ModeCalibrating:
		s.Prompt = e.calib.prompt()
		s.CalibrationStep = e.calib.step
		s.CalibrationProgress = e.calib.progress(now)
	case ModeIdle:
		s.Prompt = "Left hand: 1 finger mouse, 2 fingers system, 3 fingers keyboard"
	case ModeKeyboard:
		if rightPresent && e.keyboard.hovered != nil {
			s.HoveredKey = e.keyboard.hovered.Label
		}
	case ModeStopped:
		s.Prompt = "Stopped"
	}
	if e.mode.Active() {
		if rightPresent {
			s.Prompt = "Open left palm to return to idle"
		} else {
			s.Prompt = fmt.Sprintf("Show right hand to use %s mode", e.mode)
		}
	}

	if e.lastGesture != gesture.None && now.Sub(e.lastGestureAt) < lastGestureTTL {
		s.LastGesture = e.lastGesture.String()
	}
	if e.perceptionDown.Load() {
		s.Warnings = append(s.Warnings, "Camera unavailable, retrying")
	}
	if !e.volume.enabled {
		s.Warnings = append(s.Warnings, "Volume control disabled")
	}

	e.status.Store(s)
}
