package engine

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/actuator"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

func TestNew_StartsCalibrating(t *testing.T) {
	h := newHarness(t)

	st := h.e.Status()
	if st.Mode != ModeCalibrating {
		t.Errorf("Mode = %s, want calibrating", st.Mode)
	}
	if st.SessionID == "" {
		t.Error("SessionID should be set")
	}
	if st.Thresholds != DefaultThresholds() {
		t.Errorf("Thresholds = %+v, want defaults", st.Thresholds)
	}
	if !st.VolumeEnabled {
		t.Error("volume should be enabled with a working backend")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero frame", func(c *Config) { c.Frame.Width = 0 }},
		{"margin too large", func(c *Config) { c.Margin = 400 }},
		{"smoothening below one", func(c *Config) { c.Smoothening = 0.5 }},
		{"inverted volume range", func(c *Config) { c.Thresholds.VolMinDist = 250 }},
		{"zero click distance", func(c *Config) { c.Thresholds.ClickDistance = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if _, err := New(cfg, actuator.NewMock()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestModeTransitions_FromIdle(t *testing.T) {
	tests := []struct {
		name   string
		digits gesture.Digits
		want   Mode
	}{
		{"index selects mouse", gesture.Digits{gesture.Index: true}, ModeMouseControl},
		{"index+middle selects system", gesture.Digits{gesture.Index: true, gesture.Middle: true}, ModeSystemControl},
		{"three fingers select keyboard", gesture.Digits{gesture.Index: true, gesture.Middle: true, gesture.Ring: true}, ModeKeyboard},
		{"thumb alone is ignored", gesture.Digits{gesture.Thumb: true}, ModeIdle},
		{"middle alone is ignored", gesture.Digits{gesture.Middle: true}, ModeIdle},
		{"index+pinky is ignored", gesture.Digits{gesture.Index: true, gesture.Pinky: true}, ModeIdle},
		{"open palm stays idle", gesture.Digits{true, true, true, true, true}, ModeIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t).inMode(ModeIdle)
			h.frame(left(tt.digits))

			if got := h.e.Mode(); got != tt.want {
				t.Errorf("Mode = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOpenPalmReturnsToIdle(t *testing.T) {
	palm := left(gesture.Digits{true, true, true, true, true})

	for _, mode := range []Mode{ModeMouseControl, ModeSystemControl, ModeKeyboard} {
		t.Run(mode.String(), func(t *testing.T) {
			h := newHarness(t).inMode(mode)
			h.e.lastTransition = h.clock.now
			h.e.keyboard.appendRune('A')

			h.clock.Advance(900 * time.Millisecond)
			h.frame(palm)
			if h.e.Mode() != mode {
				t.Fatalf("transition fired before the guard: mode = %s", h.e.Mode())
			}

			h.clock.Advance(100 * time.Millisecond)
			h.frame(palm)
			if h.e.Mode() != ModeIdle {
				t.Errorf("Mode = %s, want idle", h.e.Mode())
			}
			if h.e.Status().Text != "" {
				t.Errorf("keyboard buffer not cleared: %q", h.e.Status().Text)
			}
		})
	}
}

func TestOpenPalmIgnoredWhileCalibrating(t *testing.T) {
	h := newHarness(t)
	h.frame(left(gesture.Digits{true, true, true, true, true}))

	if h.e.Mode() != ModeCalibrating {
		t.Errorf("Mode = %s, want calibrating", h.e.Mode())
	}
}

func TestTransitionCooldownPreventsOscillation(t *testing.T) {
	h := newHarness(t).inMode(ModeIdle)

	h.frame(left(gesture.Digits{gesture.Index: true}))
	if h.e.Mode() != ModeMouseControl {
		t.Fatalf("Mode = %s, want mouse", h.e.Mode())
	}
	lastTransition := h.e.lastTransition

	for i := 0; i < 9; i++ {
		h.clock.Advance(100 * time.Millisecond)
		h.frame(left(gesture.Digits{true, true, true, true, true}))
	}
	if h.e.Mode() != ModeMouseControl {
		t.Errorf("Mode = %s, want mouse during cooldown", h.e.Mode())
	}
	if !h.e.lastTransition.Equal(lastTransition) {
		t.Error("ignored frames must not refresh last transition time")
	}
}

func TestSettleDelayGatesControllers(t *testing.T) {
	h := newHarness(t).inMode(ModeIdle)

	h.frame(left(gesture.Digits{gesture.Index: true}))
	pointing := detector.PointingLandmarks(detector.Right)

	h.clock.Advance(300 * time.Millisecond)
	h.frame(pointing)
	if n := h.act.Count("MoveCursor"); n != 0 {
		t.Fatalf("cursor moved %d times inside the settle delay", n)
	}

	h.clock.Advance(200 * time.Millisecond)
	h.frame(pointing)
	if n := h.act.Count("MoveCursor"); n != 1 {
		t.Errorf("MoveCursor calls = %d, want 1", n)
	}
}

func TestMissingRightHandPrompt(t *testing.T) {
	h := newHarness(t).inMode(ModeSystemControl)
	h.frame()

	if got := h.e.Status().Prompt; !strings.Contains(got, "right hand") {
		t.Errorf("Prompt = %q, want right-hand hint", got)
	}
}

func TestAdvancedGestures(t *testing.T) {
	spread := func(span float64) []detector.HandLandmarks {
		l := detector.FistLandmarks(detector.Left)
		r := detector.FistLandmarks(detector.Right)
		lc, rc := l.Centroid(), r.Centroid()
		return []detector.HandLandmarks{
			l.Translate(0.5-span/2/frameW-lc.X, 0.5-lc.Y),
			r.Translate(0.5+span/2/frameW-rc.X, 0.5-rc.Y),
		}
	}

	t.Run("zoom out", func(t *testing.T) {
		h := newHarness(t).inMode(ModeIdle)
		for _, span := range []float64{100, 100, 140} {
			h.frame(spread(span)...)
			h.clock.Advance(33 * time.Millisecond)
		}
		if n := h.act.Count("Zoom"); n != 1 {
			t.Fatalf("Zoom calls = %d, want 1", n)
		}
		call, _ := h.act.Last("Zoom")
		if call.Args[0] != actuator.ZoomOut {
			t.Errorf("Zoom(%v), want out", call.Args[0])
		}
		if h.e.Status().LastGesture != "zoom-out" {
			t.Errorf("LastGesture = %q", h.e.Status().LastGesture)
		}
	})

	t.Run("zoom in", func(t *testing.T) {
		h := newHarness(t).inMode(ModeIdle)
		for _, span := range []float64{100, 100, 70} {
			h.frame(spread(span)...)
		}
		call, ok := h.act.Last("Zoom")
		if !ok || h.act.Count("Zoom") != 1 || call.Args[0] != actuator.ZoomIn {
			t.Errorf("calls = %v, want one zoom in", h.act.Calls())
		}
	})

	t.Run("scroll", func(t *testing.T) {
		h := newHarness(t).inMode(ModeIdle)
		for _, y := range []float64{300, 300, 285, 315} {
			h.frame(pinch(640, y, 60))
		}
		var amounts []int
		for _, c := range h.act.Calls() {
			if c.Method == "Scroll" {
				amounts = append(amounts, c.Args[0].(int))
			}
		}
		if len(amounts) != 2 || amounts[0] <= 0 || amounts[1] >= 0 {
			t.Errorf("scroll amounts = %v, want one up then one down", amounts)
		}
	})

	t.Run("suppresses mode transition in the same frame", func(t *testing.T) {
		h := newHarness(t).inMode(ModeIdle)
		pointLeft := func(span float64) []detector.HandLandmarks {
			hands := spread(span)
			l := left(gesture.Digits{gesture.Index: true})
			lc := l.Centroid()
			hc := hands[0].Centroid()
			hands[0] = l.Translate(hc.X-lc.X, hc.Y-lc.Y)
			return hands
		}
		h.e.lastTransition = h.clock.now
		h.clock.Advance(time.Second)

		h.frame(spread(100)...)
		h.frame(pointLeft(200)...)

		if h.act.Count("Zoom") != 1 {
			t.Fatalf("expected a zoom, got %v", h.act.Calls())
		}
		if h.e.Mode() != ModeIdle {
			t.Errorf("Mode = %s, zoom should have suppressed the transition", h.e.Mode())
		}
	})

	t.Run("not dispatched while calibrating", func(t *testing.T) {
		h := newHarness(t)
		for _, span := range []float64{100, 200} {
			h.frame(spread(span)...)
		}
		if n := h.act.Count("Zoom"); n != 0 {
			t.Errorf("Zoom calls = %d while calibrating", n)
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("stop releases drag and halts", func(t *testing.T) {
		h := newHarness(t).inMode(ModeMouseControl)
		h.frame(detector.FistLandmarks(detector.Right))
		if !h.e.Status().Dragging {
			t.Fatal("fist should start a drag")
		}

		if !h.e.Submit(CommandStop) {
			t.Fatal("Submit() = false")
		}
		err := h.e.ProcessFrame(detector.NewFrameSet(nil, h.clock.now))
		if !errors.Is(err, ErrStopped) {
			t.Fatalf("ProcessFrame() error = %v, want ErrStopped", err)
		}
		if h.act.Count("MouseUp") != 1 {
			t.Error("drag was not released on stop")
		}
		if st := h.e.Status(); st.Mode != ModeStopped || st.Dragging {
			t.Errorf("status = %+v", st)
		}

		h.act.Reset()
		err = h.e.ProcessFrame(detector.NewFrameSet([]detector.HandLandmarks{detector.PointingLandmarks(detector.Right)}, h.clock.now))
		if !errors.Is(err, ErrStopped) {
			t.Errorf("second ProcessFrame() error = %v", err)
		}
		if len(h.act.Calls()) != 0 {
			t.Errorf("stopped engine dispatched %v", h.act.Calls())
		}
	})

	t.Run("start calibration restarts from any mode", func(t *testing.T) {
		for _, mode := range []Mode{ModeIdle, ModeKeyboard, ModeStopped, ModeCalibrating} {
			h := newHarness(t).inMode(mode)
			h.e.calib.step = StepPinch

			h.e.Submit(CommandStartCalibration)
			h.frame()

			if h.e.Mode() != ModeCalibrating {
				t.Errorf("from %s: Mode = %s, want calibrating", mode, h.e.Mode())
			}
			if h.e.calib.step != StepOpenHand {
				t.Errorf("from %s: step = %d, want 0", mode, h.e.calib.step)
			}
		}
	})

	t.Run("shutdown", func(t *testing.T) {
		h := newHarness(t).inMode(ModeMouseControl)
		h.frame(detector.FistLandmarks(detector.Right))
		h.e.Shutdown()

		if h.e.Mode() != ModeStopped {
			t.Errorf("Mode = %s, want stopped", h.e.Mode())
		}
		if h.act.Count("MouseUp") != 1 {
			t.Error("Shutdown did not release the drag")
		}
	})

	t.Run("queue full", func(t *testing.T) {
		h := newHarness(t)
		for i := 0; i < commandQueueSize; i++ {
			if !h.e.Submit(CommandStartCalibration) {
				t.Fatalf("Submit %d rejected", i)
			}
		}
		if h.e.Submit(CommandStop) {
			t.Error("Submit should reject when the queue is full")
		}
	})
}

func TestDispatchFailuresAreCounted(t *testing.T) {
	h := newHarness(t).inMode(ModeMouseControl)
	h.act.FailWith(errors.New("display gone"))

	pointing := detector.PointingLandmarks(detector.Right)
	h.frame(pointing)
	h.frame(pointing)

	stats := h.e.Stats()
	if stats.Errors != 2 {
		t.Errorf("Errors = %d, want 2", stats.Errors)
	}
	if stats.CommandsExecuted != 0 {
		t.Errorf("CommandsExecuted = %d, want 0", stats.CommandsExecuted)
	}
}

func TestReportError(t *testing.T) {
	h := newHarness(t)

	h.e.ReportError(ErrPerceptionUnavailable)
	h.e.ReportError(ErrTransientFrame)
	h.frame()

	st := h.e.Status()
	if st.Stats.Errors != 2 {
		t.Errorf("Errors = %d, want 2", st.Stats.Errors)
	}
	if !containsWarning(st.Warnings, "Camera") {
		t.Errorf("Warnings = %v, want camera warning", st.Warnings)
	}

	h.e.ReportPerceptionRestored()
	h.frame()
	if containsWarning(h.e.Status().Warnings, "Camera") {
		t.Error("camera warning should clear after restore")
	}
}

func TestStatsUptime(t *testing.T) {
	h := newHarness(t)
	h.clock.Advance(90 * time.Second)

	if got := h.e.Stats().UptimeSeconds; got != 90 {
		t.Errorf("UptimeSeconds = %f, want 90", got)
	}
}

func TestMode_TextRoundTrip(t *testing.T) {
	for m := ModeCalibrating; m <= ModeStopped; m++ {
		text, _ := m.MarshalText()
		var back Mode
		if err := back.UnmarshalText(text); err != nil || back != m {
			t.Errorf("%s round trip = %s, %v", m, back, err)
		}
	}
	var m Mode
	if err := m.UnmarshalText([]byte("dancing")); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func containsWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		want    Command
		wantErr bool
	}{
		{"start-calibration", CommandStartCalibration, false},
		{"stop", CommandStop, false},
		{"pause", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseCommand(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCommand(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCommand(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTick(t *testing.T) {
	t.Run("does not interrupt a calibration hold", func(t *testing.T) {
		h := newHarness(t)
		hand := detector.OpenPalmLandmarks(detector.Right)

		h.frame(hand)
		for i := 0; i < 10; i++ {
			h.clock.Advance(300 * time.Millisecond)
			if err := h.e.Tick(); err != nil {
				t.Fatalf("Tick() error = %v", err)
			}
			h.frame(hand)
		}

		if st := h.e.Status(); st.CalibrationStep != StepPinch {
			t.Errorf("CalibrationStep = %d, want %d with ticks between slow frames", st.CalibrationStep, StepPinch)
		}
		if n := h.e.Stats().Errors; n != 0 {
			t.Errorf("Errors = %d, ticks must not look like a lost hand", n)
		}
		if st := h.e.Status(); st.Hands != 1 {
			t.Errorf("Hands = %d, ticks should keep the last frame's hands", st.Hands)
		}
	})

	t.Run("applies commands", func(t *testing.T) {
		h := newHarness(t).inMode(ModeIdle)

		h.e.Submit(CommandStop)
		if err := h.e.Tick(); !errors.Is(err, ErrStopped) {
			t.Fatalf("Tick() error = %v, want ErrStopped", err)
		}
		if h.e.Mode() != ModeStopped {
			t.Fatalf("Mode() = %s, want stopped", h.e.Mode())
		}

		h.e.Submit(CommandStartCalibration)
		if err := h.e.Tick(); err != nil {
			t.Errorf("Tick() error = %v", err)
		}
		if h.e.Mode() != ModeCalibrating {
			t.Errorf("Mode() = %s, want calibrating", h.e.Mode())
		}
	})
}
