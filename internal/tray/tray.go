// Package tray provides the system tray menu of mudra: current mode,
// Recalibrate, Stop, Dashboard and Quit.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/engine"
)

// Tray represents the system tray application.
type Tray struct {
	onRecalibrate func()
	onStop        func()
	onDashboard   func()
	onQuit        func()
	mu            sync.RWMutex

	// Menu items stored for later updates
	menuStatus *systray.MenuItem
	menuStop   *systray.MenuItem
	lastLine   string
	stopped    bool
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{}
}

// OnRecalibrate sets the callback for the Recalibrate menu item.
func (t *Tray) OnRecalibrate(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRecalibrate = fn
}

// OnStop sets the callback for the Stop menu item.
func (t *Tray) OnStop(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStop = fn
}

// OnDashboard sets the callback for the Dashboard menu item.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called. On macOS it must run on the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand gesture control")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(StatusLine(engine.Status{Mode: engine.ModeCalibrating}), "Current mode")
	t.menuStatus.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuRecalibrate := systray.AddMenuItem("Recalibrate", "Restart the calibration procedure")
	menuStop := systray.AddMenuItem("Stop", "Stop gesture control")
	t.mu.Lock()
	t.menuStop = menuStop
	t.mu.Unlock()
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	go func() {
		for {
			select {
			case <-menuRecalibrate.ClickedCh:
				t.call(func() func() { return t.onRecalibrate })
			case <-menuStop.ClickedCh:
				t.call(func() func() { return t.onStop })
			case <-menuDashboard.ClickedCh:
				t.call(func() func() { return t.onDashboard })
			case <-menuQuit.ClickedCh:
				t.call(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// call runs the callback returned by get outside the lock.
func (t *Tray) call(get func() func()) {
	t.mu.RLock()
	callback := get()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// SetStatus updates the status line and the Stop item. It is cheap to call
// on every frame: menu items change only when the line does.
func (t *Tray) SetStatus(st engine.Status) {
	line := StatusLine(st)
	stopped := st.Mode == engine.ModeStopped

	t.mu.Lock()
	defer t.mu.Unlock()
	if line == t.lastLine && stopped == t.stopped {
		return
	}
	t.lastLine = line
	t.stopped = stopped

	if t.menuStatus != nil {
		t.menuStatus.SetTitle(line)
	}
	if t.menuStop != nil {
		if stopped {
			t.menuStop.Disable()
		} else {
			t.menuStop.Enable()
		}
	}
}

// Line returns the last status line set with SetStatus.
func (t *Tray) Line() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastLine
}

// StatusLine renders a one-line summary of st for the menu.
func StatusLine(st engine.Status) string {
	switch st.Mode {
	case engine.ModeCalibrating:
		return fmt.Sprintf("Calibrating (step %d/3)", st.CalibrationStep+1)
	case engine.ModeStopped:
		return "Stopped"
	}
	line := "Mode: " + st.Mode.String()
	if len(st.Warnings) > 0 {
		line += " (" + st.Warnings[0] + ")"
	}
	return line
}
