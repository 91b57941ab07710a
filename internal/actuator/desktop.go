package actuator

import (
	"fmt"
	"runtime"

	"github.com/go-vgo/robotgo"
)

// Desktop drives the local desktop through robotgo. Volume is delegated to a
// VolumeControl since robotgo has no mixer API. Key taps that robotgo rejects
// are retried through an optional KeyTyper.
type Desktop struct {
	volume   VolumeControl
	keys     KeyTyper
	modifier string
}

// NewDesktop creates a Desktop actuator. volume may be nil, in which case
// volume calls report ErrUnavailable.
func NewDesktop(volume VolumeControl) *Desktop {
	modifier := "ctrl"
	if runtime.GOOS == "darwin" {
		modifier = "cmd"
	}
	return &Desktop{volume: volume, modifier: modifier}
}

// WithKeyFallback sets the KeyTyper used when robotgo cannot tap a key.
func (d *Desktop) WithKeyFallback(keys KeyTyper) *Desktop {
	d.keys = keys
	return d
}

func (d *Desktop) ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}

func (d *Desktop) MoveCursor(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (d *Desktop) Click(button Button) error {
	robotgo.Click(string(button))
	return nil
}

func (d *Desktop) MouseDown(button Button) error {
	if err := robotgo.Toggle(string(button)); err != nil {
		return fmt.Errorf("mouse down %s: %w", button, err)
	}
	return nil
}

func (d *Desktop) MouseUp(button Button) error {
	if err := robotgo.Toggle(string(button), "up"); err != nil {
		return fmt.Errorf("mouse up %s: %w", button, err)
	}
	return nil
}

func (d *Desktop) PressKey(key string) error {
	return d.tap(key)
}

func (d *Desktop) tap(key string, modifiers ...string) error {
	args := make([]any, len(modifiers))
	for i, m := range modifiers {
		args[i] = m
	}
	err := robotgo.KeyTap(key, args...)
	if err == nil {
		return nil
	}
	if d.keys != nil {
		if ferr := d.keys.TypeKey(key, modifiers...); ferr == nil {
			return nil
		}
	}
	return fmt.Errorf("key tap %q: %w", key, err)
}

func (d *Desktop) Scroll(amount int) error {
	robotgo.Scroll(0, amount)
	return nil
}

// Zoom sends the platform zoom shortcut (ctrl/cmd with + or -).
func (d *Desktop) Zoom(dir ZoomDirection) error {
	key := "="
	if dir == ZoomOut {
		key = "-"
	}
	if err := d.tap(key, d.modifier); err != nil {
		return fmt.Errorf("zoom %s: %w", dir, err)
	}
	return nil
}

func (d *Desktop) SetVolume(level float64) error {
	if d.volume == nil {
		return ErrUnavailable
	}
	return d.volume.SetVolume(level)
}

func (d *Desktop) VolumeRange() (float64, float64, error) {
	if d.volume == nil {
		return 0, 0, ErrUnavailable
	}
	return d.volume.VolumeRange()
}
