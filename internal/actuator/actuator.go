// Package actuator defines the desktop input capabilities the gesture engine drives.
package actuator

import "errors"

// ErrUnavailable is returned when the platform lacks a capability, for example
// when no volume control backend is installed.
var ErrUnavailable = errors.New("actuator capability unavailable")

// Button identifies a mouse button.
type Button string

const (
	ButtonLeft  Button = "left"
	ButtonRight Button = "right"
)

// ZoomDirection is the direction of a zoom action.
type ZoomDirection string

const (
	ZoomIn  ZoomDirection = "in"
	ZoomOut ZoomDirection = "out"
)

// Actuator performs OS-level input actions. Every call is synchronous and
// best effort; callers count failures and keep going.
type Actuator interface {
	// ScreenSize returns the primary display resolution in pixels.
	ScreenSize() (width, height int)
	MoveCursor(x, y int) error
	Click(button Button) error
	MouseDown(button Button) error
	MouseUp(button Button) error
	// PressKey taps a named key ("a", "space", "backspace", "enter").
	PressKey(key string) error
	// SetVolume sets the output volume, level in [min, max] of VolumeRange.
	SetVolume(level float64) error
	// VolumeRange reports the supported volume range, or ErrUnavailable.
	VolumeRange() (min, max float64, err error)
	// Scroll scrolls vertically; positive amounts scroll up.
	Scroll(amount int) error
	Zoom(dir ZoomDirection) error
}

// VolumeControl is the subset of Actuator that manages audio output.
type VolumeControl interface {
	SetVolume(level float64) error
	VolumeRange() (min, max float64, err error)
}

// KeyTyper types a key with optional modifiers by some other route than direct
// injection, for example an OS automation plugin.
type KeyTyper interface {
	TypeKey(key string, modifiers ...string) error
}
