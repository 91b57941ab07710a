package engine

import (
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/actuator"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// KeyKind discriminates KeyAction.
type KeyKind int

const (
	KeyCharacter KeyKind = iota
	KeySpace
	KeyBackspace
	KeyEnter
	KeyExit
)

// KeyAction is what a virtual key does when pressed. Char is set only for KeyCharacter.
type KeyAction struct {
	Kind KeyKind
	Char rune
}

// Rect is a key rectangle in camera pixels.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies strictly inside r.
func (r Rect) Contains(p detector.Pixel) bool {
	return r.X < p.X && p.X < r.X+r.W && r.Y < p.Y && p.Y < r.Y+r.H
}

// Key is one virtual keyboard key.
type Key struct {
	Label  string
	Action KeyAction
	Rect   Rect
}

var keyRows = [...]string{
	"QWERTYUIOP",
	"ASDFGHJKL;",
	"ZXCVBNM,./",
	"1234567890",
}

const (
	keySize    = 80
	keyPitch   = 100
	keyOriginX = 50
	keyOriginY = 150
	specialRow = 550

	// MaxBufferRunes bounds the typed text; the oldest runes are dropped.
	MaxBufferRunes = 256
)

// DefaultLayout returns the 4x10 character grid plus the special-key row.
func DefaultLayout() []Key {
	layout := make([]Key, 0, 44)
	for i, row := range keyRows {
		for j, c := range row {
			layout = append(layout, Key{
				Label:  string(c),
				Action: KeyAction{Kind: KeyCharacter, Char: c},
				Rect:   Rect{X: float64(keyPitch*j + keyOriginX), Y: float64(keyPitch*i + keyOriginY), W: keySize, H: keySize},
			})
		}
	}
	layout = append(layout,
		Key{Label: "Space", Action: KeyAction{Kind: KeySpace}, Rect: Rect{X: 50, Y: specialRow, W: 400, H: keySize}},
		Key{Label: "<-", Action: KeyAction{Kind: KeyBackspace}, Rect: Rect{X: 460, Y: specialRow, W: 100, H: keySize}},
		Key{Label: "Enter", Action: KeyAction{Kind: KeyEnter}, Rect: Rect{X: 570, Y: specialRow, W: 100, H: keySize}},
		Key{Label: "Exit", Action: KeyAction{Kind: KeyExit}, Rect: Rect{X: 680, Y: specialRow, W: 150, H: keySize}},
	)
	return layout
}

// keyboard hit-tests the index fingertip against the layout and maintains the text buffer.
type keyboard struct {
	layout        []Key
	pinchFactor   float64
	cooldown      time.Duration
	cooldownUntil time.Time
	text          []rune
	hovered       *Key
}

// keyPress is a key the user pinched this frame.
type keyPress struct {
	key   Key
	osKey string // actuator key name, empty for Exit
}

// hitTest returns the first key containing p.
func (k *keyboard) hitTest(p detector.Pixel) *Key {
	for i := range k.layout {
		if k.layout[i].Rect.Contains(p) {
			return &k.layout[i]
		}
	}
	return nil
}

// update evaluates one frame. It returns the pressed key, if any.
func (k *keyboard) update(state gesture.FingerState, now time.Time, th Thresholds) (keyPress, bool) {
	k.hovered = k.hitTest(state.IndexTip)
	if k.hovered == nil {
		return keyPress{}, false
	}
	d := state.Digits
	if !d.Extended(gesture.Index) || !d.Extended(gesture.Middle) {
		return keyPress{}, false
	}
	if state.IndexMiddleDist >= th.ClickDistance*k.pinchFactor || !now.After(k.cooldownUntil) {
		return keyPress{}, false
	}

	k.cooldownUntil = now.Add(k.cooldown)
	key := *k.hovered
	press := keyPress{key: key}

	switch key.Action.Kind {
	case KeyCharacter:
		press.osKey = strings.ToLower(string(key.Action.Char))
		k.appendRune(key.Action.Char)
	case KeySpace:
		press.osKey = "space"
		k.appendRune(' ')
	case KeyEnter:
		press.osKey = "enter"
		k.appendRune('\n')
	case KeyBackspace:
		press.osKey = "backspace"
		if len(k.text) > 0 {
			k.text = k.text[:len(k.text)-1]
		}
	case KeyExit:
		k.clear()
	}
	return press, true
}

func (k *keyboard) appendRune(r rune) {
	k.text = append(k.text, r)
	if over := len(k.text) - MaxBufferRunes; over > 0 {
		k.text = append(k.text[:0], k.text[over:]...)
	}
}

func (k *keyboard) clear() {
	k.text = k.text[:0]
	k.hovered = nil
}

func (k *keyboard) String() string {
	return string(k.text)
}

// pressFunc returns the actuator call for a key press.
func (p keyPress) pressFunc() func(actuator.Actuator) error {
	return func(a actuator.Actuator) error {
		return a.PressKey(p.osKey)
	}
}
