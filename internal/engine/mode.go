package engine

import "fmt"

// Mode is the active interaction mode. Exactly one is active at a time.
type Mode int

const (
	ModeCalibrating Mode = iota
	ModeIdle
	ModeMouseControl
	ModeSystemControl
	ModeKeyboard
	ModeStopped
)

var modeNames = map[Mode]string{
	ModeCalibrating:   "calibrating",
	ModeIdle:          "idle",
	ModeMouseControl:  "mouse",
	ModeSystemControl: "system",
	ModeKeyboard:      "keyboard",
	ModeStopped:       "stopped",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// MarshalText renders the mode name in JSON payloads.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses a mode name.
func (m *Mode) UnmarshalText(text []byte) error {
	for mode, name := range modeNames {
		if name == string(text) {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q", text)
}

// Active reports whether the mode runs a right-hand controller.
func (m Mode) Active() bool {
	return m == ModeMouseControl || m == ModeSystemControl || m == ModeKeyboard
}
