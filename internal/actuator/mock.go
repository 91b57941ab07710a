package actuator

import (
	"fmt"
	"sync"
)

// Call is one recorded actuator invocation.
type Call struct {
	Method string
	Args   []any
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Method, c.Args)
}

// Mock records every call for assertions in tests.
type Mock struct {
	mu       sync.Mutex
	calls    []Call
	width    int
	height   int
	volMin   float64
	volMax   float64
	volErr   error
	failWith error
}

// NewMock creates a Mock reporting a 1920x1080 screen and a 0..100 volume range.
func NewMock() *Mock {
	return &Mock{width: 1920, height: 1080, volMin: 0, volMax: 100}
}

// SetScreenSize changes the reported screen size.
func (m *Mock) SetScreenSize(w, h int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.width, m.height = w, h
}

// SetVolumeRange changes the reported volume range. A non-nil err makes
// VolumeRange fail.
func (m *Mock) SetVolumeRange(min, max float64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volMin, m.volMax, m.volErr = min, max, err
}

// FailWith makes every action return err. Pass nil to clear.
func (m *Mock) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// Calls returns a copy of the recorded calls.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Count returns how many calls were made to method.
func (m *Mock) Count(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Last returns the most recent call to method.
func (m *Mock) Last(method string) (Call, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.calls) - 1; i >= 0; i-- {
		if m.calls[i].Method == method {
			return m.calls[i], true
		}
	}
	return Call{}, false
}

// Reset clears recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *Mock) record(method string, args ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: method, Args: args})
	return m.failWith
}

func (m *Mock) ScreenSize() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, m.height
}

func (m *Mock) MoveCursor(x, y int) error     { return m.record("MoveCursor", x, y) }
func (m *Mock) Click(b Button) error          { return m.record("Click", b) }
func (m *Mock) MouseDown(b Button) error      { return m.record("MouseDown", b) }
func (m *Mock) MouseUp(b Button) error        { return m.record("MouseUp", b) }
func (m *Mock) PressKey(key string) error     { return m.record("PressKey", key) }
func (m *Mock) SetVolume(level float64) error { return m.record("SetVolume", level) }
func (m *Mock) Scroll(amount int) error       { return m.record("Scroll", amount) }
func (m *Mock) Zoom(dir ZoomDirection) error  { return m.record("Zoom", dir) }

func (m *Mock) VolumeRange() (float64, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.volErr != nil {
		return 0, 0, m.volErr
	}
	return m.volMin, m.volMax, nil
}
