package actuator

import (
	"errors"
	"testing"
)

func TestMock_RecordsCalls(t *testing.T) {
	m := NewMock()

	m.MoveCursor(10, 20)
	m.Click(ButtonLeft)
	m.Click(ButtonRight)
	m.PressKey("a")

	if got := m.Count("Click"); got != 2 {
		t.Errorf("Count(Click) = %d, want 2", got)
	}
	last, ok := m.Last("Click")
	if !ok || last.Args[0] != ButtonRight {
		t.Errorf("Last(Click) = %v, want right click", last)
	}
	if len(m.Calls()) != 4 {
		t.Errorf("expected 4 calls, got %d", len(m.Calls()))
	}

	m.Reset()
	if len(m.Calls()) != 0 {
		t.Error("Reset() did not clear calls")
	}
}

func TestMock_Failures(t *testing.T) {
	m := NewMock()
	boom := errors.New("boom")

	m.FailWith(boom)
	if err := m.Scroll(3); !errors.Is(err, boom) {
		t.Errorf("Scroll() error = %v, want %v", err, boom)
	}
	if m.Count("Scroll") != 1 {
		t.Error("failed calls should still be recorded")
	}

	m.SetVolumeRange(0, 0, ErrUnavailable)
	if _, _, err := m.VolumeRange(); !errors.Is(err, ErrUnavailable) {
		t.Errorf("VolumeRange() error = %v, want ErrUnavailable", err)
	}
}

func TestDesktop_VolumeWithoutBackend(t *testing.T) {
	d := NewDesktop(nil)

	if err := d.SetVolume(50); !errors.Is(err, ErrUnavailable) {
		t.Errorf("SetVolume() error = %v, want ErrUnavailable", err)
	}
	if _, _, err := d.VolumeRange(); !errors.Is(err, ErrUnavailable) {
		t.Errorf("VolumeRange() error = %v, want ErrUnavailable", err)
	}
}

func TestDesktop_DelegatesVolume(t *testing.T) {
	backend := NewMock()
	backend.SetVolumeRange(-65.25, 0, nil)
	d := NewDesktop(backend)

	min, max, err := d.VolumeRange()
	if err != nil || min != -65.25 || max != 0 {
		t.Errorf("VolumeRange() = %v, %v, %v", min, max, err)
	}
	if err := d.SetVolume(-10); err != nil {
		t.Fatalf("SetVolume() error = %v", err)
	}
	if backend.Count("SetVolume") != 1 {
		t.Error("SetVolume was not delegated")
	}
}
