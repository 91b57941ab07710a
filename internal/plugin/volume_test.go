package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/actuator"
)

// volumeScript answers volume-range with 0..100 and appends set-volume requests to levels.log.
const volumeScript = `#!/bin/sh
INPUT=$(cat)
case "$INPUT" in
  *volume-range*) echo '{"success":true,"data":{"min":0,"max":100}}' ;;
  *set-volume*) echo "$INPUT" >> levels.log; echo '{"success":true}' ;;
  *) echo '{"success":false,"error":"unknown action"}' ;;
esac
`

func newTestVolume(t *testing.T, script string, actions ...string) (*Volume, string) {
	t.Helper()
	dir := t.TempDir()
	pluginDir := ""
	if script != "" {
		pluginDir = writePlugin(t, dir, SystemControl, script, actions...)
	}
	manager := NewManager(dir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	return NewVolume(manager, NewExecutor(5*time.Second)), pluginDir
}

func TestVolume_RangeAndSet(t *testing.T) {
	vol, pluginDir := newTestVolume(t, volumeScript, ActionVolumeRange, ActionSetVolume)

	min, max, err := vol.VolumeRange()
	if err != nil {
		t.Fatalf("VolumeRange() error = %v", err)
	}
	if min != 0 || max != 100 {
		t.Errorf("VolumeRange() = [%v, %v], want [0, 100]", min, max)
	}

	if err := vol.SetVolume(37.5); err != nil {
		t.Fatalf("SetVolume() error = %v", err)
	}
	vol.Close()
	logged, err := os.ReadFile(filepath.Join(pluginDir, "levels.log"))
	if err != nil {
		t.Fatalf("plugin did not record the request: %v", err)
	}
	if !strings.Contains(string(logged), `"level":37.5`) {
		t.Errorf("plugin received %s, want level 37.5", logged)
	}
}

func TestVolume_Unavailable(t *testing.T) {
	t.Run("no plugin", func(t *testing.T) {
		vol, _ := newTestVolume(t, "")
		if _, _, err := vol.VolumeRange(); !errors.Is(err, actuator.ErrUnavailable) {
			t.Errorf("VolumeRange() error = %v, want ErrUnavailable", err)
		}
		if err := vol.SetVolume(10); !errors.Is(err, actuator.ErrUnavailable) {
			t.Errorf("SetVolume() error = %v, want ErrUnavailable", err)
		}
	})

	t.Run("action not in manifest", func(t *testing.T) {
		vol, _ := newTestVolume(t, volumeScript, "volume-up", "volume-down")
		if _, _, err := vol.VolumeRange(); !errors.Is(err, actuator.ErrUnavailable) {
			t.Errorf("VolumeRange() error = %v, want ErrUnavailable", err)
		}
	})
}

func TestVolume_PluginFailure(t *testing.T) {
	vol, _ := newTestVolume(t, "#!/bin/sh\necho '{\"success\":false,\"error\":\"no mixer\"}'\n", ActionVolumeRange, ActionSetVolume)

	_, _, err := vol.VolumeRange()
	if err == nil || !strings.Contains(err.Error(), "no mixer") {
		t.Errorf("VolumeRange() error = %v, want plugin error", err)
	}
	if errors.Is(err, actuator.ErrUnavailable) {
		t.Error("a failing plugin is not a missing capability")
	}
}

func TestVolume_InvalidRange(t *testing.T) {
	vol, _ := newTestVolume(t, "#!/bin/sh\necho '{\"success\":true,\"data\":{\"min\":50,\"max\":50}}'\n", ActionVolumeRange)

	if _, _, err := vol.VolumeRange(); err == nil {
		t.Error("VolumeRange() should reject an empty range")
	}
}

// slowVolumeScript takes a while per set-volume and logs each level it applies.
const slowVolumeScript = `#!/bin/sh
INPUT=$(cat)
case "$INPUT" in
  *set-volume*) sleep 0.2; echo "$INPUT" >> levels.log; echo '{"success":true}' ;;
  *) echo '{"success":false,"error":"unknown action"}' ;;
esac
`

func TestVolume_SetVolumeDoesNotWaitAndKeepsLatest(t *testing.T) {
	vol, pluginDir := newTestVolume(t, slowVolumeScript, ActionSetVolume)

	start := time.Now()
	for level := 1; level <= 20; level++ {
		if err := vol.SetVolume(float64(level)); err != nil {
			t.Fatalf("SetVolume(%d) error = %v", level, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("SetVolume blocked for %v, want it to return before the plugin finishes", elapsed)
	}
	vol.Close()

	logged, err := os.ReadFile(filepath.Join(pluginDir, "levels.log"))
	if err != nil {
		t.Fatalf("plugin did not record any request: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(logged)), "\n")
	if len(lines) >= 20 {
		t.Errorf("plugin ran %d times for 20 queued levels, want superseded levels skipped", len(lines))
	}
	if last := lines[len(lines)-1]; !strings.Contains(last, `"level":20`) {
		t.Errorf("last applied request = %s, want level 20", last)
	}

	if err := vol.SetVolume(5); err == nil {
		t.Error("SetVolume() after Close should fail")
	}
}
