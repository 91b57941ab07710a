package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const okScript = "#!/bin/sh\necho '{\"success\":true}'\n"

func TestManager_Discover(t *testing.T) {
	tmpDir := t.TempDir()
	pluginDir := writePlugin(t, tmpDir, "system-control", okScript, "volume-range", "set-volume")

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	plugin := plugins[0]
	if plugin.Manifest.Name != "system-control" {
		t.Errorf("expected plugin name 'system-control', got %q", plugin.Manifest.Name)
	}
	if plugin.Path != pluginDir {
		t.Errorf("expected path %q, got %q", pluginDir, plugin.Path)
	}
	if plugin.Executable != filepath.Join(pluginDir, "run.sh") {
		t.Errorf("expected executable under the plugin dir, got %q", plugin.Executable)
	}
	if !plugin.Supports("set-volume") || plugin.Supports("keystroke") {
		t.Errorf("Supports() does not match manifest actions %v", plugin.Manifest.Actions)
	}
}

func TestManager_List_Sorted(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"zeta", "keyboard", "alpha"} {
		writePlugin(t, tmpDir, name, okScript, "run")
	}

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	want := []string{"alpha", "keyboard", "zeta"}
	if len(plugins) != len(want) {
		t.Fatalf("expected %d plugins, got %d", len(want), len(plugins))
	}
	for i, name := range want {
		if plugins[i].Manifest.Name != name {
			t.Errorf("List()[%d] = %q, want %q", i, plugins[i].Manifest.Name, name)
		}
	}
}

func TestManager_Discover_SkipsBadManifests(t *testing.T) {
	tmpDir := t.TempDir()
	writePlugin(t, tmpDir, "good", okScript, "run")

	bad := filepath.Join(tmpDir, "bad")
	os.MkdirAll(bad, 0755)
	os.WriteFile(filepath.Join(bad, "plugin.json"), []byte("{not json"), 0644)

	nameless := filepath.Join(tmpDir, "nameless")
	os.MkdirAll(nameless, 0755)
	os.WriteFile(filepath.Join(nameless, "plugin.json"), []byte(`{"executable":"run.sh"}`), 0644)

	os.MkdirAll(filepath.Join(tmpDir, "no-manifest"), 0755)
	os.WriteFile(filepath.Join(tmpDir, "stray-file"), []byte("x"), 0644)

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if plugins := manager.List(); len(plugins) != 1 || plugins[0].Manifest.Name != "good" {
		t.Errorf("expected only the good plugin, got %d plugins", len(plugins))
	}
}

func TestManager_Discover_MissingDir(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "does-not-exist"))
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() on missing dir should not fail: %v", err)
	}
	if len(manager.List()) != 0 {
		t.Error("expected no plugins")
	}
}

func TestManager_Discover_Rescan(t *testing.T) {
	tmpDir := t.TempDir()
	pluginDir := writePlugin(t, tmpDir, "keyboard", okScript, "keystroke")

	manager := NewManager(tmpDir)
	manager.Discover()
	if _, err := manager.Get("keyboard"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	os.RemoveAll(pluginDir)
	manager.Discover()
	if _, err := manager.Get("keyboard"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Get() after removal error = %v, want ErrPluginNotFound", err)
	}
}

func TestManager_PluginDir(t *testing.T) {
	manager := NewManager("/some/path")
	if manager.PluginDir() != "/some/path" {
		t.Errorf("PluginDir() = %q", manager.PluginDir())
	}
}
