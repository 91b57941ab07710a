package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/engine"
)

// fakeController records submitted commands and serves a settable status.
type fakeController struct {
	mu       sync.Mutex
	status   engine.Status
	commands []engine.Command
	full     bool
}

func newFakeController(mode engine.Mode) *fakeController {
	return &fakeController{status: engine.Status{Mode: mode, SessionID: "session-1", UpdatedAt: time.Unix(1700000000, 0)}}
}

func (c *fakeController) Status() engine.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *fakeController) Submit(cmd engine.Command) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return false
	}
	c.commands = append(c.commands, cmd)
	return true
}

// setMode publishes a new status with the given mode.
func (c *fakeController) setMode(m engine.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.Mode = m
	c.status.UpdatedAt = c.status.UpdatedAt.Add(time.Second)
}

func (c *fakeController) submitted() []engine.Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]engine.Command(nil), c.commands...)
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", ct)
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("status = %v, want ok", response["status"])
	}
	if _, ok := response["uptime"]; !ok {
		t.Error("response has no uptime")
	}
	if _, ok := response["mode"]; ok {
		t.Error("mode should be omitted without an engine")
	}

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(method, "/api/health", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s /api/health = %d, want %d", method, rec.Code, http.StatusMethodNotAllowed)
		}
	}
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	index := "<html><body>mudra</body></html>"
	css := "body { color: red; }"
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(index), 0644); err != nil {
		t.Fatalf("failed to write index.html: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "style.css"), []byte(css), 0644); err != nil {
		t.Fatalf("failed to write style.css: %v", err)
	}

	tests := []struct {
		name      string
		staticDir string
		path      string
		wantCode  int
		wantBody  string
	}{
		{"index at root", dir, "/", http.StatusOK, index},
		{"asset", dir, "/style.css", http.StatusOK, css},
		{"missing asset", dir, "/nonexistent.html", http.StatusNotFound, ""},
		{"unknown api route", dir, "/api/nonexistent", http.StatusNotFound, ""},
		{"no static dir", "", "/", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Config{StaticDir: tt.staticDir})
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.wantCode)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestServer_HealthReportsMode(t *testing.T) {
	s := New(Config{Engine: newFakeController(engine.ModeKeyboard)})
	defer s.Shutdown(t.Context())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["mode"] != "keyboard" {
		t.Errorf("mode = %v, want keyboard", response["mode"])
	}
}

func TestServer_RoutesNeedCollaborators(t *testing.T) {
	s := New(Config{})

	for _, path := range []string{"/api/status", "/api/control", "/api/events", "/api/stream", "/api/calibrations", "/api/settings", "/api/plugins"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want %d without a backing component", path, rec.Code, http.StatusNotFound)
		}
	}
}
