package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/plugin"
)

// PluginHandler lists discovered plugins and runs their actions.
type PluginHandler struct {
	manager  *plugin.Manager
	executor *plugin.Executor
}

// NewPluginHandler creates a new PluginHandler.
func NewPluginHandler(m *plugin.Manager, e *plugin.Executor) *PluginHandler {
	return &PluginHandler{manager: m, executor: e}
}

type pluginResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

type execRequest struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params,omitempty"`
}

func toPluginResponse(p *plugin.Plugin) pluginResponse {
	actions := p.Manifest.Actions
	if actions == nil {
		actions = []string{}
	}
	return pluginResponse{
		Name:        p.Manifest.Name,
		Version:     p.Manifest.Version,
		Description: p.Manifest.Description,
		Actions:     actions,
	}
}

// ServeHTTP routes GET /api/plugins, GET /api/plugins/{name} and
// POST /api/plugins/{name}/exec.
func (h *PluginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := subPath(r, "/api/plugins")
	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w)
		return
	}

	name, rest, _ := strings.Cut(path, "/")
	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.get(w, name)
	case rest == "exec" && r.Method == http.MethodPost:
		h.exec(w, r, name)
	case rest == "" || rest == "exec":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

func (h *PluginHandler) list(w http.ResponseWriter) {
	plugins := h.manager.List()
	response := make([]pluginResponse, 0, len(plugins))
	for _, p := range plugins {
		response = append(response, toPluginResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"plugins": response})
}

func (h *PluginHandler) lookup(w http.ResponseWriter, name string) *plugin.Plugin {
	p, err := h.manager.Get(name)
	if err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			writeError(w, http.StatusNotFound, "Plugin not found")
			return nil
		}
		writeError(w, http.StatusInternalServerError, "Failed to get plugin")
		return nil
	}
	return p
}

func (h *PluginHandler) get(w http.ResponseWriter, name string) {
	if p := h.lookup(w, name); p != nil {
		writeJSON(w, http.StatusOK, toPluginResponse(p))
	}
}

func (h *PluginHandler) exec(w http.ResponseWriter, r *http.Request, name string) {
	p := h.lookup(w, name)
	if p == nil {
		return
	}

	var req execRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Action == "" {
		writeError(w, http.StatusBadRequest, "Action is required")
		return
	}
	if !p.Supports(req.Action) {
		writeError(w, http.StatusBadRequest, "Plugin does not support action "+req.Action)
		return
	}

	resp, err := h.executor.Execute(r.Context(), p, &plugin.Request{Action: req.Action, Params: req.Params})
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, plugin.ErrTimeout) {
			status = http.StatusGatewayTimeout
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
