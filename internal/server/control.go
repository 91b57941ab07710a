package server

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/engine"
)

type controlRequest struct {
	Command string `json:"command"`
}

type controlResponse struct {
	Accepted bool   `json:"accepted"`
	Command  string `json:"command"`
	Error    string `json:"error,omitempty"`
}

// handleStatus handles GET /api/status with the latest engine snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.config.Engine.Status())
}

// handleControl handles POST /api/control. The command is queued for the
// next frame, so the response only confirms it was accepted.
func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, controlResponse{Error: "Invalid JSON"})
		return
	}
	cmd, err := engine.ParseCommand(req.Command)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, controlResponse{Command: req.Command, Error: err.Error()})
		return
	}
	if !s.config.Engine.Submit(cmd) {
		writeJSON(w, http.StatusServiceUnavailable, controlResponse{Command: req.Command, Error: "command queue full"})
		return
	}
	writeJSON(w, http.StatusAccepted, controlResponse{Accepted: true, Command: cmd.String()})
}
