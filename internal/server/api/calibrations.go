package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ayusman/mudra/internal/store"
)

// CalibrationHandler serves the calibration history.
type CalibrationHandler struct {
	store *store.Store
}

// NewCalibrationHandler creates a new CalibrationHandler with the given store.
func NewCalibrationHandler(s *store.Store) *CalibrationHandler {
	return &CalibrationHandler{store: s}
}

type calibrationResponse struct {
	ID            string  `json:"id"`
	SessionID     string  `json:"session_id"`
	ClickDistance float64 `json:"click_distance"`
	VolMinDist    float64 `json:"vol_min_dist"`
	VolMaxDist    float64 `json:"vol_max_dist"`
	CreatedAt     string  `json:"created_at"`
}

type listCalibrationsResponse struct {
	Calibrations []calibrationResponse `json:"calibrations"`
}

func toCalibrationResponse(c *store.Calibration) calibrationResponse {
	return calibrationResponse{
		ID:            c.ID,
		SessionID:     c.SessionID,
		ClickDistance: c.ClickDistance,
		VolMinDist:    c.VolMinDist,
		VolMaxDist:    c.VolMaxDist,
		CreatedAt:     formatTime(c.CreatedAt),
	}
}

// ServeHTTP handles GET /api/calibrations and GET /api/calibrations/{id}.
func (h *CalibrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if id := subPath(r, "/api/calibrations"); id != "" {
		h.get(w, id)
		return
	}
	h.list(w, r)
}

// list returns the newest calibrations first. Query parameters: limit, session.
func (h *CalibrationHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		calibrations []*store.Calibration
		err          error
	)
	if session := q.Get("session"); session != "" {
		calibrations, err = h.store.Calibrations().ListBySession(session)
	} else {
		limit := 0
		if v := q.Get("limit"); v != "" {
			limit, err = strconv.Atoi(v)
			if err != nil || limit < 0 {
				writeError(w, http.StatusBadRequest, "Invalid limit")
				return
			}
		}
		calibrations, err = h.store.Calibrations().List(limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list calibrations")
		return
	}

	response := listCalibrationsResponse{
		Calibrations: make([]calibrationResponse, 0, len(calibrations)),
	}
	for _, c := range calibrations {
		response.Calibrations = append(response.Calibrations, toCalibrationResponse(c))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *CalibrationHandler) get(w http.ResponseWriter, id string) {
	c, err := h.store.Calibrations().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Calibration not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get calibration")
		return
	}
	writeJSON(w, http.StatusOK, toCalibrationResponse(c))
}
