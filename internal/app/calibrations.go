package app

import (
	"fmt"

	"github.com/ayusman/mudra/internal/engine"
	"github.com/ayusman/mudra/internal/store"
)

// CalibrationRecorder persists finished calibrations. *store.CalibrationRepository implements it.
type CalibrationRecorder interface {
	Record(c *store.Calibration) error
}

// RecordCalibration stores the thresholds of a finished calibration.
func RecordCalibration(r CalibrationRecorder, res engine.CalibrationResult) error {
	c := &store.Calibration{
		SessionID:     res.SessionID,
		ClickDistance: res.Thresholds.ClickDistance,
		VolMinDist:    res.Thresholds.VolMinDist,
		VolMaxDist:    res.Thresholds.VolMaxDist,
		CreatedAt:     res.CompletedAt.UTC(),
	}
	if err := r.Record(c); err != nil {
		return fmt.Errorf("record calibration: %w", err)
	}
	return nil
}
