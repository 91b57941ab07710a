package engine

import "errors"

// Error taxonomy. None of these is fatal: the engine skips to the next frame.
var (
	// ErrStopped is returned by ProcessFrame once the engine is stopped.
	ErrStopped = errors.New("engine stopped")

	// ErrPerceptionUnavailable means no pose stream is available (camera or detector down).
	ErrPerceptionUnavailable = errors.New("perception unavailable")

	// ErrActuatorUnavailable means an action capability is missing, e.g. volume control.
	ErrActuatorUnavailable = errors.New("actuator unavailable")

	// ErrTransientFrame is a single-frame read or detection failure.
	ErrTransientFrame = errors.New("transient frame error")

	// ErrInvalidCalibrationState is reported when a calibration hold is lost or
	// a measurement violates the threshold invariants.
	ErrInvalidCalibrationState = errors.New("invalid calibration state")
)
