package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Calibration is one completed calibration run.
type Calibration struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	ClickDistance float64   `json:"click_distance"`
	VolMinDist    float64   `json:"vol_min_dist"`
	VolMaxDist    float64   `json:"vol_max_dist"`
	CreatedAt     time.Time `json:"created_at"`
}

// CalibrationRepository records calibration history.
type CalibrationRepository struct {
	db *sql.DB
}

// Calibrations returns the calibration repository for this store.
func (s *Store) Calibrations() *CalibrationRepository {
	return &CalibrationRepository{db: s.db}
}

// Record inserts c. A missing ID is generated and a zero CreatedAt is set to now.
func (r *CalibrationRepository) Record(c *Calibration) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.CreatedAt = c.CreatedAt.UTC()

	_, err := r.db.Exec(
		`INSERT INTO calibrations (id, session_id, click_distance, vol_min_dist, vol_max_dist, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.SessionID, c.ClickDistance, c.VolMinDist, c.VolMaxDist, c.CreatedAt,
	)
	return err
}

// GetByID retrieves a calibration by its ID.
func (r *CalibrationRepository) GetByID(id string) (*Calibration, error) {
	c := &Calibration{}
	err := r.db.QueryRow(
		`SELECT id, session_id, click_distance, vol_min_dist, vol_max_dist, created_at
		 FROM calibrations WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.SessionID, &c.ClickDistance, &c.VolMinDist, &c.VolMaxDist, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns up to limit calibrations, newest first. limit <= 0 returns all.
func (r *CalibrationRepository) List(limit int) ([]*Calibration, error) {
	query := `SELECT id, session_id, click_distance, vol_min_dist, vol_max_dist, created_at
		 FROM calibrations ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calibrations []*Calibration
	for rows.Next() {
		c := &Calibration{}
		if err := rows.Scan(&c.ID, &c.SessionID, &c.ClickDistance, &c.VolMinDist, &c.VolMaxDist, &c.CreatedAt); err != nil {
			return nil, err
		}
		calibrations = append(calibrations, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return calibrations, nil
}

// ListBySession returns the calibrations recorded by one engine session, oldest first.
func (r *CalibrationRepository) ListBySession(sessionID string) ([]*Calibration, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, click_distance, vol_min_dist, vol_max_dist, created_at
		 FROM calibrations WHERE session_id = ? ORDER BY created_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calibrations []*Calibration
	for rows.Next() {
		c := &Calibration{}
		if err := rows.Scan(&c.ID, &c.SessionID, &c.ClickDistance, &c.VolMinDist, &c.VolMaxDist, &c.CreatedAt); err != nil {
			return nil, err
		}
		calibrations = append(calibrations, c)
	}

	return calibrations, rows.Err()
}
