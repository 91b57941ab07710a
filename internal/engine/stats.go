package engine

import (
	"sync/atomic"
	"time"
)

// Stats counts engine activity. Safe for concurrent use.
type Stats struct {
	commands atomic.Int64
	gestures atomic.Int64
	errors   atomic.Int64
	started  time.Time
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	CommandsExecuted int64   `json:"commands_executed"`
	GesturesDetected int64   `json:"gestures_detected"`
	Errors           int64   `json:"errors"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
}

func newStats(start time.Time) *Stats {
	return &Stats{started: start}
}

func (s *Stats) command() { s.commands.Add(1) }
func (s *Stats) gesture() { s.gestures.Add(1) }
func (s *Stats) failure() { s.errors.Add(1) }

// Snapshot returns the counters with uptime measured at now.
func (s *Stats) Snapshot(now time.Time) StatsSnapshot {
	return StatsSnapshot{
		CommandsExecuted: s.commands.Load(),
		GesturesDetected: s.gestures.Load(),
		Errors:           s.errors.Load(),
		UptimeSeconds:    now.Sub(s.started).Seconds(),
	}
}
