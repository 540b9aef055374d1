// Package session tracks view sessions: each one reads the attendance
// source once and keeps the result for filtering and export.
package session

import (
	"context"
	"time"

	"attendancelist/internal/records"
)

// State is the loader state of a session.
type State string

const (
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateFailed  State = "failed"
)

// Snapshot is everything a session knows. Records is never nil once the
// session has left the loading state.
type Snapshot struct {
	ID        string           `json:"id"`
	State     State            `json:"state"`
	Source    string           `json:"source"`
	Records   []records.Record `json:"records"`
	Error     string           `json:"error,omitempty"`
	StartedAt time.Time        `json:"started_at"`
	LoadedAt  *time.Time       `json:"loaded_at,omitempty"`
}

// Loading reports whether the fetch is still in flight.
func (s Snapshot) Loading() bool { return s.State == StateLoading }

// Store keeps snapshots until their TTL runs out.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Get(ctx context.Context, id string) (Snapshot, error)
}
