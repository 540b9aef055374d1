// Package source reads the attendance record list from where the
// registration backend keeps it.
package source

import (
	"context"

	"attendancelist/internal/records"
)

// Source yields the full attendance record list in one read.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]records.Record, error)
}
