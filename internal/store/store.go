// Package store persists analysis reports for later retrieval. Reports are
// held only for a bounded TTL; there is no long-term persistence of health
// data.
package store

import (
	"context"
	"errors"

	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/analyze"
)

var ErrNotFound = errors.New("report not found")

// Store is the report repository. Implementations must expire reports after
// the configured TTL and must be safe for concurrent use.
type Store interface {
	Save(ctx context.Context, r analyze.Report) error
	Get(ctx context.Context, id string) (analyze.Report, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
