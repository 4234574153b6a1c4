// Package history persists observed (price, stock, risk) samples per part.
// The store is append-only: samples represent observed history and are never
// updated or deleted.
package history

import (
	"context"

	"github.com/partsignal/sourcing-cli/internal/model"
)

// Store defines the persistence interface for history samples. Append and
// read failures are storage errors and surface to the caller; risk
// computation depends on history integrity, so they are never swallowed.
type Store interface {
	// Append inserts one sample.
	Append(ctx context.Context, sample model.HistorySample) error
	// Query returns all samples for a part ordered by recorded_at ascending.
	Query(ctx context.Context, partNumber string) ([]model.HistorySample, error)
	// Latest returns the most recent sample for a part, or nil when none.
	Latest(ctx context.Context, partNumber string) (*model.HistorySample, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
