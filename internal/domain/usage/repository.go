package usage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines usage record persistence
type Repository interface {
	// Record stores a usage record. Implementations may buffer writes.
	Record(ctx context.Context, rec *Record) error

	// SumCostSince returns the total USD cost incurred by a user since
	// the given time
	SumCostSince(ctx context.Context, userID uuid.UUID, since time.Time) (decimal.Decimal, error)

	// RecentRecords returns a user's most recent usage records
	RecentRecords(ctx context.Context, userID uuid.UUID, limit int) ([]Record, error)
}
