package store

import (
	"context"

	"github.com/idyllic-ai/trademark-indexer/internal/domain"
)

// Store defines the interface for database operations
type Store interface {
	// Migrate creates the schema if it is missing (idempotent)
	Migrate(ctx context.Context) error
	// UpsertBatch persists the records in a single transaction. Replaying
	// the same records produces identical stored state.
	UpsertBatch(ctx context.Context, records []*domain.TrademarkRecord) error
	// FetchAlive streams trademarks whose most recent filing is alive,
	// reshaped for publishing, invoking fn with batches of at most
	// batchSize records
	FetchAlive(ctx context.Context, batchSize int, fn func([]domain.FeedRecord) error) error
	// TrademarkCount returns the number of trademark rows
	TrademarkCount(ctx context.Context) (int64, error)
	// FilingCount returns the number of filing rows
	FilingCount(ctx context.Context) (int64, error)
}
