package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/idyllic-ai/trademark-indexer/internal/domain"
	"github.com/idyllic-ai/trademark-indexer/internal/logger"
	"github.com/idyllic-ai/trademark-indexer/internal/publisher"
	"github.com/idyllic-ai/trademark-indexer/internal/store"
)

// FeedConfig holds feed publishing configuration
type FeedConfig struct {
	DocType   string // document type label in the index
	BatchSize int    // records per publish request
}

// FeedPublisher republishes the alive-trademarks feed from the store into
// the external document index.
type FeedPublisher struct {
	config    FeedConfig
	store     store.Store
	publisher publisher.Publisher
}

// NewFeedPublisher creates a feed publishing driver
func NewFeedPublisher(config FeedConfig, st store.Store, pub publisher.Publisher) *FeedPublisher {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.DocType == "" {
		config.DocType = "Trademark"
	}
	return &FeedPublisher{config: config, store: st, publisher: pub}
}

// Run streams alive trademarks and publishes them in batches. An accepted
// count below the batch size aborts the run: publishing may have partially
// succeeded, and an automatic retry would double-publish.
func (f *FeedPublisher) Run(ctx context.Context) error {
	var total int
	err := f.store.FetchAlive(ctx, f.config.BatchSize, func(batch []domain.FeedRecord) error {
		accepted, err := f.publisher.Publish(ctx, batch, f.config.DocType)
		if err != nil {
			return err
		}
		if accepted < len(batch) {
			return fmt.Errorf("%w: sent %d, accepted %d", domain.ErrPublishUndercount, len(batch), accepted)
		}

		total += accepted
		logger.Info("Published batch",
			zap.Int("batch", len(batch)),
			zap.Int("total", total),
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("feed publishing aborted after %d documents: %w", total, err)
	}

	logger.Info("Feed publishing finished", zap.Int("total", total))
	return nil
}
