package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/idyllic-ai/trademark-indexer/internal/adapter"
	"github.com/idyllic-ai/trademark-indexer/internal/bulkdata"
	"github.com/idyllic-ai/trademark-indexer/internal/domain"
	"github.com/idyllic-ai/trademark-indexer/internal/ledger"
	"github.com/idyllic-ai/trademark-indexer/internal/logger"
	"github.com/idyllic-ai/trademark-indexer/internal/parser"
	"github.com/idyllic-ai/trademark-indexer/internal/store"
)

// ArchiveSource lists and opens bulk-data archives
type ArchiveSource interface {
	// ListArchives returns archive filenames, newest first
	ListArchives(ctx context.Context) ([]string, error)
	// Open returns a reader over the XML entry of the named archive
	Open(ctx context.Context, filename string) (io.ReadCloser, error)
}

// RetryPolicy is the explicit retry contract applied to archive downloads.
// Exhausted retries are fatal to the current file only.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryPolicy bounds download retries to a few minutes
var DefaultRetryPolicy = RetryPolicy{
	InitialInterval: 5 * time.Second,
	MaxInterval:     1 * time.Minute,
	MaxElapsedTime:  5 * time.Minute,
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = p.MaxElapsedTime
	return backoff.WithContext(b, ctx)
}

// IngestConfig holds ingestion pipeline configuration
type IngestConfig struct {
	RecordTag       string      // XML tag delimiting one record
	CommitBatchSize int         // records per upsert transaction
	WorkerPoolSize  int         // concurrently processed files
	WorkerQueueSize int         // pending files buffered for the pool
	FailFast        bool        // abort remaining files on first failure
	Retry           RetryPolicy // download retry policy
}

// Ingestor drives the per-file pipeline: stream, split, parse, upsert in
// batches, then mark the file done in the ledger. Files are independent, so
// a pool of workers processes them concurrently; records within one file are
// upserted in file order.
type Ingestor struct {
	config IngestConfig
	source ArchiveSource
	store  store.Store
	ledger *ledger.Ledger
	clock  adapter.Clock
}

// NewIngestor creates an ingestion driver
func NewIngestor(config IngestConfig, source ArchiveSource, st store.Store, ld *ledger.Ledger, clock adapter.Clock) *Ingestor {
	if config.RecordTag == "" {
		config.RecordTag = bulkdata.DefaultRecordTag
	}
	if config.CommitBatchSize <= 0 {
		config.CommitBatchSize = 10000
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 1
	}
	if config.WorkerQueueSize <= 0 {
		config.WorkerQueueSize = 64
	}
	if config.Retry == (RetryPolicy{}) {
		config.Retry = DefaultRetryPolicy
	}
	return &Ingestor{config: config, source: source, store: st, ledger: ld, clock: clock}
}

// Run lists the bulk archives, skips ledgered ones and processes the rest
// newest-first. A failed file does not halt the batch unless FailFast is set;
// its ledger entry stays absent so a later run reprocesses it in full.
func (i *Ingestor) Run(ctx context.Context) error {
	files, err := i.source.ListArchives(ctx)
	if err != nil {
		return fmt.Errorf("failed to list archives: %w", err)
	}

	pending := make([]string, 0, len(files))
	for _, filename := range files {
		if i.ledger.IsProcessed(filename) {
			logger.Debug("Skipping already processed file", zap.String("file", filename))
			continue
		}
		pending = append(pending, filename)
	}

	logger.Info("Starting ingestion",
		zap.Int("listed", len(files)),
		zap.Int("pending", len(pending)),
		zap.Int("workers", i.config.WorkerPoolSize),
	)
	if len(pending) == 0 {
		return nil
	}

	// The pool is bound to the caller's context; the inner cancel only
	// short-circuits queued work once FailFast trips, so late submissions
	// never land on a stopped pool.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := pond.NewPool(
		i.config.WorkerPoolSize,
		pond.WithQueueSize(i.config.WorkerQueueSize),
		pond.WithContext(ctx),
	)

	var failed atomic.Int32
	for _, filename := range pending {
		pool.Submit(func() {
			if runCtx.Err() != nil {
				return
			}
			if err := i.processFile(runCtx, filename); err != nil {
				failed.Add(1)
				logger.Error(err, zap.String("file", filename))
				if i.config.FailFast {
					cancel()
				}
			}
		})
	}
	pool.StopAndWait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d files failed", n, len(pending))
	}
	return nil
}

// processFile runs the streaming pipeline for one archive and marks it in
// the ledger only after every batch has committed.
func (i *Ingestor) processFile(ctx context.Context, filename string) error {
	started := i.clock.Now()
	logger.Info("Processing file", zap.String("file", filename))

	var entry io.ReadCloser
	download := func() error {
		var err error
		entry, err = i.source.Open(ctx, filename)
		if errors.Is(err, domain.ErrEntryNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}
	if err := backoff.Retry(download, i.config.Retry.backOff(ctx)); err != nil {
		return fmt.Errorf("failed to open archive %s: %w", filename, err)
	}
	defer func() {
		if err := entry.Close(); err != nil {
			logger.Warn("failed to close archive entry", zap.Error(err), zap.String("file", filename))
		}
	}()

	splitter := bulkdata.NewSplitter(entry, i.config.RecordTag, filename)
	batch := make([]*domain.TrademarkRecord, 0, i.config.CommitBatchSize)
	var upserted, missingMark, malformed int

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := i.store.UpsertBatch(ctx, batch); err != nil {
			return fmt.Errorf("failed to upsert batch from %s: %w", filename, err)
		}
		upserted += len(batch)
		logger.Info("Committed batch",
			zap.String("file", filename),
			zap.Int("upserted", upserted),
			zap.Duration("elapsed", i.clock.Since(started)),
		)
		batch = make([]*domain.TrademarkRecord, 0, i.config.CommitBatchSize)
		return nil
	}

	for {
		fragment, err := splitter.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read records from %s: %w", filename, err)
		}

		record, err := parser.Parse(fragment)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotARecord), errors.Is(err, domain.ErrMissingMark):
				// Expected volume, skip silently
				missingMark++
			default:
				malformed++
				logger.Error(err, zap.String("file", filename))
			}
			continue
		}

		batch = append(batch, record)
		if len(batch) >= i.config.CommitBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	if err := i.ledger.MarkProcessed(filename); err != nil {
		return fmt.Errorf("failed to mark %s processed: %w", filename, err)
	}

	logger.Info("Finished file",
		zap.String("file", filename),
		zap.Int("upserted", upserted),
		zap.Int("missing_mark", missingMark),
		zap.Int("malformed", malformed),
		zap.Duration("elapsed", i.clock.Since(started)),
	)
	return nil
}
