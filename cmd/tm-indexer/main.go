package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/idyllic-ai/trademark-indexer/internal/adapter"
	"github.com/idyllic-ai/trademark-indexer/internal/bulkdata"
	"github.com/idyllic-ai/trademark-indexer/internal/config"
	"github.com/idyllic-ai/trademark-indexer/internal/domain"
	"github.com/idyllic-ai/trademark-indexer/internal/ledger"
	"github.com/idyllic-ai/trademark-indexer/internal/logger"
	"github.com/idyllic-ai/trademark-indexer/internal/pipeline"
	"github.com/idyllic-ai/trademark-indexer/internal/publisher"
	"github.com/idyllic-ai/trademark-indexer/internal/store"
)

var (
	mode       = flag.String("mode", "ingest", "Run mode: ingest, publish, search-docs, delete-docs")
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	dbDSN      = flag.String("db", "", "Database connection string override")
	query      = flag.String("query", "", "Document name query for search-docs (empty lists all)")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadIndexerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context cancelled on shutdown signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "tm-indexer",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting tm-indexer", zap.String("mode", *mode))

	switch *mode {
	case "ingest":
		err = runIngest(ctx, cfg)
	case "publish":
		err = runPublish(ctx, cfg)
	case "search-docs":
		err = runSearchDocs(ctx, cfg)
	case "delete-docs":
		err = runDeleteDocs(ctx, cfg)
	default:
		logger.Fatal("Unknown mode", zap.String("mode", *mode))
	}
	if err != nil {
		logger.Error(err, zap.String("mode", *mode))
		logger.Flush(2 * time.Second)
		os.Exit(1)
	}

	logger.Info("tm-indexer finished", zap.String("mode", *mode))
}

// connectStore opens the database, configures the pool and runs migrations
func connectStore(ctx context.Context, cfg *config.IndexerConfig, alive domain.AliveStatusSet) (store.Store, error) {
	dsn := cfg.Database.DSN()
	if *dbDSN != "" {
		dsn = *dbDSN
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		return nil, fmt.Errorf("failed to configure connection pool: %w", err)
	}
	logger.Info("Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	dataStore := store.NewPGStore(db, alive)
	if err := dataStore.Migrate(ctx); err != nil {
		return nil, err
	}
	return dataStore, nil
}

func runIngest(ctx context.Context, cfg *config.IndexerConfig) error {
	alive, err := domain.LoadAliveStatuses(cfg.Ingest.LiveCodesPath)
	if err != nil {
		return fmt.Errorf("failed to load live status codes: %w", err)
	}
	logger.Info("Loaded live status codes",
		zap.String("path", cfg.Ingest.LiveCodesPath),
		zap.Int("count", len(alive)),
	)

	dataStore, err := connectStore(ctx, cfg, alive)
	if err != nil {
		return err
	}

	processed, err := ledger.Open(cfg.Ingest.LedgerPath)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	logger.Info("Opened ledger",
		zap.String("path", cfg.Ingest.LedgerPath),
		zap.Int("entries", processed.Len()),
	)

	httpClient := adapter.NewHTTPClient(cfg.USPTO.DownloadTimeout)
	source := bulkdata.NewClient(httpClient, cfg.USPTO.BaseURL)

	ingestor := pipeline.NewIngestor(pipeline.IngestConfig{
		RecordTag:       cfg.USPTO.RecordTag,
		CommitBatchSize: cfg.Ingest.CommitBatchSize,
		WorkerPoolSize:  cfg.Ingest.Worker.WorkerPoolSize,
		WorkerQueueSize: cfg.Ingest.Worker.WorkerQueueSize,
		FailFast:        cfg.Ingest.FailFast,
	}, source, dataStore, processed, adapter.NewClock())

	return ingestor.Run(ctx)
}

func runPublish(ctx context.Context, cfg *config.IndexerConfig) error {
	alive, err := domain.LoadAliveStatuses(cfg.Ingest.LiveCodesPath)
	if err != nil {
		return fmt.Errorf("failed to load live status codes: %w", err)
	}

	dataStore, err := connectStore(ctx, cfg, alive)
	if err != nil {
		return err
	}

	feed := pipeline.NewFeedPublisher(pipeline.FeedConfig{
		DocType:   cfg.Publisher.DocType,
		BatchSize: cfg.Publisher.BatchSize,
	}, dataStore, newVerbaClient(cfg))

	return feed.Run(ctx)
}

func runSearchDocs(ctx context.Context, cfg *config.IndexerConfig) error {
	documents, err := newVerbaClient(cfg).SearchDocuments(ctx, *query, cfg.Publisher.DocType)
	if err != nil {
		return err
	}

	for _, doc := range documents {
		fmt.Printf("%s\t%s\t%s\n", doc.ID, doc.Type, doc.Name)
	}
	logger.Info("Search finished", zap.Int("documents", len(documents)))
	return nil
}

func runDeleteDocs(ctx context.Context, cfg *config.IndexerConfig) error {
	client := newVerbaClient(cfg)

	documents, err := client.SearchDocuments(ctx, "", cfg.Publisher.DocType)
	if err != nil {
		return err
	}
	if len(documents) == 0 {
		logger.Info("No documents to delete")
		return nil
	}

	ids := make([]string, 0, len(documents))
	for _, doc := range documents {
		ids = append(ids, doc.ID)
	}
	if err := client.DeleteDocuments(ctx, ids); err != nil {
		return err
	}

	logger.Info("Deleted documents", zap.Int("count", len(ids)))
	return nil
}

func newVerbaClient(cfg *config.IndexerConfig) publisher.Publisher {
	httpClient := adapter.NewHTTPClient(cfg.Publisher.HTTPTimeout)
	return publisher.NewVerbaClient(httpClient, publisher.Config{
		BaseURL:      cfg.Publisher.BaseURL,
		ChunkUnits:   cfg.Publisher.ChunkUnits,
		ChunkOverlap: cfg.Publisher.ChunkOverlap,
	})
}
