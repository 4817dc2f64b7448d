package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idyllic-ai/trademark-indexer/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadIndexerConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, `
database:
  host: localhost
  dbname: trademarks
`)

	cfg, err := config.LoadIndexerConfig(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, "case-file", cfg.USPTO.RecordTag)
	assert.Equal(t, 10000, cfg.Ingest.CommitBatchSize)
	assert.Equal(t, 4, cfg.Ingest.Worker.WorkerPoolSize)
	assert.False(t, cfg.Ingest.FailFast)
	assert.Equal(t, "Trademark", cfg.Publisher.DocType)
	assert.Equal(t, 100, cfg.Publisher.BatchSize)
	assert.Equal(t, 100, cfg.Publisher.ChunkUnits)
	assert.Equal(t, 25, cfg.Publisher.ChunkOverlap)
}

func TestLoadIndexerConfigOverrides(t *testing.T) {
	path := writeConfigFile(t, `
debug: true
database:
  host: db.internal
  port: 5433
  dbname: trademarks
ingest:
  commit_batch_size: 500
  fail_fast: true
publisher:
  base_url: http://verba.internal:8000
  batch_size: 50
`)

	cfg, err := config.LoadIndexerConfig(path, t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 500, cfg.Ingest.CommitBatchSize)
	assert.True(t, cfg.Ingest.FailFast)
	assert.Equal(t, "http://verba.internal:8000", cfg.Publisher.BaseURL)
	assert.Equal(t, 50, cfg.Publisher.BatchSize)
}

func TestLoadIndexerConfigFromEnv(t *testing.T) {
	t.Setenv("TM_INDEXER_DATABASE_HOST", "env-host")
	t.Setenv("TM_INDEXER_DATABASE_DBNAME", "env-db")
	t.Setenv("TM_INDEXER_PUBLISHER_DOC_TYPE", "Filing")

	path := writeConfigFile(t, "debug: false\n")
	cfg, err := config.LoadIndexerConfig(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, "env-db", cfg.Database.DBName)
	assert.Equal(t, "Filing", cfg.Publisher.DocType)
}

func TestLoadIndexerConfigRequiredFields(t *testing.T) {
	path := writeConfigFile(t, "database:\n  host: localhost\n")

	_, err := config.LoadIndexerConfig(path, t.TempDir())
	assert.ErrorContains(t, err, "database.dbname is required")
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		DBName:   "trademarks",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=localhost port=5432 user=postgres password=secret dbname=trademarks sslmode=disable", cfg.DSN())
}
