package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// USPTOConfig holds USPTO bulk-data source configuration
type USPTOConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	RecordTag       string        `mapstructure:"record_tag"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
}

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// IngestConfig holds ingestion pipeline configuration
type IngestConfig struct {
	CommitBatchSize int          `mapstructure:"commit_batch_size"`
	FailFast        bool         `mapstructure:"fail_fast"`
	LedgerPath      string       `mapstructure:"ledger_path"`
	LiveCodesPath   string       `mapstructure:"live_codes_path"`
	Worker          WorkerConfig `mapstructure:"worker"`
}

// PublisherConfig holds document-index publisher configuration
type PublisherConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	DocType      string        `mapstructure:"doc_type"`
	BatchSize    int           `mapstructure:"batch_size"`
	ChunkUnits   int           `mapstructure:"chunk_units"`
	ChunkOverlap int           `mapstructure:"chunk_overlap"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
}

// IndexerConfig holds configuration for the tm-indexer program
type IndexerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig  `mapstructure:"database"`
	USPTO      USPTOConfig     `mapstructure:"uspto"`
	Ingest     IngestConfig    `mapstructure:"ingest"`
	Publisher  PublisherConfig `mapstructure:"publisher"`
}

// LoadIndexerConfig loads configuration for tm-indexer
func LoadIndexerConfig(configFile string, envPath string) (*IndexerConfig, error) {
	v := configureViper("tm-indexer", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("uspto.base_url", "https://bulkdata.uspto.gov/data/trademark/dailyxml/applications/")
	v.SetDefault("uspto.record_tag", "case-file")
	v.SetDefault("uspto.download_timeout", "10m")
	v.SetDefault("ingest.commit_batch_size", 10000)
	v.SetDefault("ingest.ledger_path", "data/processed_files.txt")
	v.SetDefault("ingest.live_codes_path", "data/live_codes.txt")
	v.SetDefault("ingest.worker.pool_size", 4)
	v.SetDefault("ingest.worker.queue_size", 64)
	v.SetDefault("publisher.doc_type", "Trademark")
	v.SetDefault("publisher.batch_size", 100)
	v.SetDefault("publisher.chunk_units", 100)
	v.SetDefault("publisher.chunk_overlap", 25)
	v.SetDefault("publisher.http_timeout", "5m")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg IndexerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if cfg.Database.Host == "" {
		return nil, errors.New("database.host is required")
	}
	if cfg.Database.DBName == "" {
		return nil, errors.New("database.dbname is required")
	}

	return &cfg, nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("TM_INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// USPTO
		"uspto.base_url",
		"uspto.record_tag",
		"uspto.download_timeout",
		// Ingest
		"ingest.commit_batch_size",
		"ingest.fail_fast",
		"ingest.ledger_path",
		"ingest.live_codes_path",
		"ingest.worker.pool_size",
		"ingest.worker.queue_size",
		// Publisher
		"publisher.base_url",
		"publisher.doc_type",
		"publisher.batch_size",
		"publisher.chunk_units",
		"publisher.chunk_overlap",
		"publisher.http_timeout",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
