package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/idyllic-ai/trademark-indexer/internal/domain"
	"github.com/idyllic-ai/trademark-indexer/internal/store/schema"
)

type pgStore struct {
	db    *gorm.DB
	alive domain.AliveStatusSet
}

// NewPGStore creates a new PostgreSQL store instance. The alive set decides
// the alive flag stamped onto each filing at ingest time.
func NewPGStore(db *gorm.DB, alive domain.AliveStatusSet) Store {
	return &pgStore{db: db, alive: alive}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to reasonable defaults:
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// calculateSafeBatchSize computes the batch size for bulk inserts that stays
// under PostgreSQL's extended-protocol limit of 65535 parameters per query,
// with headroom for ON CONFLICT parameters and GORM bookkeeping.
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000

	safeBatchSize := max((maxParams-totalHeadroom)/fieldsPerRecord, 1)
	if safeBatchSize > totalRecords {
		return totalRecords
	}
	return safeBatchSize
}

// Migrate creates the trademark and filing tables if they are missing
func (s *pgStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&schema.Trademark{}, &schema.Filing{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// UpsertBatch persists the records in a single transaction. Both tables use
// ON CONFLICT DO NOTHING: a re-seen serial number merges into the existing
// trademark row (first write wins) and a re-seen (serial, status, date)
// filing is a no-op, so replaying a file twice produces identical state.
func (s *pgStore) UpsertBatch(ctx context.Context, records []*domain.TrademarkRecord) error {
	if len(records) == 0 {
		return nil
	}

	trademarks := make([]schema.Trademark, 0, len(records))
	filings := make([]schema.Filing, 0, len(records))
	for _, record := range records {
		owners, err := json.Marshal(record.Owners)
		if err != nil {
			return fmt.Errorf("failed to marshal owners for %s: %w", record.SerialNumber, err)
		}
		statements, err := json.Marshal(record.Statements)
		if err != nil {
			return fmt.Errorf("failed to marshal statements for %s: %w", record.SerialNumber, err)
		}

		trademarks = append(trademarks, schema.Trademark{
			SerialNumber: record.SerialNumber,
			Mark:         record.Mark,
			Owners:       owners,
			Statements:   statements,
		})
		filings = append(filings, schema.Filing{
			TrademarkSerial: record.SerialNumber,
			Status:          record.Status,
			Alive:           s.alive.Contains(record.Status),
			Date:            record.TransactionDate,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "serial_number"}},
			DoNothing: true,
		}).CreateInBatches(&trademarks, calculateSafeBatchSize(len(trademarks), 4)).Error; err != nil {
			return fmt.Errorf("failed to upsert trademarks: %w", err)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "trademark_serial"}, {Name: "status"}, {Name: "date"}},
			DoNothing: true,
		}).CreateInBatches(&filings, calculateSafeBatchSize(len(filings), 4)).Error; err != nil {
			return fmt.Errorf("failed to upsert filings: %w", err)
		}

		return nil
	})
}

// FetchAlive streams trademarks joined with their most recent filing,
// filtered to alive ones. Multiple filings on the same date break the tie by
// the highest status code, which keeps the result deterministic.
func (s *pgStore) FetchAlive(ctx context.Context, batchSize int, fn func([]domain.FeedRecord) error) error {
	rows, err := s.db.WithContext(ctx).Raw(`
		SELECT tm.serial_number, tm.mark, tm.owners, tm.statements, f.status, f.alive, f.date
		FROM trademarks tm
		JOIN (
			SELECT DISTINCT ON (trademark_serial) trademark_serial, status, alive, date
			FROM filings
			ORDER BY trademark_serial, date DESC, status DESC
		) f ON f.trademark_serial = tm.serial_number
		WHERE f.alive
		ORDER BY tm.serial_number
	`).Rows()
	if err != nil {
		return fmt.Errorf("failed to query alive trademarks: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	batch := make([]domain.FeedRecord, 0, batchSize)
	for rows.Next() {
		var (
			serial, mark               string
			ownersJSON, statementsJSON []byte
			status                     int
			alive                      bool
			date                       time.Time
		)
		if err := rows.Scan(&serial, &mark, &ownersJSON, &statementsJSON, &status, &alive, &date); err != nil {
			return fmt.Errorf("failed to scan alive trademark: %w", err)
		}

		var owners []string
		if err := json.Unmarshal(ownersJSON, &owners); err != nil {
			return fmt.Errorf("failed to unmarshal owners for %s: %w", serial, err)
		}
		var statements map[string]string
		if err := json.Unmarshal(statementsJSON, &statements); err != nil {
			return fmt.Errorf("failed to unmarshal statements for %s: %w", serial, err)
		}

		batch = append(batch, domain.FeedRecord{
			SerialNumber: serial,
			Mark:         mark,
			Owners:       owners,
			Statements:   statements,
			Status:       status,
			Alive:        alive,
			FilingDate:   date.Format(time.DateOnly),
		})

		if len(batch) == batchSize {
			if err := fn(batch); err != nil {
				return err
			}
			batch = make([]domain.FeedRecord, 0, batchSize)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate alive trademarks: %w", err)
	}

	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

// TrademarkCount returns the number of trademark rows
func (s *pgStore) TrademarkCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&schema.Trademark{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count trademarks: %w", err)
	}
	return count, nil
}

// FilingCount returns the number of filing rows
func (s *pgStore) FilingCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&schema.Filing{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count filings: %w", err)
	}
	return count, nil
}
