package schema

import (
	"time"
)

// Filing represents the filings table, one row per observed
// (serial, status, date) transaction. Re-ingesting the same filing is a
// no-op via the composite unique index. A trademark's current liveness is
// the alive flag of its filing with the maximum date.
type Filing struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TrademarkSerial references the owning trademark
	TrademarkSerial string `gorm:"column:trademark_serial;not null;type:text;uniqueIndex:idx_filings_serial_status_date,priority:1"`
	// Status is the numeric USPTO status code of this transaction
	Status int `gorm:"column:status;not null;uniqueIndex:idx_filings_serial_status_date,priority:2"`
	// Alive records whether Status was in the configured alive set at ingest time
	Alive bool `gorm:"column:alive;not null"`
	// Date is the transaction date
	Date time.Time `gorm:"column:date;not null;type:date;uniqueIndex:idx_filings_serial_status_date,priority:3"`
}

// TableName specifies the table name for the Filing model
func (Filing) TableName() string {
	return "filings"
}
