package schema

import (
	"gorm.io/datatypes"
)

// Trademark represents the trademarks table, one row per application serial
// number. Owners and statements are stored as JSON documents; both are
// written on first sight of a serial number and left untouched on conflict.
type Trademark struct {
	// SerialNumber is the USPTO application serial number
	SerialNumber string `gorm:"column:serial_number;primaryKey;type:text"`
	// Mark is the mark identification text
	Mark string `gorm:"column:mark;not null;type:text"`
	// Owners is the deduplicated set of owner party names
	Owners datatypes.JSON `gorm:"column:owners"`
	// Statements maps statement type codes to their free text
	Statements datatypes.JSON `gorm:"column:statements"`

	// Associations
	Filings []Filing `gorm:"foreignKey:TrademarkSerial;references:SerialNumber;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Trademark model
func (Trademark) TableName() string {
	return "trademarks"
}
