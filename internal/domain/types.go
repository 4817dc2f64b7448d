package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TrademarkRecord is one normalized trademark application transaction parsed
// from a bulk-data record fragment. It is immutable after construction and
// discarded once upserted.
type TrademarkRecord struct {
	SerialNumber    string
	Mark            string
	Status          int
	TransactionDate time.Time
	Owners          []string
	Statements      map[string]string
}

// NewTrademarkRecord validates and normalizes the raw extracted fields.
// Owners are deduplicated and sorted; statements are filtered to the
// goods-and-services (GS*) and pseudo-mark (PM*) type codes.
func NewTrademarkRecord(serial, mark string, status int, rawDate string, owners []string, statements map[string]string) (*TrademarkRecord, error) {
	if serial == "" {
		return nil, fmt.Errorf("%w: empty serial number", ErrMalformedRecord)
	}
	if mark == "" {
		return nil, ErrMissingMark
	}

	date, err := ParseTransactionDate(rawDate)
	if err != nil {
		return nil, err
	}

	return &TrademarkRecord{
		SerialNumber:    serial,
		Mark:            mark,
		Status:          status,
		TransactionDate: date,
		Owners:          normalizeOwners(owners),
		Statements:      FilterStatements(statements),
	}, nil
}

// ParseTransactionDate normalizes a transaction date string to a calendar
// date. The bulk data uses 8-digit YYYYMMDD; older archive dialects use
// 6-digit YYMMDD with an implicit 20xx century. Any other length is an
// integrity violation.
func ParseTransactionDate(raw string) (time.Time, error) {
	switch len(raw) {
	case 8:
	case 6:
		raw = "20" + raw
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported transaction date %q", ErrIntegrityViolation, raw)
	}

	date, err := time.Parse("20060102", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid transaction date %q", ErrIntegrityViolation, raw)
	}
	return date, nil
}

// FilterStatements keeps only statement type codes with the GS or PM prefix
func FilterStatements(statements map[string]string) map[string]string {
	filtered := make(map[string]string)
	for code, text := range statements {
		if strings.HasPrefix(code, "GS") || strings.HasPrefix(code, "PM") {
			filtered[code] = text
		}
	}
	return filtered
}

func normalizeOwners(owners []string) []string {
	seen := make(map[string]struct{}, len(owners))
	unique := make([]string, 0, len(owners))
	for _, owner := range owners {
		if owner == "" {
			continue
		}
		if _, ok := seen[owner]; ok {
			continue
		}
		seen[owner] = struct{}{}
		unique = append(unique, owner)
	}
	sort.Strings(unique)
	return unique
}

// FeedRecord is the publish-ready shape of an alive trademark joined with its
// most recent filing, destined for the external document index.
type FeedRecord struct {
	SerialNumber string            `json:"serial-number"`
	Mark         string            `json:"trademark-name"`
	Owners       []string          `json:"owners"`
	Statements   map[string]string `json:"statements"`
	Status       int               `json:"status"`
	Alive        bool              `json:"alive"`
	FilingDate   string            `json:"filing-date"`
}

// DocumentName is the name the record is filed under in the document index.
// It includes both the mark text and the serial number so either can be
// used as a lookup query.
func (r FeedRecord) DocumentName() string {
	return fmt.Sprintf("%s %s", r.Mark, r.SerialNumber)
}

// JSONString renders the record as the document body to index
func (r FeedRecord) JSONString() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal feed record: %w", err)
	}
	return string(data), nil
}
