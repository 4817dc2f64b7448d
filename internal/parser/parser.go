package parser

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/idyllic-ai/trademark-indexer/internal/domain"
)

// caseFile mirrors the shape of one <case-file> record in the bulk XML.
// Owners and statements appear as a single element or a list depending on the
// record; decoding into slices absorbs both shapes.
type caseFile struct {
	XMLName         xml.Name `xml:"case-file"`
	SerialNumber    string   `xml:"serial-number"`
	TransactionDate string   `xml:"transaction-date"`
	Header          struct {
		MarkIdentification *string `xml:"mark-identification"`
		StatusCode         string  `xml:"status-code"`
	} `xml:"case-file-header"`
	Owners []struct {
		PartyName string `xml:"party-name"`
	} `xml:"case-file-owners>case-file-owner"`
	Statements []struct {
		TypeCode string `xml:"type-code"`
		Text     string `xml:"text"`
	} `xml:"case-file-statements>case-file-statement"`
}

// Parse converts one XML record fragment into a normalized TrademarkRecord.
// Routine irregularities never panic; they surface as the domain error
// taxonomy so callers can distinguish benign skips from defects:
//
//   - ErrNotARecord: the fragment is the file's XML declaration
//   - ErrMissingMark: no mark identification (expected volume, don't log)
//   - ErrMalformedRecord: structurally unparseable or required field absent
//   - ErrIntegrityViolation: a field has an unsupported shape
func Parse(fragment string) (*domain.TrademarkRecord, error) {
	if strings.Contains(fragment, "<?xml") {
		return nil, domain.ErrNotARecord
	}

	var record caseFile
	if err := xml.Unmarshal([]byte(fragment), &record); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}

	if record.SerialNumber == "" {
		return nil, fmt.Errorf("%w: missing serial number", domain.ErrMalformedRecord)
	}

	// The mark check comes before any other field extraction: markless
	// records are expected volume and must skip quietly even when the rest
	// of the header is junk too
	if record.Header.MarkIdentification == nil || *record.Header.MarkIdentification == "" {
		return nil, domain.ErrMissingMark
	}
	mark := *record.Header.MarkIdentification

	status, err := strconv.Atoi(strings.TrimSpace(record.Header.StatusCode))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid status code %q", domain.ErrMalformedRecord, record.Header.StatusCode)
	}

	owners := make([]string, 0, len(record.Owners))
	for _, owner := range record.Owners {
		if owner.PartyName != "" {
			owners = append(owners, owner.PartyName)
		}
	}

	statements := make(map[string]string, len(record.Statements))
	for _, statement := range record.Statements {
		statements[statement.TypeCode] = statement.Text
	}

	return domain.NewTrademarkRecord(
		record.SerialNumber,
		mark,
		status,
		strings.TrimSpace(record.TransactionDate),
		owners,
		statements,
	)
}
