package parser_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idyllic-ai/trademark-indexer/internal/domain"
	"github.com/idyllic-ai/trademark-indexer/internal/parser"
)

const fullRecord = `<case-file>
<serial-number>78000001</serial-number>
<transaction-date>20240115</transaction-date>
<case-file-header>
<mark-identification>ACME</mark-identification>
<status-code>700</status-code>
</case-file-header>
<case-file-owners>
<case-file-owner>
<party-name>Acme Corp</party-name>
</case-file-owner>
<case-file-owner>
<party-name>Acme Holdings</party-name>
</case-file-owner>
</case-file-owners>
<case-file-statements>
<case-file-statement>
<type-code>GS0091</type-code>
<text>toys and games</text>
</case-file-statement>
<case-file-statement>
<type-code>PM0001</type-code>
<text>ACME</text>
</case-file-statement>
<case-file-statement>
<type-code>D10000</type-code>
<text>no claim to exclusive rights</text>
</case-file-statement>
</case-file-statements>
</case-file>`

func TestParseFullRecord(t *testing.T) {
	record, err := parser.Parse(fullRecord)
	require.NoError(t, err)

	assert.Equal(t, "78000001", record.SerialNumber)
	assert.Equal(t, "ACME", record.Mark)
	assert.Equal(t, 700, record.Status)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), record.TransactionDate)
	assert.Equal(t, []string{"Acme Corp", "Acme Holdings"}, record.Owners)
	assert.Equal(t, map[string]string{
		"GS0091": "toys and games",
		"PM0001": "ACME",
	}, record.Statements)
}

func TestParseSingleOwner(t *testing.T) {
	fragment := `<case-file>
<serial-number>78000002</serial-number>
<transaction-date>20240115</transaction-date>
<case-file-header>
<mark-identification>SOLO</mark-identification>
<status-code>630</status-code>
</case-file-header>
<case-file-owners>
<case-file-owner>
<party-name>Solo LLC</party-name>
</case-file-owner>
</case-file-owners>
</case-file>`

	record, err := parser.Parse(fragment)
	require.NoError(t, err)
	assert.Equal(t, []string{"Solo LLC"}, record.Owners)
	assert.Empty(t, record.Statements)
}

func TestParseNoOwners(t *testing.T) {
	fragment := `<case-file>
<serial-number>78000003</serial-number>
<transaction-date>20240115</transaction-date>
<case-file-header>
<mark-identification>ORPHAN</mark-identification>
<status-code>630</status-code>
</case-file-header>
</case-file>`

	record, err := parser.Parse(fragment)
	require.NoError(t, err)
	assert.Empty(t, record.Owners)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name        string
		fragment    string
		expectedErr error
	}{
		{
			name:        "xml declaration is not a record",
			fragment:    `<?xml version="1.0" encoding="UTF-8"?>`,
			expectedErr: domain.ErrNotARecord,
		},
		{
			name:        "unparseable fragment",
			fragment:    `<case-file><serial-number>78000001</case-file>`,
			expectedErr: domain.ErrMalformedRecord,
		},
		{
			name: "missing serial number",
			fragment: `<case-file>
<transaction-date>20240115</transaction-date>
<case-file-header>
<mark-identification>ACME</mark-identification>
<status-code>700</status-code>
</case-file-header>
</case-file>`,
			expectedErr: domain.ErrMalformedRecord,
		},
		{
			name: "missing mark identification",
			fragment: `<case-file>
<serial-number>78000001</serial-number>
<transaction-date>20240115</transaction-date>
<case-file-header>
<status-code>700</status-code>
</case-file-header>
</case-file>`,
			expectedErr: domain.ErrMissingMark,
		},
		{
			name: "missing mark and status is still a benign skip",
			fragment: `<case-file>
<serial-number>78000001</serial-number>
<transaction-date>20240115</transaction-date>
<case-file-header>
</case-file-header>
</case-file>`,
			expectedErr: domain.ErrMissingMark,
		},
		{
			name: "empty mark identification is a benign skip",
			fragment: `<case-file>
<serial-number>78000001</serial-number>
<transaction-date>20240115</transaction-date>
<case-file-header>
<mark-identification></mark-identification>
<status-code>70A</status-code>
</case-file-header>
</case-file>`,
			expectedErr: domain.ErrMissingMark,
		},
		{
			name: "non numeric status code",
			fragment: `<case-file>
<serial-number>78000001</serial-number>
<transaction-date>20240115</transaction-date>
<case-file-header>
<mark-identification>ACME</mark-identification>
<status-code>70A</status-code>
</case-file-header>
</case-file>`,
			expectedErr: domain.ErrMalformedRecord,
		},
		{
			name: "unsupported transaction date",
			fragment: `<case-file>
<serial-number>78000001</serial-number>
<transaction-date>2024-01-15</transaction-date>
<case-file-header>
<mark-identification>ACME</mark-identification>
<status-code>700</status-code>
</case-file-header>
</case-file>`,
			expectedErr: domain.ErrIntegrityViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.fragment)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestParseSixDigitDate(t *testing.T) {
	fragment := `<case-file>
<serial-number>78000004</serial-number>
<transaction-date>240115</transaction-date>
<case-file-header>
<mark-identification>OLD</mark-identification>
<status-code>700</status-code>
</case-file-header>
</case-file>`

	record, err := parser.Parse(fragment)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), record.TransactionDate)
}
