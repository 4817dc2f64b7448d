package domain

import "errors"

var (
	// ErrMalformedRecord is returned when a record fragment cannot be parsed
	ErrMalformedRecord = errors.New("malformed record")

	// ErrNotARecord is returned for fragments that are not application
	// records at all, such as the file's XML declaration
	ErrNotARecord = errors.New("not a record fragment")

	// ErrMissingMark is returned when a record has no mark identification.
	// This is expected volume in the bulk data, not a defect signal.
	ErrMissingMark = errors.New("missing mark identification")

	// ErrIntegrityViolation is returned when a record field has an
	// unexpected shape beyond the supported normalization rules
	ErrIntegrityViolation = errors.New("integrity violation")

	// ErrPublishUndercount is returned when the document index accepted
	// fewer documents than were sent
	ErrPublishUndercount = errors.New("publisher accepted fewer documents than sent")

	// ErrEntryNotFound is returned when the expected XML entry is absent
	// from a bulk archive
	ErrEntryNotFound = errors.New("xml entry not found in archive")
)
