package ingest

import "errors"

// Fatal file-level conditions. These abort the submission before any row is
// processed; everything below the file level is captured as RowError data
// instead of an error return.
var (
	// ErrEmptyFile is returned when the input has no header row or no data
	// rows (fewer than two non-empty lines).
	ErrEmptyFile = errors.New("file has no data rows")

	// ErrNoSheets is returned when a spreadsheet contains zero sheets.
	ErrNoSheets = errors.New("spreadsheet has no sheets")

	// ErrUnreadableFile is returned when the bytes cannot be decoded as any
	// supported format.
	ErrUnreadableFile = errors.New("file is not readable as tabular data")

	// ErrMissingMandatoryColumns is returned when header mapping resolves
	// none of a submission's mandatory columns; with no mandatory data to
	// validate, every row would be rejected for the same structural reason.
	ErrMissingMandatoryColumns = errors.New("no mandatory columns found in header")

	// ErrTooManySubmissions is returned when all ingestion slots are
	// occupied and the wait timeout expires.
	ErrTooManySubmissions = errors.New("too many concurrent submissions, please try again later")
)

// Severity classifies a RowError. Errors reject the row; warnings are
// recorded but never block acceptance.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// RowError is one problem found in one row. Row numbers are 1-indexed data
// rows (header excluded), matching what an operator sees in a spreadsheet
// minus the header line.
type RowError struct {
	Row      int      `json:"row"`
	Field    string   `json:"field"`
	Value    string   `json:"value"`
	Reason   string   `json:"reason"`
	Severity Severity `json:"severity"`
}
