package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

// Fatal ingestion errors. Anything returned by Load is fatal for the
// workbook; skippable anomalies are reported in Result.SheetsSkipped instead.
var (
	ErrSourceUnavailable = errors.New("workbook source unavailable")
	ErrMissingColumn     = errors.New("missing expected column")
	ErrNoTotalRows       = errors.New("no Total rows found")
	ErrInvalidCell       = errors.New("invalid cell value")
	ErrLayoutMismatch    = errors.New("column layout differs between sheets")
	ErrInvalidStrategy   = errors.New("invalid parse strategy")
)

// IngestError locates a fatal ingestion failure inside the workbook
type IngestError struct {
	Sheet  string
	Row    int    // 1-based spreadsheet row, 0 when not row specific
	Column string // column letter or header label, "" when not column specific
	Err    error
}

// Error implements the error interface
func (e *IngestError) Error() string {
	var loc []string
	if e.Sheet != "" {
		loc = append(loc, fmt.Sprintf("sheet %q", e.Sheet))
	}
	if e.Row > 0 {
		loc = append(loc, fmt.Sprintf("row %d", e.Row))
	}
	if e.Column != "" {
		loc = append(loc, fmt.Sprintf("column %s", e.Column))
	}
	if len(loc) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", strings.Join(loc, ", "), e.Err)
}

// Unwrap allows errors.Is against the sentinel errors above
func (e *IngestError) Unwrap() error {
	return e.Err
}
