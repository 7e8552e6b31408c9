package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

// brsPrefixes mark a tag as BRS. The match is case-sensitive.
var brsPrefixes = []string{"BRS", "_BRS"}

// dateLayouts are tried in order for text date cells. Day-first wins over
// month-first when both would parse.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"02.01.2006",
	time.RFC3339,
}

// IsBRSTag reports whether a secondary tag cell classifies the row as BRS.
// Blank tags are Non-BRS.
func IsBRSTag(tag string) bool {
	for _, prefix := range brsPrefixes {
		if strings.HasPrefix(tag, prefix) {
			return true
		}
	}
	return false
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parseDateCell converts a raw date cell. Blank cells give the zero Date.
func parseDateCell(raw string) (domain.Date, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return domain.Date{}, nil
	}

	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return domain.Date{}, fmt.Errorf("%w: date serial %q: %v", ErrInvalidCell, v, err)
		}
		return domain.DateOf(t), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return domain.DateOf(t), nil
		}
	}
	return domain.Date{}, fmt.Errorf("%w: unrecognised date %q", ErrInvalidCell, v)
}

// parseStressPnL converts a raw Stress PnL cell. Blank cells count as 0.
func parseStressPnL(raw string) (float64, error) {
	v := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if v == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0, fmt.Errorf("%w: Stress PnL %q is not numeric", ErrInvalidCell, raw)
	}
	return d.InexactFloat64(), nil
}

func isBlankRow(row []string, cols ColumnMap) bool {
	for _, idx := range cols {
		if strings.TrimSpace(cellAt(row, idx)) != "" {
			return false
		}
	}
	return true
}
