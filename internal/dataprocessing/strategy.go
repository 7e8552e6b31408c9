package dataprocessing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

// Field is a canonical fact-table column
type Field string

const (
	FieldRiskGroup Field = "risk_group"
	FieldTag       Field = "tag"
	FieldStressPnL Field = "stress_pnl"
	FieldDate      Field = "date"
	FieldPortfolio Field = "portfolio"
	FieldScenario  Field = "scenario"
)

// ColumnMap maps canonical fields to 0-based column indices of a sheet
type ColumnMap map[Field]int

// Index returns the column of f, or -1 when the sheet does not carry it
func (m ColumnMap) Index(f Field) int {
	if idx, ok := m[f]; ok {
		return idx
	}
	return -1
}

// ParseStrategy decides which sheet columns feed which canonical fields.
// header is the sheet's first row; width is the widest row in the sheet.
type ParseStrategy interface {
	Name() string
	Resolve(header []string, width int) (ColumnMap, error)
}

// ByPosition selects columns by fixed index. Header labels are ignored,
// which is what detail sheets need since their headers vary.
type ByPosition struct {
	Indices map[Field]int
}

// DefaultDetailColumns is the detail-sheet layout: risk group in A,
// the BRS tag in B, Stress PnL in R and the date in U.
var DefaultDetailColumns = []string{"A", "B", "R", "U"}

// PositionsFromLetters builds a ByPosition strategy from column letters given
// in the order risk group, tag, Stress PnL, date.
func PositionsFromLetters(letters ...string) (ByPosition, error) {
	fields := []Field{FieldRiskGroup, FieldTag, FieldStressPnL, FieldDate}
	if len(letters) != len(fields) {
		return ByPosition{}, fmt.Errorf("%w: want %d column letters, got %d", ErrInvalidStrategy, len(fields), len(letters))
	}

	indices := make(map[Field]int, len(fields))
	for i, letter := range letters {
		n, err := excelize.ColumnNameToNumber(strings.TrimSpace(letter))
		if err != nil {
			return ByPosition{}, fmt.Errorf("%w: column %q: %v", ErrInvalidStrategy, letter, err)
		}
		indices[fields[i]] = n - 1
	}
	return ByPosition{Indices: indices}, nil
}

// DefaultDetailStrategy returns the strategy for DefaultDetailColumns
func DefaultDetailStrategy() ByPosition {
	s, _ := PositionsFromLetters(DefaultDetailColumns...)
	return s
}

// Name describes the strategy, e.g. "by_position(A,B,R,U)"
func (s ByPosition) Name() string {
	letters := make([]string, 0, len(s.Indices))
	for _, f := range s.orderedFields() {
		name, _ := excelize.ColumnNumberToName(s.Indices[f] + 1)
		letters = append(letters, name)
	}
	return "by_position(" + strings.Join(letters, ",") + ")"
}

// Resolve fails when the sheet is narrower than any selected column
func (s ByPosition) Resolve(header []string, width int) (ColumnMap, error) {
	cols := make(ColumnMap, len(s.Indices))
	for _, f := range s.orderedFields() {
		idx := s.Indices[f]
		if idx < 0 || idx >= width {
			letter, _ := excelize.ColumnNumberToName(idx + 1)
			return nil, &IngestError{Column: letter, Err: fmt.Errorf("%w: %s", ErrMissingColumn, f)}
		}
		cols[f] = idx
	}
	return cols, nil
}

// HeaderLabels returns the header text found at each selected column
func (s ByPosition) HeaderLabels(header []string) []string {
	labels := make([]string, 0, len(s.Indices))
	for _, f := range s.orderedFields() {
		labels = append(labels, strings.TrimSpace(cellAt(header, s.Indices[f])))
	}
	return labels
}

func (s ByPosition) orderedFields() []Field {
	fields := make([]Field, 0, len(s.Indices))
	for f := range s.Indices {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool {
		return s.Indices[fields[i]] < s.Indices[fields[j]]
	})
	return fields
}

// ByHeaderName selects columns by header label (trimmed, case-insensitive)
type ByHeaderName struct {
	Names    map[Field]string
	Optional map[Field]bool
}

// DefaultTotalsStrategy is the header layout of totals sheets.
// Portfolio and Scenario columns may be absent.
func DefaultTotalsStrategy() ByHeaderName {
	return ByHeaderName{
		Names: map[Field]string{
			FieldRiskGroup: "Risk Group",
			FieldStressPnL: "Stress PnL",
			FieldDate:      "Date",
			FieldPortfolio: "Portfolio",
			FieldScenario:  "Scenario",
		},
		Optional: map[Field]bool{
			FieldPortfolio: true,
			FieldScenario:  true,
		},
	}
}

// Name describes the strategy
func (s ByHeaderName) Name() string {
	names := make([]string, 0, len(s.Names))
	for _, name := range s.Names {
		names = append(names, name)
	}
	sort.Strings(names)
	return "by_header(" + strings.Join(names, ",") + ")"
}

// Resolve fails when a required header label is absent
func (s ByHeaderName) Resolve(header []string, _ int) (ColumnMap, error) {
	positions := make(map[string]int, len(header))
	for i, label := range header {
		key := strings.ToLower(strings.TrimSpace(label))
		if key == "" {
			continue
		}
		if _, seen := positions[key]; !seen {
			positions[key] = i
		}
	}

	cols := make(ColumnMap, len(s.Names))
	for f, name := range s.Names {
		idx, ok := positions[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			if s.Optional[f] {
				continue
			}
			return nil, &IngestError{Column: name, Err: fmt.Errorf("%w: %s", ErrMissingColumn, f)}
		}
		cols[f] = idx
	}
	return cols, nil
}

// StrategyFor returns the default strategy of a mode
func StrategyFor(mode domain.IngestMode) (ParseStrategy, error) {
	switch mode {
	case domain.IngestModeDetail:
		return DefaultDetailStrategy(), nil
	case domain.IngestModeTotals:
		return DefaultTotalsStrategy(), nil
	default:
		return nil, fmt.Errorf("%w: no default strategy for mode %q", ErrInvalidStrategy, mode)
	}
}
