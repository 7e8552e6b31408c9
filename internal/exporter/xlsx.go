package exporter

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

// MaxSheetNameLength is the spreadsheet limit on sheet name length
const MaxSheetNameLength = 31

// ErrNothingToExport is returned when an export would have no sheets
var ErrNothingToExport = errors.New("nothing to export")

var sheetNameReplacer = strings.NewReplacer(
	"[", "_", "]", "_", ":", "_", "*", "_", "?", "_", "/", "_", `\`, "_",
)

// SheetName turns a portfolio identifier into a valid sheet name:
// forbidden characters become underscores and the result is cut to
// MaxSheetNameLength characters.
func SheetName(name string) string {
	name = strings.Trim(sheetNameReplacer.Replace(name), "'")
	if name == "" {
		return "Sheet"
	}
	return truncateRunes(name, MaxSheetNameLength)
}

// uniqueSheetNames sanitizes names and suffixes "_2", "_3"... onto names
// that collide after truncation. Sheet names compare case-insensitively.
func uniqueSheetNames(names []string) []string {
	used := make(map[string]bool, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		candidate := SheetName(name)
		base := candidate
		for n := 2; used[strings.ToLower(candidate)]; n++ {
			suffix := "_" + strconv.Itoa(n)
			candidate = truncateRunes(base, MaxSheetNameLength-len(suffix)) + suffix
		}
		used[strings.ToLower(candidate)] = true
		out[i] = candidate
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// PortfolioWorkbook builds a single-sheet workbook of one portfolio's
// per-scenario totals with columns Scenario and Stress PnL
func PortfolioWorkbook(portfolio string, totals []domain.ScenarioTotal) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(portfolio)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet %q: %w", sheet, err)
	}
	if err := writeTotalsSheet(f, sheet, totals); err != nil {
		return nil, err
	}
	return toBytes(f)
}

// CombinedWorkbook builds one sheet per portfolio, in portfolio order
func CombinedWorkbook(totals map[string][]domain.ScenarioTotal) ([]byte, error) {
	if len(totals) == 0 {
		return nil, ErrNothingToExport
	}

	portfolios := make([]string, 0, len(totals))
	for p := range totals {
		portfolios = append(portfolios, p)
	}
	sort.Strings(portfolios)
	sheets := uniqueSheetNames(portfolios)

	f := excelize.NewFile()
	defer f.Close()

	for i, portfolio := range portfolios {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheets[i]); err != nil {
				return nil, fmt.Errorf("failed to name sheet %q: %w", sheets[i], err)
			}
		} else if _, err := f.NewSheet(sheets[i]); err != nil {
			return nil, fmt.Errorf("failed to create sheet %q: %w", sheets[i], err)
		}
		if err := writeTotalsSheet(f, sheets[i], totals[portfolio]); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return toBytes(f)
}

// PeerWorkbook builds the peer comparison table. Undefined statistics are
// left as blank cells.
func PeerWorkbook(report domain.PeerReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Peer Comparison"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	header := []interface{}{"Scenario", "Analysis", "Peer Median"}
	if report.Dispersion == domain.DispersionQuartile {
		header = append(header, "Peer Q25", "Peer Q75")
	} else {
		header = append(header, "Peer Std", "Z-Score")
	}
	header = append(header, "Peer Count")

	rows := make([][]interface{}, 0, len(report.Rows))
	for _, r := range report.Rows {
		row := []interface{}{r.Scenario, r.AnalysisValue, r.PeerMedian}
		if report.Dispersion == domain.DispersionQuartile {
			row = append(row, optional(r.PeerQ25), optional(r.PeerQ75))
		} else {
			row = append(row, optional(r.PeerStd), optional(r.ZScore))
		}
		row = append(row, r.PeerCount)
		rows = append(rows, row)
	}

	if err := writeTable(f, sheet, header, rows); err != nil {
		return nil, err
	}

	// analysis and peers as a footer note
	note := fmt.Sprintf("Analysis: %s; Peers: %s", report.Analysis, strings.Join(report.Peers, ", "))
	cell, _ := excelize.CoordinatesToCellName(1, len(rows)+3)
	if err := f.SetCellStr(sheet, cell, note); err != nil {
		return nil, err
	}
	return toBytes(f)
}

func writeTotalsSheet(f *excelize.File, sheet string, totals []domain.ScenarioTotal) error {
	rows := make([][]interface{}, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, []interface{}{t.Scenario, t.StressPnL})
	}
	return writeTable(f, sheet, []interface{}{"Scenario", "Stress PnL"}, rows)
}

// writeTable writes a bold header row followed by rows
func writeTable(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", sheet, err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", style); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return err
	}

	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+2, sheet, err)
		}
	}
	return nil
}

func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func toBytes(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
