package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

var printer = message.NewPrinter(language.English)

func renderMarkdown(markdown string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}

// pnl formats a Stress PnL value with thousands separators
func pnl(v float64) string {
	return printer.Sprintf("%.2f", v)
}

func optionalPnL(v *float64) string {
	if v == nil {
		return "-"
	}
	return pnl(*v)
}

func summaryMarkdown(s domain.WorkbookSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", s.Name)
	fmt.Fprintf(&b, "  * Workbook ID: %s\n", s.ID)
	fmt.Fprintf(&b, "  * Mode: %s\n", s.Mode)
	b.WriteString(printer.Sprintf("  * Sheets: %d parsed of %d\n", s.SheetsParsed, s.SheetsTotal))
	b.WriteString(printer.Sprintf("  * Rows: %d\n\n", s.Rows))

	if len(s.SheetsSkipped) > 0 {
		b.WriteString("## Skipped sheets\n\n")
		for _, name := range s.SheetsSkipped {
			fmt.Fprintf(&b, "  * %s\n", name)
		}
		b.WriteString("\n")
	}

	dates := make([]string, len(s.Domain.Dates))
	for i, d := range s.Domain.Dates {
		dates[i] = d.String()
	}

	b.WriteString("## Domain\n\n")
	b.WriteString("| Dimension | Values |\n|---|---|\n")
	fmt.Fprintf(&b, "| Dates | %s |\n", strings.Join(dates, ", "))
	fmt.Fprintf(&b, "| Portfolios | %s |\n", strings.Join(s.Domain.Portfolios, ", "))
	fmt.Fprintf(&b, "| Scenarios | %s |\n", strings.Join(s.Domain.Scenarios, ", "))
	return b.String()
}

func aggregatesMarkdown(rows []domain.AggregateRecord) string {
	var b strings.Builder

	b.WriteString("# Aggregates\n\n")
	if len(rows) == 0 {
		b.WriteString("No data for the current selection.\n")
		return b.String()
	}

	b.WriteString("| Date | Portfolio | Scenario | Group | Stress PnL |\n|---|---|---|---|---:|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", r.Date, r.Portfolio, r.Scenario, r.Group, pnl(r.StressPnL))
	}
	return b.String()
}

func peersMarkdown(report domain.PeerReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s vs peers\n\n", report.Analysis)
	fmt.Fprintf(&b, "Peers: %s\n\n", strings.Join(report.Peers, ", "))

	if report.Dispersion == domain.DispersionQuartile {
		b.WriteString("| Scenario | Analysis | Peers | Median | Q25 | Q75 |\n|---|---:|---:|---:|---:|---:|\n")
		for _, r := range report.Rows {
			fmt.Fprintf(&b, "| %s | %s | %d | %s | %s | %s |\n",
				r.Scenario, pnl(r.AnalysisValue), r.PeerCount, pnl(r.PeerMedian), optionalPnL(r.PeerQ25), optionalPnL(r.PeerQ75))
		}
		return b.String()
	}

	b.WriteString("| Scenario | Analysis | Peers | Median | Std | Z-score |\n|---|---:|---:|---:|---:|---:|\n")
	for _, r := range report.Rows {
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s | %s |\n",
			r.Scenario, pnl(r.AnalysisValue), r.PeerCount, pnl(r.PeerMedian), optionalPnL(r.PeerStd), optionalPnL(r.ZScore))
	}
	return b.String()
}
