package domain

import (
	"fmt"
	"strings"
)

// IngestMode selects which spreadsheet rows become facts
type IngestMode string

const (
	// IngestModeDetail keeps every risk-group row except the source "Total" row
	IngestModeDetail IngestMode = "detail"
	// IngestModeTotals keeps only the source "Total" row of each sheet
	IngestModeTotals IngestMode = "totals"
)

// TotalRiskGroup is the literal risk-group label of the pre-computed total row
const TotalRiskGroup = "Total"

// ParseIngestMode converts user input into an IngestMode
func ParseIngestMode(s string) (IngestMode, error) {
	switch IngestMode(strings.ToLower(strings.TrimSpace(s))) {
	case IngestModeDetail:
		return IngestModeDetail, nil
	case IngestModeTotals:
		return IngestModeTotals, nil
	default:
		return "", fmt.Errorf("unknown ingest mode %q (want %q or %q)", s, IngestModeDetail, IngestModeTotals)
	}
}

// FactRecord is one normalized row of the fact table
type FactRecord struct {
	Date      Date    `json:"date"`
	Portfolio string  `json:"portfolio"`
	Scenario  string  `json:"scenario"`
	RiskGroup string  `json:"risk_group"`
	StressPnL float64 `json:"stress_pnl"`
	IsBRS     bool    `json:"is_brs"`
}
