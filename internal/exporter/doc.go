// Package exporter writes Stress PnL results for download.
//
// Workbook exports (PortfolioWorkbook, CombinedWorkbook, PeerWorkbook) return
// xlsx bytes built with excelize; sheet names are sanitized and cut to the
// 31 character limit. WriteAggregatesCSV writes aggregate rows as CSV with a
// UTF-8 BOM for Excel. All exports are pure and safe for concurrent use.
//
// FileWriter stores exports on disk for the command line tool:
//
//	w := exporter.NewFileWriter(paths, logger)
//	data, err := exporter.CombinedWorkbook(analytics.PortfolioTotals(facts))
//	path, err := w.WriteFile("combined.xlsx", data)
package exporter
