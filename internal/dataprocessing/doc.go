// Package dataprocessing ingests Stress PnL workbooks and normalizes them
// into a fact table of domain.FactRecord rows.
//
// # Workbook layout
//
// Every sheet named "<Portfolio>_<Scenario>" contributes rows; the name is
// split on the first underscore, so scenarios may contain underscores
// themselves. Sheets without an underscore are skipped.
//
// Two ingestion modes exist:
//
//   - detail: every risk-group row except the source "Total" row. Columns
//     are selected by position (A, B, R, U by default) because header labels
//     vary between sheets. The BRS flag is derived from the tag column.
//   - totals: only the "Total" row of each sheet. Columns are selected by
//     header label; explicit Portfolio and Scenario columns override the
//     values parsed from the sheet name when they are not blank.
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger)
//	cache := dataprocessing.NewCache(loader, 16, logger)
//	res, err := cache.Load(ctx, dataprocessing.FileSource{Path: path},
//	    dataprocessing.LoadOptions{Mode: domain.IngestModeTotals})
//
// # Error Handling
//
// Errors returned by Load are fatal for the workbook and wrap one of the
// package sentinels (ErrSourceUnavailable, ErrMissingColumn, ErrNoTotalRows,
// ErrInvalidCell, ErrLayoutMismatch). Location details are carried by
// *IngestError. Skipped sheets are listed in Result.SheetsSkipped.
package dataprocessing
