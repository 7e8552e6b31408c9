// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a capturing slog handler for log
// assertions and builders for in-memory Stress PnL workbooks:
//
//	logger, logs := testutil.NewTestLogger(t)
//	data := testutil.StressWorkbook(t)
//
// Nothing here is imported by production code.
package shared
