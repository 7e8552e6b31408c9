// Package services implements the business logic layer of the Stress PnL
// application. It sits between the HTTP handlers or the CLI and the pure
// ingestion, analytics and export packages.
//
// # Available Services
//
//	- WorkbookService: holds ingested workbooks and runs filter, aggregate,
//	  peer statistics and exports against them
//	- HealthService: health and version information
//
// # Request Pipeline
//
// Every analytics request re-runs the whole pipeline against the cached,
// immutable fact table of a workbook:
//
//	facts := analytics.Filter(result.Facts, analytics.FillDefaults(sel, domain))
//	rows := analytics.Aggregate(facts)
//
// Nothing derived from a selection is stored between requests.
//
// # Error Handling
//
// Services return sentinel errors (ErrWorkbookNotFound, ErrEmptyUpload,
// ErrUnsupportedFormat) or wrap the errors of the lower layers with %w.
// Handlers map them to problem responses with errors.Is. Empty selections
// and unmet peer preconditions are not errors: results carry Empty and
// Reason instead.
package services
