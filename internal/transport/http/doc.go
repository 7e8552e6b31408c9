// Package http implements the HTTP handlers of the Stress PnL service.
// Handlers parse requests, call the workbook service and format responses;
// no filtering, aggregation or statistics happen here.
//
// # Routes
//
//	POST   /api/workbooks?mode=detail|totals       multipart "file" upload
//	GET    /api/workbooks                          registered workbooks
//	GET    /api/workbooks/{id}                     one workbook summary
//	DELETE /api/workbooks/{id}                     drop a workbook
//	GET    /api/workbooks/{id}/domain              dates, portfolios, scenarios
//	POST   /api/workbooks/{id}/facts               filtered fact table
//	POST   /api/workbooks/{id}/aggregates          BRS / Non-BRS sums
//	POST   /api/workbooks/{id}/peers               peer comparison
//	POST   /api/workbooks/{id}/exports/...         xlsx and csv downloads
//
// Analytics bodies carry a selection. An absent list selects every value
// and an empty list selects nothing:
//
//	{"dates": ["2024-01-31"], "portfolios": ["FUND1"]}
//
// # Responses
//
// Successful JSON responses use the envelope {"status": "success", "data": ...}.
// Errors follow RFC 7807; ProblemRules maps the sentinel errors of the lower
// layers to status codes and problem types.
package http
