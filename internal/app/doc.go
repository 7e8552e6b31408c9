// Package app wires the Stress PnL dashboard together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML file, STRESS_* environment)
//	2. Initialize logging and OpenTelemetry
//	3. Resolve and create the data, exports and logs directories
//	4. Build the ingestion loader and cache, the export writer and the services
//	5. Set up HTTP handlers and middleware
//	6. Load the configured startup workbook, if any, and serve
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    os.Exit(1)
//	}
//	if err := application.Run(); err != nil {
//	    os.Exit(1)
//	}
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM. In-flight requests are given
// server.shutdown_timeout to finish before telemetry is flushed and the
// log file is closed.
//
// Initialization errors are returned to the caller; the package never
// calls os.Exit.
package app
