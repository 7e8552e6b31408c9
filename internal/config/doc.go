// Package config loads the application configuration.
//
// # Configuration Sources
//
// Sources are applied in order, later ones winning:
//
//	1. Default values (Default)
//	2. A YAML file: STRESS_CONFIG_FILE, config.yaml or configs/config.yaml
//	3. Environment variables
//
// # Environment Variables
//
// Variables use the STRESS prefix and the section name:
//
//	STRESS_SERVER_PORT=8080
//	STRESS_LOGGING_LEVEL=debug
//	STRESS_INGEST_DEFAULT_MODE=totals
//	STRESS_INGEST_WORKBOOK_PATH=/data/stress.xlsx
//	STRESS_INGEST_STRICT_LAYOUT=true
//	STRESS_INGEST_DETAIL_COLUMNS=A,B,R,U
//	STRESS_TELEMETRY_TRACE_EXPORTER=stdout
//
// Paths resolves the data, exports and logs directories against the
// executable's directory unless STRESS_PATHS_BASE_DIR is set.
package config
