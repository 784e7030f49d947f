// Package config provides centralized configuration management for APBD Insight.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (config.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern APBD_* for namespacing:
//
//	APBD_SERVER_PORT=8080
//	APBD_ANALYSIS_MAX_UPLOAD_BYTES=20971520
//	APBD_ANALYSIS_RUN_TTL=15m
//	APBD_LOGGING_LEVEL=info
//	APBD_NARRATIVE_ENABLED=true
//	APBD_NARRATIVE_API_KEY=...
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which handles all file system paths relative to the executable location:
//
//	paths, err := config.GetPaths()
//	uploadPath := paths.GetUploadPath("apbd_2024.xlsx")
//	reportPath := paths.GetReportPath("apbd_aggregated.csv")
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- Port and timeout values are within acceptable ranges
//	- Upload and preview limits are positive
//	- Logging settings conform to the structured-output contract
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For tests and embedded use, Default() returns the full default
// configuration without touching the environment.
package config
