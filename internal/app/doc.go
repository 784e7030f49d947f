// Package app provides application initialization and lifecycle management
// for the APBD Insight server. It wires configuration, logging, telemetry,
// the analysis services and the HTTP surface together and owns graceful
// shutdown.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging and OpenTelemetry
//	3. Resolve filesystem paths and ensure directories exist
//	4. Create the run cache, key store and analysis services
//	5. Set up HTTP handlers and middleware
//	6. Configure the HTTP server
//
// # Usage
//
// The main entry point is typically:
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The package handles SIGINT and SIGTERM signals to ensure:
//
//	- Active requests are completed before the listener closes
//	- The run cache sweeper and metrics collector stop
//	- The narrative backend connection is closed
//	- Final metrics are flushed through the OpenTelemetry providers
//
// # Error Handling
//
// All initialization errors are returned to the caller for proper
// handling. The app does not call os.Exit() directly, allowing
// the main function to control the exit process.
package app
