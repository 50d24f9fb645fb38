// Package app provides application initialization and lifecycle management
// for the DOE Lab server. It wires configuration, logging, telemetry, the
// service layer and the HTTP router together.
//
// # Initialization Flow
//
//  1. Load configuration from defaults, a YAML file, .env files and the environment
//  2. Initialize logging and OpenTelemetry
//  3. Build the design, statistics, SPC, synthetic and health services
//  4. Set up HTTP handlers and middleware
//  5. Create the HTTP server
//
// # Usage
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return app.Run()
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests and
// flushes telemetry. Errors are returned to the caller; the package never
// calls os.Exit.
package app
