// Package app wires configuration, logging, tracing, the catalog client and
// the UI together.
//
// Run is the composition root:
//
//  1. config.Load, then the -api override
//  2. redirect the standard logger to the log file
//  3. telemetry.Setup when an OTLP endpoint is configured
//  4. catalog.NewClient with the configured request timeout
//  5. shelf.New owning the session state
//  6. ui.Run, which blocks until the user quits
//
// Failures before the UI starts are returned to the caller; failures inside
// the session are shown by the UI and logged.
package app
