// Package app wires the report pipeline and the HTTP server together.
//
// NewApplication resolves paths, creates the output directories, starts
// OpenTelemetry and builds the six-step pipeline plus the services behind
// the read-only API. The same Application backs both commands:
//
//	a, err := app.NewApplication(cfg, logger)
//	if err != nil {
//		return err
//	}
//	defer a.Shutdown(ctx)
//	resp, err := a.RunPipeline(ctx, operations.OperationRequest{})
//
// or, to serve a generated report until interrupted:
//
//	return a.Run()
//
// Middleware order is RequestID, RealIP, OTel, StructuredLogger, Recoverer,
// SecurityHeaders, CORS and, when enabled, the rate limiter.
//
// While serving, an fsnotify watcher on the output directory pushes a
// report:updated message to every browser connected on /ws after each new run.
package app
