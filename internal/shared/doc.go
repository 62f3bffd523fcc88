// Package shared holds helpers used across packages.
//
// The testutil subpackage provides the season fixture writer and a buffered
// slog handler for asserting on log output:
//
//	logger, logs := testutil.NewTestLogger(t)
//	svc := services.NewReportService(paths, logger)
//	...
//	assert.True(t, logs.ContainsMessage("report bundle loaded"))
package shared
