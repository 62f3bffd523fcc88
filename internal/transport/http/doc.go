// Package http implements the read-only HTTP handlers for a generated report.
// Handlers stay thin: they parse the request, call a service and format the
// response.
//
// # Routes
//
//	GET /                   rendered report.html
//	GET /api/tables         table names, titles and row counts
//	GET /api/tables/{name}  one table with headers and rows
//	GET /api/analysis       t-test, regression and correlations
//	GET /api/health         liveness plus report artifact status
//	GET /api/version        build information
//	GET /metrics            Prometheus scrape endpoint
//
// # Error Handling
//
// Errors are rendered as RFC 7807 Problem Details by errors.ErrorHandler:
//
//	{
//	    "type": "/errors/report/table-not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "table \"inning\" not found",
//	    "instance": "/api/tables/inning",
//	    "trace_id": "..."
//	}
//
// Requesting anything before `bangreport run` has written the output
// directory yields /errors/report/not-found.
package http
