// Package services sits between the HTTP handlers and the files a pipeline
// run leaves in the output directory.
//
// ReportService reads the JSON bundle back (caching it until the file
// changes) and answers table and analysis lookups. HealthService reports
// uptime and whether the report artifacts exist.
//
// Lookups for a report that has not been generated return
// ErrReportNotFound; unknown table names wrap ErrTableNotFound.
package services
