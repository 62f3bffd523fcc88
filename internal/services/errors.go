package services

import "errors"

// Report service errors
var (
	ErrReportNotFound = errors.New("report not found")
	ErrTableNotFound  = errors.New("table not found")
)
