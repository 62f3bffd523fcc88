package http

import (
	"context"

	"bangreport/internal/analysis"
	"bangreport/internal/dataprocessing"
	"bangreport/internal/services"
)

// ReportServiceInterface defines the report lookups the handlers need
type ReportServiceInterface interface {
	HTMLPath(ctx context.Context) (string, error)
	Tables(ctx context.Context) ([]services.TableInfo, error)
	Table(ctx context.Context, name string) (dataprocessing.Table, error)
	TableNames(ctx context.Context) []string
	Analysis(ctx context.Context) (*analysis.Results, error)
}
