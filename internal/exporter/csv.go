package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"bangreport/internal/config"
	"bangreport/internal/dataprocessing"
	apperrors "bangreport/internal/errors"
	"bangreport/internal/files"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths  *config.Paths
	files  *files.Manager
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "csv_writer")
	return &CSVWriter{paths: paths, files: files.NewManager(logger), logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options. Relative paths
// resolve under the tables directory.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	w.logger.Debug("Writing CSV file",
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	err := w.files.WriteWith(fullPath, func(out io.Writer) error {
		return encodeCSV(out, options)
	})
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("write %s", fullPath), err)
	}
	return nil
}

func encodeCSV(out io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTable writes one summary table to tables/<name>.csv
func (w *CSVWriter) WriteTable(t dataprocessing.Table, bom bool) (string, error) {
	path := w.paths.GetTablePath(t.Name)
	err := w.WriteCSV(path, WriteOptions{Headers: t.Headers, Records: t.Rows, BOMPrefix: bom})
	return path, err
}

// WriteTables writes every table and returns the written paths in order
func (w *CSVWriter) WriteTables(ctx context.Context, tables []dataprocessing.Table, bom bool) ([]string, error) {
	written := make([]string, 0, len(tables))
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		path, err := w.WriteTable(t, bom)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	w.logger.InfoContext(ctx, "Exported summary tables",
		slog.String("dir", w.paths.TablesDir),
		slog.Int("tables", len(written)))
	return written, nil
}

// resolvePath resolves a path to the tables directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return filepath.Join(w.paths.TablesDir, filePath)
}
