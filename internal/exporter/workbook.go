package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"bangreport/internal/dataprocessing"
	apperrors "bangreport/internal/errors"
	"bangreport/internal/files"
)

const defaultSheet = "Sheet1"

// WorkbookWriter writes every summary table into one XLSX workbook
type WorkbookWriter struct {
	files  *files.Manager
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "workbook_writer")
	return &WorkbookWriter{files: files.NewManager(logger), logger: logger}
}

// Write builds the workbook, one sheet per table with a bold header row,
// and saves it to path.
func (w *WorkbookWriter) Write(ctx context.Context, path string, tables []dataprocessing.Table) error {
	f, err := BuildWorkbook(tables)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return err
	}
	err = w.files.WriteWith(path, func(out io.Writer) error {
		return f.Write(out)
	})
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("write %s", path), err)
	}

	w.logger.InfoContext(ctx, "Exported workbook",
		slog.String("path", path),
		slog.Int("sheets", len(tables)))
	return nil
}

// BuildWorkbook lays the tables out in a new in-memory workbook
func BuildWorkbook(tables []dataprocessing.Table) (*excelize.File, error) {
	f := excelize.NewFile()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"F2F2F2"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, apperrors.NewRenderError("create header style", err)
	}

	for i, t := range tables {
		if err := addSheet(f, t, header); err != nil {
			f.Close()
			return nil, apperrors.NewRenderError(fmt.Sprintf("sheet %s", t.Name), err)
		}
		if i == 0 {
			idx, err := f.GetSheetIndex(sheetName(t.Name))
			if err == nil {
				f.SetActiveSheet(idx)
			}
		}
	}
	if len(tables) > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			f.Close()
			return nil, apperrors.NewRenderError("remove default sheet", err)
		}
	}
	return f, nil
}

func addSheet(f *excelize.File, t dataprocessing.Table, headerStyle int) error {
	sheet := sheetName(t.Name)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	if len(t.Headers) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Headers), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
		lastCol, _ := excelize.ColumnNumberToName(len(t.Headers))
		if err := f.SetColWidth(sheet, "A", lastCol, 14); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		cells := make([]any, len(row))
		for i, c := range row {
			cells[i] = cellValue(c)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}
	return nil
}
