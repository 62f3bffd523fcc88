// Package exporter writes the report outputs other than the HTML page.
//
// CSVWriter: one CSV per summary table under tables/, with an optional
// UTF-8 BOM so Excel opens the files with the right encoding.
//
// WorkbookWriter: every table in one XLSX workbook, a sheet per table.
//
// WriteJSON / ReadJSON: the machine-readable bundle of summaries, tables,
// analysis results and join report. The serve command reads it back.
//
// PDFPrinter: prints the rendered report.html with headless Chrome.
//
// Every file is written through files.Manager, so a failed export never
// leaves a truncated file behind.
//
// Example usage:
//
//	csvWriter := exporter.NewCSVWriter(paths, logger)
//	if _, err := csvWriter.WriteTables(ctx, summaries.Tables(), true); err != nil {
//	    return err
//	}
//	err := exporter.NewWorkbookWriter(logger).Write(ctx, paths.ReportXLSX, summaries.Tables())
package exporter
