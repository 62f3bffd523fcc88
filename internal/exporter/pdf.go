package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	apperrors "bangreport/internal/errors"
	"bangreport/internal/files"
)

// PDFPrinter prints the rendered HTML report with headless Chrome
type PDFPrinter struct {
	timeout time.Duration
	files   *files.Manager
	logger  *slog.Logger
	// allocator options, overridable in tests
	opts []chromedp.ExecAllocatorOption
}

// NewPDFPrinter creates a printer that gives up after timeout
func NewPDFPrinter(timeout time.Duration, logger *slog.Logger) *PDFPrinter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "pdf_printer")

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("headless", true), chromedp.DisableGPU)

	return &PDFPrinter{timeout: timeout, files: files.NewManager(logger), logger: logger, opts: opts}
}

// Print loads htmlPath in the browser and saves the printed page to pdfPath
func (p *PDFPrinter) Print(ctx context.Context, htmlPath, pdfPath string) error {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return apperrors.NewStorageError("resolve report path", err)
	}
	target := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, p.opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	start := time.Now()
	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return apperrors.NewRenderError(fmt.Sprintf("print %s to PDF", htmlPath), err)
	}

	if err := p.files.WriteFile(pdfPath, pdf); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("write %s", pdfPath), err)
	}

	p.logger.InfoContext(ctx, "Printed report to PDF",
		slog.String("path", pdfPath),
		slog.Int("size_bytes", len(pdf)),
		slog.Duration("duration", time.Since(start)))
	return nil
}
