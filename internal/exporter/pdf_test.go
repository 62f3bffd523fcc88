package exporter

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bangreport/internal/errors"
	"bangreport/internal/shared/testutil"
)

func TestPDFPrinterMissingBrowser(t *testing.T) {
	dir := t.TempDir()
	html := testutil.WriteFile(t, dir, "report.html", "<html><body>report</body></html>")
	pdf := filepath.Join(dir, "report.pdf")

	p := NewPDFPrinter(5*time.Second, nil)
	p.opts = append(p.opts, chromedp.ExecPath(filepath.Join(dir, "no-such-chrome")))

	err := p.Print(context.Background(), html, pdf)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRender))
	assert.NoFileExists(t, pdf)
}
