package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bangreport/internal/analysis"
	"bangreport/internal/config"
	"bangreport/internal/dataprocessing"
	"bangreport/internal/exporter"
	"bangreport/internal/files"
	"bangreport/internal/shared/testutil"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	paths, err := config.NewPaths(cfg.Paths)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())
	return paths
}

func writeBundle(t *testing.T, paths *config.Paths, totalBangs int) {
	t.Helper()
	s := &dataprocessing.Summaries{TotalBangs: totalBangs}
	res := &analysis.Results{Alpha: 0.05}
	b := exporter.NewBundle("HOU", 2017, map[string]int{"bangs": totalBangs}, dataprocessing.JoinReport{}, s, res)
	require.NoError(t, exporter.WriteJSON(context.Background(), files.NewManager(nil), paths.ReportJSON, b))
}

func TestReportServiceMissingReport(t *testing.T) {
	paths := testPaths(t)
	svc := NewReportService(paths, nil)
	ctx := context.Background()

	_, err := svc.Bundle(ctx)
	assert.ErrorIs(t, err, ErrReportNotFound)

	_, err = svc.HTMLPath(ctx)
	assert.ErrorIs(t, err, ErrReportNotFound)

	_, err = svc.Tables(ctx)
	assert.ErrorIs(t, err, ErrReportNotFound)

	assert.Empty(t, svc.TableNames(ctx))
}

func TestReportServiceTables(t *testing.T) {
	paths := testPaths(t)
	writeBundle(t, paths, 4)
	logger, handler := testutil.NewTestLogger(t)
	svc := NewReportService(paths, logger)
	ctx := context.Background()

	tables, err := svc.Tables(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, tables)
	assert.Equal(t, dataprocessing.TableMonthly, tables[0].Name)
	assert.Contains(t, svc.TableNames(ctx), dataprocessing.TableHomeAway)

	table, err := svc.Table(ctx, dataprocessing.TablePlayers)
	require.NoError(t, err)
	assert.Equal(t, dataprocessing.TablePlayers, table.Name)

	_, err = svc.Table(ctx, "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableNotFound))
	assert.Contains(t, err.Error(), "nope")

	res, err := svc.Analysis(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, res.Alpha, 1e-9)

	// one load for all of the lookups above
	loads := 0
	for _, r := range handler.GetRecords() {
		if r.Message == "report bundle loaded" {
			loads++
		}
	}
	assert.Equal(t, 1, loads)
}

func TestReportServiceReloadsChangedBundle(t *testing.T) {
	paths := testPaths(t)
	writeBundle(t, paths, 1)
	svc := NewReportService(paths, nil)
	ctx := context.Background()

	b, err := svc.Bundle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Summaries.TotalBangs)

	writeBundle(t, paths, 9)
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(paths.ReportJSON, later, later))

	b, err = svc.Bundle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, b.Summaries.TotalBangs)
}

func TestReportServiceCorruptBundle(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.WriteFile(paths.ReportJSON, []byte("{not json"), 0644))

	_, err := NewReportService(paths, nil).Bundle(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrReportNotFound)
}

func TestHealthCheck(t *testing.T) {
	paths := testPaths(t)
	svc := NewHealthService(paths, nil)

	status := svc.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "missing", status.Services["report_json"].Status)

	writeBundle(t, paths, 1)
	status = svc.HealthCheck(context.Background())
	assert.Equal(t, "ready", status.Services["report_json"].Status)
	assert.Equal(t, "missing", status.Services["report_html"].Status)

	assert.NotEmpty(t, svc.Version().Version)
}

func TestReportServiceWatch(t *testing.T) {
	paths := testPaths(t)
	svc := NewReportService(paths, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan exporter.Metadata, 4)
	done, err := svc.Watch(ctx, 20*time.Millisecond, func(m exporter.Metadata) { updates <- m })
	require.NoError(t, err)

	// other files in the output directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(paths.OutputDir, "notes.txt"), []byte("x"), 0o644))
	select {
	case m := <-updates:
		t.Fatalf("unexpected update %+v", m)
	case <-time.After(100 * time.Millisecond):
	}

	writeBundle(t, paths, 3)

	select {
	case m := <-updates:
		assert.Equal(t, "HOU", m.Team)
		assert.Equal(t, 3, m.RowCounts["bangs"])
	case <-time.After(2 * time.Second):
		t.Fatal("no update after the report was written")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop with its context")
	}
}

func TestReportServiceWatchCoalescesWrites(t *testing.T) {
	paths := testPaths(t)
	svc := NewReportService(paths, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan exporter.Metadata, 4)
	_, err := svc.Watch(ctx, 200*time.Millisecond, func(m exporter.Metadata) { updates <- m })
	require.NoError(t, err)

	writeBundle(t, paths, 3)
	writeBundle(t, paths, 5)

	select {
	case m := <-updates:
		assert.Equal(t, 5, m.RowCounts["bangs"])
	case <-time.After(2 * time.Second):
		t.Fatal("no update after the report was written")
	}

	select {
	case m := <-updates:
		t.Fatalf("expected a single update, got another %+v", m)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestReportServiceWatchCreatesOutputDir(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.RemoveAll(paths.OutputDir))
	svc := NewReportService(paths, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := svc.Watch(ctx, 10*time.Millisecond, func(exporter.Metadata) {})
	require.NoError(t, err)
	assert.DirExists(t, paths.OutputDir)
}
