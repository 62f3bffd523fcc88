package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"bangreport/internal/analysis"
	"bangreport/internal/config"
	"bangreport/internal/dataprocessing"
	"bangreport/internal/exporter"
)

// TableInfo lists a table without its rows
type TableInfo struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Headers []string `json:"headers"`
	Rows    int      `json:"rows"`
}

// ReportService serves the artifacts of the last pipeline run. The JSON
// bundle is cached and re-read when its modification time changes.
type ReportService struct {
	paths  *config.Paths
	logger *slog.Logger

	mu      sync.Mutex
	bundle  *exporter.Bundle
	modTime time.Time
}

// NewReportService creates a report service reading from paths
func NewReportService(paths *config.Paths, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		paths:  paths,
		logger: logger.With(slog.String("service", "report")),
	}
}

// HTMLPath returns the rendered report path, or ErrReportNotFound
func (s *ReportService) HTMLPath(ctx context.Context) (string, error) {
	if _, err := os.Stat(s.paths.ReportHTML); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrReportNotFound
		}
		return "", err
	}
	return s.paths.ReportHTML, nil
}

// Bundle returns the current report bundle
func (s *ReportService) Bundle(ctx context.Context) (*exporter.Bundle, error) {
	info, err := os.Stat(s.paths.ReportJSON)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bundle != nil && info.ModTime().Equal(s.modTime) {
		return s.bundle, nil
	}

	f, err := os.Open(s.paths.ReportJSON)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := exporter.ReadJSON(f)
	if err != nil {
		return nil, err
	}

	s.bundle = b
	s.modTime = info.ModTime()
	s.logger.InfoContext(ctx, "report bundle loaded",
		slog.String("path", s.paths.ReportJSON),
		slog.Int("tables", len(b.Tables)),
		slog.Time("generated_at", b.Metadata.GeneratedAt))
	return b, nil
}

// Tables lists the tables in the current bundle
func (s *ReportService) Tables(ctx context.Context) ([]TableInfo, error) {
	b, err := s.Bundle(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TableInfo, 0, len(b.Tables))
	for _, t := range b.Tables {
		out = append(out, TableInfo{Name: t.Name, Title: t.Title, Headers: t.Headers, Rows: len(t.Rows)})
	}
	return out, nil
}

// Table returns one table by name
func (s *ReportService) Table(ctx context.Context, name string) (dataprocessing.Table, error) {
	b, err := s.Bundle(ctx)
	if err != nil {
		return dataprocessing.Table{}, err
	}
	t, ok := b.Table(name)
	if !ok {
		return dataprocessing.Table{}, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}

// TableNames lists the names of the tables in the current bundle
func (s *ReportService) TableNames(ctx context.Context) []string {
	b, err := s.Bundle(ctx)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(b.Tables))
	for _, t := range b.Tables {
		names = append(names, t.Name)
	}
	return names
}

// Analysis returns the statistical results of the current bundle
func (s *ReportService) Analysis(ctx context.Context) (*analysis.Results, error) {
	b, err := s.Bundle(ctx)
	if err != nil {
		return nil, err
	}
	if b.Analysis == nil {
		return nil, ErrReportNotFound
	}
	return b.Analysis, nil
}

// Watch follows the output directory and calls fn with the new metadata
// each time a different report.json lands there. Events are coalesced over
// the debounce window so one pipeline run yields one call. The watch is in
// place when Watch returns; the returned channel closes once ctx is done or
// the watcher shuts down.
func (s *ReportService) Watch(ctx context.Context, debounce time.Duration, fn func(exporter.Metadata)) (<-chan struct{}, error) {
	if err := os.MkdirAll(s.paths.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(s.paths.OutputDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.paths.OutputDir, err)
	}

	var last time.Time
	if info, err := os.Stat(s.paths.ReportJSON); err == nil {
		last = info.ModTime()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer watcher.Close()

		name := filepath.Base(s.paths.ReportJSON)
		var timer *time.Timer
		var fire <-chan time.Time
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name || event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				fire = timer.C

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.WarnContext(ctx, "report watcher error", slog.String("error", err.Error()))

			case <-fire:
				fire = nil
				info, err := os.Stat(s.paths.ReportJSON)
				if err != nil || info.ModTime().Equal(last) {
					continue
				}
				b, err := s.Bundle(ctx)
				if err != nil {
					s.logger.WarnContext(ctx, "report changed but could not be read",
						slog.String("error", err.Error()))
					continue
				}
				last = info.ModTime()
				fn(b.Metadata)
			}
		}
	}()

	return done, nil
}
