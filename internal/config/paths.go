package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths holds every resolved, absolute location used by a run
type Paths struct {
	// Base directory
	BaseDir string

	// Inputs
	DataDir    string
	BangsCSV   string
	BattingCSV string
	GamesCSV   string
	PlayersDir string

	// Outputs
	OutputDir  string
	TablesDir  string
	ChartsDir  string
	LogsDir    string
	ReportHTML string
	ReportXLSX string
	ReportJSON string
	ReportPDF  string
}

// NewPaths resolves pc into absolute paths
func NewPaths(pc PathsConfig) (*Paths, error) {
	base := pc.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(dir, p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(dir, p)
	}

	dataDir := resolve(base, pc.DataDir)
	outputDir := resolve(base, pc.OutputDir)

	return &Paths{
		BaseDir:    base,
		DataDir:    dataDir,
		BangsCSV:   resolve(dataDir, pc.BangsFile),
		BattingCSV: resolve(dataDir, pc.BattingFile),
		GamesCSV:   resolve(dataDir, pc.GamesFile),
		PlayersDir: resolve(dataDir, pc.PlayersDir),
		OutputDir:  outputDir,
		TablesDir:  filepath.Join(outputDir, TablesDirName),
		ChartsDir:  filepath.Join(outputDir, ChartsDirName),
		LogsDir:    resolve(base, pc.LogsDir),
		ReportHTML: filepath.Join(outputDir, ReportHTMLFileName),
		ReportXLSX: filepath.Join(outputDir, ReportXLSXFileName),
		ReportJSON: filepath.Join(outputDir, ReportJSONFileName),
		ReportPDF:  filepath.Join(outputDir, ReportPDFFileName),
	}, nil
}

// EnsureDirectories creates the output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.OutputDir,
		p.TablesDir,
		p.ChartsDir,
		p.LogsDir,
	}

	logger := slog.Default()
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// GetTablePath returns the CSV path for a summary table
func (p *Paths) GetTablePath(name string) string {
	return filepath.Join(p.TablesDir, name+".csv")
}

// GetChartPath returns the SVG path for a chart
func (p *Paths) GetChartPath(name string) string {
	return filepath.Join(p.ChartsDir, name+".svg")
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs path resolution information for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("Path resolution summary",
		slog.Group("inputs",
			slog.String("data", p.DataDir),
			slog.String("bangs", p.BangsCSV),
			slog.String("batting", p.BattingCSV),
			slog.String("games", p.GamesCSV),
			slog.String("players", p.PlayersDir),
		),
		slog.Group("outputs",
			slog.String("output", p.OutputDir),
			slog.String("tables", p.TablesDir),
			slog.String("charts", p.ChartsDir),
			slog.String("logs", p.LogsDir),
			slog.String("html", p.ReportHTML),
		))
}

// ValidateRequiredFiles checks that every input exists
func (p *Paths) ValidateRequiredFiles() error {
	requiredFiles := []struct {
		name string
		path string
	}{
		{"bang events", p.BangsCSV},
		{"season batting", p.BattingCSV},
		{"game results", p.GamesCSV},
		{"player game logs", p.PlayersDir},
	}

	var missingFiles []string
	for _, f := range requiredFiles {
		if !FileExists(f.path) {
			missingFiles = append(missingFiles, fmt.Sprintf("%s (%s)", f.name, f.path))
		}
	}

	if len(missingFiles) > 0 {
		return fmt.Errorf("required files missing: %s", strings.Join(missingFiles, ", "))
	}

	return nil
}
