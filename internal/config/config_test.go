package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2017, cfg.Season.Year)
	assert.Equal(t, "HOU", cfg.Season.Team)
	assert.Equal(t, "ops", cfg.Analysis.TTestMetric)
	assert.False(t, cfg.Analysis.EqualVariance)
	assert.Equal(t, 0.05, cfg.Analysis.Alpha)
	assert.False(t, cfg.Export.PDF)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown t-test metric",
			mutate:  func(c *Config) { c.Analysis.TTestMetric = "war" },
			wantErr: "TTestMetric",
		},
		{
			name:    "alpha out of range",
			mutate:  func(c *Config) { c.Analysis.Alpha = 1.5 },
			wantErr: "Alpha",
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "Port",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "Level",
		},
		{
			name:    "empty data dir",
			mutate:  func(c *Config) { c.Paths.DataDir = "" },
			wantErr: "DataDir",
		},
		{
			name:   "student t-test allowed",
			mutate: func(c *Config) { c.Analysis.EqualVariance = true },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yamlFile := filepath.Join(dir, "config.yaml")
	content := `
season:
  year: 2016
  name_aliases:
    "Gurriel, Yuli": "Yulieski Gurriel"
analysis:
  ttest_metric: obp
server:
  port: 9000
`
	require.NoError(t, os.WriteFile(yamlFile, []byte(content), 0644))

	t.Setenv("BANGS_SERVER_PORT", "9100")
	t.Setenv("BANGS_EXPORT_PDF_TIMEOUT", "5s")

	cfg, err := Load("")
	require.NoError(t, err)

	// yaml over defaults
	assert.Equal(t, 2016, cfg.Season.Year)
	assert.Equal(t, "obp", cfg.Analysis.TTestMetric)
	assert.Equal(t, "Yulieski Gurriel", cfg.Season.NameAliases["Gurriel, Yuli"])
	// env over yaml
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Export.PDFTimeout)
	// untouched defaults survive
	assert.Equal(t, "HOU", cfg.Season.Team)
	assert.Equal(t, DefaultOutputDir, cfg.Paths.OutputDir)
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BANGS_ANALYSIS_TTEST_METRIC", "babip")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load("does-not-exist.yaml")
	require.Error(t, err)
}
