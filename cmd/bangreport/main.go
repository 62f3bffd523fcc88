package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bangreport/internal/app"
	"bangreport/internal/config"
	"bangreport/internal/infrastructure"
)

// globalOptions are the flags shared by every command
type globalOptions struct {
	configFile string
	logLevel   string
	logFormat  string
	logOutput  string

	// appOptions are passed to every Application the commands build
	appOptions []app.Option
}

func main() {
	err := newRootCmd().Execute()
	_ = infrastructure.CloseLogFile()
	if err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. appOpts customize the Application
// built by run and serve, such as the PDF printer.
func newRootCmd(appOpts ...app.Option) *cobra.Command {
	opts := &globalOptions{appOptions: appOpts}

	rootCmd := &cobra.Command{
		Use:   "bangreport",
		Short: "Analyze trash-can bangs against game and player outcomes",
		Long: `bangreport joins a season's log of trash-can bangs with game results,
season batting lines and per-player game logs, summarizes them, runs the
statistical tests and writes an HTML report with CSV, XLSX, JSON and
optional PDF exports.

Run the pipeline with "bangreport run", then browse the result with
"bangreport serve".`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML config file (default: search ./config.yaml, ./configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "override logging.format (json, text)")
	rootCmd.PersistentFlags().StringVar(&opts.logOutput, "log-output", "", "override logging.output (console, file, both)")

	rootCmd.AddCommand(newRunCmd(opts), newServeCmd(opts), newVersionCmd())
	return rootCmd
}

// loadConfig loads the configuration, lets mutate apply command flags and
// validates the result
func (o *globalOptions) loadConfig(mutate func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}

	if o.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(o.logLevel)
	}
	if o.logFormat != "" {
		cfg.Logging.Format = strings.ToLower(o.logFormat)
	}
	if o.logOutput != "" {
		cfg.Logging.Output = strings.ToLower(o.logOutput)
	}
	if mutate != nil {
		mutate(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// initLogger starts the process logger. A relative log file goes under the
// configured logs directory.
func initLogger(cfg *config.Config) (*slog.Logger, error) {
	logging := cfg.Logging
	if logging.Output != "console" && logging.FilePath != "" && !filepath.IsAbs(logging.FilePath) {
		paths, err := config.NewPaths(cfg.Paths)
		if err != nil {
			return nil, err
		}
		logging.FilePath = filepath.Join(paths.LogsDir, filepath.Base(logging.FilePath))
	}
	return infrastructure.InitializeLogger(logging)
}
