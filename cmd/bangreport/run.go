package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"bangreport/internal/app"
	"bangreport/internal/config"
	"bangreport/internal/operations"
)

type runOptions struct {
	dataDir string
	outDir  string
	step    string
	through string
	pdf     bool
	noPDF   bool
}

func newRunCmd(global *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the report pipeline",
		Long: `Runs load, join, aggregate, analyze, render and export in order.

--step runs a single step (its inputs must already exist in the run, so this
is mostly useful for load). --through stops after the named step.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dataDir, "data", "", "input data directory (overrides paths.data_dir)")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "output directory (overrides paths.output_dir)")
	cmd.Flags().StringVar(&opts.step, "step", "", "run only this step: load, join, aggregate, analyze, render or export")
	cmd.Flags().StringVar(&opts.through, "through", "", "run every step up to and including this one")
	cmd.Flags().BoolVar(&opts.pdf, "pdf", false, "also print report.pdf with headless Chrome")
	cmd.Flags().BoolVar(&opts.noPDF, "no-pdf", false, "skip the PDF even if export.pdf is set")
	cmd.MarkFlagsMutuallyExclusive("step", "through")
	cmd.MarkFlagsMutuallyExclusive("pdf", "no-pdf")

	return cmd
}

func runPipeline(cmd *cobra.Command, global *globalOptions, opts *runOptions) error {
	cfg, err := global.loadConfig(func(cfg *config.Config) {
		if opts.dataDir != "" {
			cfg.Paths.DataDir = opts.dataDir
		}
		if opts.outDir != "" {
			cfg.Paths.OutputDir = opts.outDir
		}
		if opts.pdf {
			cfg.Export.PDF = true
		}
		if opts.noPDF {
			cfg.Export.PDF = false
		}
	})
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg)
	if err != nil {
		return err
	}

	a, err := app.NewApplication(cfg, logger, global.appOptions...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.Shutdown(shutdownCtx)
	}()

	resp, err := a.RunPipeline(ctx, operations.OperationRequest{
		Step:    opts.step,
		Through: opts.through,
	})
	if resp != nil {
		printSummary(cmd.OutOrStdout(), resp)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to %s\n", a.Paths.OutputDir)
	return nil
}

// printSummary writes one line per step followed by the files produced
func printSummary(w io.Writer, resp *operations.OperationResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tSTATUS\tDURATION\tERROR")
	for _, s := range resp.Steps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Status, s.Duration.Round(time.Millisecond), s.Error)
	}
	_ = tw.Flush()

	for _, out := range resp.Outputs {
		fmt.Fprintf(w, "  %s\n", out)
	}
}
