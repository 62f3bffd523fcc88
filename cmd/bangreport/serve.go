package main

import (
	"github.com/spf13/cobra"

	"bangreport/internal/app"
	"bangreport/internal/config"
)

func newServeCmd(global *globalOptions) *cobra.Command {
	var (
		outDir string
		port   int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a generated report over HTTP",
		Long: `Serves report.html at / and the tables and analysis of report.json
under /api until interrupted. Run "bangreport run" first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig(func(cfg *config.Config) {
				if outDir != "" {
					cfg.Paths.OutputDir = outDir
				}
				if port != 0 {
					cfg.Server.Port = port
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
			return a.Run()
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "directory holding the generated report (overrides paths.output_dir)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")

	return cmd
}
