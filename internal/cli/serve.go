package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trussfea/pkg/api"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		modelPath string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve analyses over HTTP",
		Long: `Serve the HTTP API:

  GET  /              liveness banner
  GET  /health        service state and whether a surrogate is loaded
  POST /run_fea       analyse a model
  POST /predict       demo truss with optional surrogate prediction
  POST /render        draw a model
  GET  /records[/id]  saved analyses

Backends, CORS origins and limits come from the config file. The surrogate
is loaded once at startup; restart to pick up a retrained model.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			runner, err := c.newRunner(ctx, runnerOpts{withStore: true, modelPath: modelPath})
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv := api.New(runner, api.Options{
				MaxNodes:       cfg.MaxNodes,
				RequestTimeout: cfg.RequestTimeout,
				CORSOrigins:    cfg.CORSOrigins,
			}, c.Logger)

			printInfo("Serving on %s", cfg.Addr)
			if runner.ModelLoaded() {
				printDetail("surrogate %s", runner.ModelPath)
			}
			return srv.ListenAndServe(ctx, cfg.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8000", "listen address (overrides server.addr)")
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "surrogate model file (overrides model.path)")
	return cmd
}
