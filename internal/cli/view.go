package cli

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	trussio "github.com/matzehuels/trussfea/pkg/io"
	"github.com/matzehuels/trussfea/pkg/pipeline"
)

// viewCommand creates the view command, an interactive result browser.
func (c *CLI) viewCommand() *cobra.Command {
	var noCache bool
	cmd := &cobra.Command{
		Use:   "view [model.json]",
		Short: "Browse element forces and nodal displacements interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, err := trussio.ImportModel(args[0])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, runnerOpts{noCache: noCache})
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			out, err := runner.Analyze(ctx, m, pipeline.Options{MaxNodes: c.Config.Server.MaxNodes})
			if err != nil {
				return err
			}

			model := NewBrowserModel(filepath.Base(args[0]), m, out.Result)
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
