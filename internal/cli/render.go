package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/trussfea/pkg/errors"
	trussio "github.com/matzehuels/trussfea/pkg/io"
	"github.com/matzehuels/trussfea/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	var opts pipeline.RenderOptions

	cmd := &cobra.Command{
		Use:   "render [model.json]",
		Short: "Draw a truss as a topology diagram or a deformed-shape plot",
		Long: `Draw a truss model.

Kinds:
  topology  members coloured by tension (red) and compression (blue), supports
            as triangles; formats svg (default), png, dot
  deformed  undeformed shape dashed, deformed shape amplified by --scale
            (0 picks a scale automatically); formats png (default), svg, pdf

A topology of a structure that cannot be solved is still drawn, uncoloured.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			input := args[0]
			m, err := trussio.ImportModel(input)
			if err != nil {
				return err
			}
			opts.SetDefaults()
			if err := opts.Validate(); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, runnerOpts{noCache: noCache})
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			out, err := runner.Analyze(ctx, m, pipeline.Options{MaxNodes: c.Config.Server.MaxNodes})
			if err != nil {
				if opts.Kind != pipeline.KindTopology || !apperrors.Is(err, apperrors.ErrCodeSingularSystem) {
					return err
				}
				printWarning("structure cannot be solved, drawing topology only")
				out = &pipeline.Result{Model: m}
			}

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.Kind))
			spinner.Start()
			data, cached, err := runner.Render(ctx, out, opts)
			if err != nil {
				spinner.StopWithError("Rendering failed")
				return err
			}
			spinner.Stop()

			if output == "" {
				output = defaultOutputPath(input, opts)
			}
			if err := apperrors.ValidatePath(output); err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			status := "Rendered"
			if cached {
				status = "Rendered (cached)"
			}
			printSuccess("%s %s %s", status, opts.Kind, strings.ToUpper(opts.Format))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <model>_<kind>.<format>)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", pipeline.KindTopology, "topology or deformed")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "output format (see above)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "topology: label member forces and loads")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "deformed: displacement amplification (0 = auto)")
	cmd.Flags().Float64Var(&opts.Width, "width", pipeline.DefaultPlotWidth, "deformed: plot width in points")
	cmd.Flags().Float64Var(&opts.Height, "height", pipeline.DefaultPlotHeight, "deformed: plot height in points")
	return cmd
}

// defaultOutputPath derives "<dir>/<base>_<kind>.<format>" from the input.
func defaultOutputPath(input string, opts pipeline.RenderOptions) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return fmt.Sprintf("%s_%s.%s", base, opts.Kind, opts.Format)
}
