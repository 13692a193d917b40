package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	trussio "github.com/matzehuels/trussfea/pkg/io"
	"github.com/matzehuels/trussfea/pkg/pipeline"
	"github.com/matzehuels/trussfea/pkg/truss"
)

// solveOpts holds flags shared by solve and demo.
type solveOpts struct {
	output    string
	noCache   bool
	refresh   bool
	save      bool
	table     bool
	reactions bool
}

func (o *solveOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write the result JSON to this file")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&o.save, "save", false, "persist a record to the configured store")
	cmd.Flags().BoolVar(&o.table, "table", true, "print per-element forces and stresses")
	cmd.Flags().BoolVar(&o.reactions, "reactions", false, "print support reactions")
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var opts solveOpts
	cmd := &cobra.Command{
		Use:   "solve [model.json]",
		Short: "Analyse a truss model",
		Long: `Analyse a truss model given as JSON:

  {"nodes": [[0,0], [1,0]],
   "elements": [{"n1": 0, "n2": 1, "A": 1e-4, "E": 210e9}],
   "loads": [0, 0, 1000, 0],
   "fixed_dofs": [0, 1, 3]}

Loads hold one entry per DOF (x and y of each node, in node order). Results
are cached by the content of the model.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := trussio.ImportModel(args[0])
			if err != nil {
				return err
			}
			return c.runSolve(cmd.Context(), m, opts)
		},
	}
	opts.register(cmd)
	return cmd
}

// demoCommand creates the demo command.
func (c *CLI) demoCommand() *cobra.Command {
	var (
		opts    solveOpts
		load    float64
		area    float64
		modulus float64
		export  string
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Analyse the built-in 4-node, 5-bar demo truss",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := pipeline.PredictOptions{Load: load, A: area, E: modulus}
			if err := p.Validate(); err != nil {
				return err
			}
			m := truss.Demo(load, area, modulus)
			if export != "" {
				if err := trussio.ExportModel(m, export); err != nil {
					return err
				}
				printFile(export)
			}
			return c.runSolve(cmd.Context(), m, opts)
		},
	}
	opts.register(cmd)
	cmd.Flags().Float64Var(&load, "load", truss.DefaultDemoLoad, "vertical load at node 2 (N)")
	cmd.Flags().Float64Var(&area, "area", truss.DefaultDemoArea, "cross-sectional area of every bar (m²)")
	cmd.Flags().Float64Var(&modulus, "modulus", truss.DefaultDemoModulus, "elastic modulus of every bar (Pa)")
	cmd.Flags().StringVar(&export, "export-model", "", "also write the demo model JSON to this file")
	return cmd
}

func (c *CLI) runSolve(ctx context.Context, m *truss.Model, opts solveOpts) error {
	runner, err := c.newRunner(ctx, runnerOpts{noCache: opts.noCache, withStore: opts.save})
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Solving...")
	spinner.Start()
	out, err := runner.Analyze(ctx, m, pipeline.Options{
		MaxNodes: c.Config.Server.MaxNodes,
		Refresh:  opts.refresh,
		Save:     opts.save,
	})
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return err
	}
	spinner.StopWithSuccess("Analysis complete")

	printStats(out.Stats, out.CacheInfo.ResultHit)
	printSummary(out.Result)
	if opts.table && len(m.Elements) > 0 {
		printElementTable(m, out.Result)
	}
	if opts.reactions {
		if err := printReactions(m); err != nil {
			return err
		}
	}
	if out.RecordID != "" {
		printDetail("record %s", out.RecordID)
	}
	if opts.output != "" {
		if err := trussio.ExportResult(out.Result, opts.output); err != nil {
			return err
		}
		printFile(opts.output)
	}
	return nil
}

// printReactions re-runs the analysis for its intermediate products; the
// cached result does not carry them.
func printReactions(m *truss.Model) error {
	a, err := truss.AnalyzeFull(m)
	if err != nil {
		return err
	}
	printInfo("Support reactions")
	for i, d := range a.Reduced.Fixed {
		axis := "x"
		if d%2 == 1 {
			axis = "y"
		}
		printKeyValue(fmt.Sprintf("node %d %s", d/2, axis), fmt.Sprintf("%.6g N", a.Reactions[i]))
	}
	return nil
}
