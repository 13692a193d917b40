package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trussfea/pkg/pipeline"
	"github.com/matzehuels/trussfea/pkg/store"
)

// predictCommand creates the predict command: the demo truss analysed by the
// solver, with the surrogate's estimate alongside when a model is available.
func (c *CLI) predictCommand() *cobra.Command {
	var (
		modelPath string
		noCache   bool
		save      bool
	)
	opts := pipeline.DefaultPredictOptions()

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Estimate the demo truss peak stress with the surrogate model",
		Long: `Estimate the peak stress of the demo truss for a load and bar area.

The demo truss is always solved; when a surrogate model is configured (model.path
or --model) its prediction is shown next to the solver's answer. A missing or
unreadable model falls back to the solver alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, runnerOpts{noCache: noCache, withStore: save, modelPath: modelPath})
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			opts.Save = save
			pred, err := runner.Predict(ctx, opts)
			if err != nil {
				return err
			}

			printSuccess("Source: %s", pred.Source)
			printSummary(pred.Result)
			if pred.OK {
				printKeyValue("predicted", StyleNumber.Render(formatSI(pred.Value, "Pa")))
				if fea := pred.Result.MaxStress; fea != 0 {
					printDetail("relative error %.2f%%", 100*(pred.Value-fea)/fea)
				}
			} else if opts.UseModel && !runner.ModelLoaded() {
				printNextStep("Train a surrogate first", "trussfea sample && trussfea train dataset.csv")
			}
			if pred.Source == store.SourceModel && pred.CacheInfo.PredictionHit {
				printDetail("prediction served from cache")
			}
			if pred.RecordID != "" {
				printDetail("record %s", pred.RecordID)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&opts.Load, "load", opts.Load, "vertical load at node 2 (N)")
	cmd.Flags().Float64Var(&opts.A, "area", opts.A, "cross-sectional area (m²)")
	cmd.Flags().Float64Var(&opts.E, "modulus", opts.E, "elastic modulus (Pa)")
	cmd.Flags().BoolVar(&opts.UseModel, "use-model", opts.UseModel, "ask the surrogate when one is loaded")
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "surrogate model file (overrides model.path)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&save, "save", false, "persist a record to the configured store")
	return cmd
}
