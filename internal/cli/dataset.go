package cli

import (
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trussfea/pkg/dataset"
	"github.com/matzehuels/trussfea/pkg/surrogate"
)

// sampleCommand creates the sample command.
func (c *CLI) sampleCommand() *cobra.Command {
	var (
		output  string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate a dataset by solving the demo truss over random loads and areas",
		Long: `Generate a training dataset for the surrogate model.

Each sample draws a load magnitude uniformly from [load_min, load_max) and an
area log-uniformly from [10^area_exp_min, 10^area_exp_max), solves the demo
truss and records the peak stress and displacement. Ranges come from the
[dataset] config section; the same seed gives the same dataset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config.Dataset
			if cmd.Flags().Changed("output") {
				cfg.Output = output
			}
			if cmd.Flags().Changed("samples") {
				cfg.Samples, _ = cmd.Flags().GetInt("samples")
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed, _ = cmd.Flags().GetUint64("seed")
			}

			s := cfg.Sampler()
			s.Workers = workers
			s.Logger = loggerFromContext(ctx)

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Sampling 0/%d", cfg.Samples))
			var last atomic.Int64
			s.Progress = func(done, total int) {
				// Updates arrive out of order from the workers.
				for {
					prev := last.Load()
					if int64(done) <= prev || last.CompareAndSwap(prev, int64(done)) {
						break
					}
				}
				spinner.Update(fmt.Sprintf("Sampling %d/%d", last.Load(), total))
			}

			prog := newProgress(s.Logger)
			spinner.Start()
			samples, err := s.Run(ctx)
			if err != nil {
				spinner.StopWithError("Sampling failed")
				return err
			}
			spinner.Stop()
			prog.done("sampled demo truss", "samples", len(samples), "seed", cfg.Seed)

			if err := dataset.ExportCSV(cfg.Output, samples); err != nil {
				return err
			}
			printSuccess("Wrote %d samples", len(samples))
			printFile(cfg.Output)
			printNextStep("Fit a surrogate", "trussfea train "+cfg.Output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "dataset.csv", "dataset CSV path (overrides dataset.output)")
	cmd.Flags().Int("samples", 500, "number of samples (overrides dataset.samples)")
	cmd.Flags().Uint64("seed", 42, "random seed (overrides dataset.seed)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent analyses (0 = number of CPUs)")
	return cmd
}

// trainCommand creates the train command.
func (c *CLI) trainCommand() *cobra.Command {
	var output string
	opts := surrogate.DefaultTrainOptions()

	cmd := &cobra.Command{
		Use:   "train [dataset.csv]",
		Short: "Fit the surrogate peak-stress model from a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			samples, err := dataset.ImportCSV(args[0])
			if err != nil {
				return err
			}

			prog := newProgress(logger)
			model, metrics, err := surrogate.Train(samples, opts)
			if err != nil {
				return err
			}
			prog.done("trained surrogate", "train", metrics.TrainSize, "test", metrics.TestSize)

			if output == "" {
				output = c.Config.Model.Path
			}
			if output == "" {
				output = "model.json"
			}
			if err := model.Save(output); err != nil {
				return err
			}

			printSuccess("Surrogate trained on %d samples", metrics.TrainSize)
			printKeyValue("MAE", StyleNumber.Render(formatSI(metrics.MAE, "Pa")))
			printKeyValue("R²", StyleNumber.Render(fmt.Sprintf("%.6f", metrics.R2)))
			printFile(output)
			printNextStep("Use it", "trussfea predict --model "+output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "model file (default model.path or model.json)")
	cmd.Flags().Float64Var(&opts.TestFraction, "test-fraction", opts.TestFraction, "share of samples held out for metrics")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "shuffle seed for the split")
	return cmd
}
