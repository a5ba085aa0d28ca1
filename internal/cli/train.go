package cli

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/data"
	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/dataset"
	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/experiment"
	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/persistence"
	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/report"
)

var (
	fromFile          bool
	otherDiagsAsInput bool
	searchIterations  int
	trainSeed         int64
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run the per-diagnosis model search",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, policy, err := loadConfigAndPolicy()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("from-file") {
			cfg.ModelsFromFile = fromFile
		}
		if cmd.Flags().Changed("other-diags-as-input") {
			cfg.UseOtherDiagsAsInput = otherDiagsAsInput
		}
		if cmd.Flags().Changed("iterations") {
			cfg.SearchIterations = searchIterations
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = trainSeed
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		table, err := data.LoadCSV(dataFile)
		if err != nil {
			return err
		}

		store := persistence.NewArtifactStore(modelsDir)
		runner := experiment.NewRunner(cfg, policy, store)

		outcome, err := runner.Train(table)
		if err != nil {
			return err
		}

		printTrainOutcome(outcome)

		if len(outcome.BestRows) > 0 {
			summary := filepath.Join(reportsDir, "best-classifiers.csv")
			if err := report.WriteBestClassifiersCSV(summary, outcome.BestRows); err != nil {
				return err
			}
			fmt.Printf("search summary written to %s\n", summary)
		}
		return nil
	},
}

func init() {
	trainCmd.Flags().BoolVar(&fromFile, "from-file", false, "reuse persisted classifiers instead of searching")
	trainCmd.Flags().BoolVar(&otherDiagsAsInput, "other-diags-as-input", false, "keep other consensus diagnoses as predictors")
	trainCmd.Flags().IntVar(&searchIterations, "iterations", 100, "randomized search iterations per model family")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 1, "random seed for splits and search")
}

func loadConfigAndPolicy() (experiment.Config, *dataset.LeakagePolicy, error) {
	cfg := experiment.DefaultConfig()
	if configFile != "" {
		loaded, err := experiment.LoadConfig(configFile)
		if err != nil {
			return cfg, nil, err
		}
		cfg = loaded
	}

	policy := dataset.DefaultPolicy()
	if policyFile != "" {
		loaded, err := dataset.LoadPolicy(policyFile)
		if err != nil {
			return cfg, nil, err
		}
		policy = loaded
	}
	return cfg, policy, nil
}

func printTrainOutcome(outcome *experiment.TrainOutcome) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	if outcome.FromCache {
		fmt.Printf("%s loaded %d classifiers from disk\n", green("ok:"), len(outcome.Classifiers))
		return
	}

	for _, row := range outcome.BestRows {
		fmt.Printf("%s %-55s %-20s auc=%.4f sd=%.4f\n",
			green("trained:"), row.Label, row.ModelType, row.BestScore, row.BestScoreSD)
	}
	for _, failure := range outcome.Failures {
		fmt.Printf("%s %-55s %v\n", yellow("skipped:"), failure.Label, failure.Err)
	}
	fmt.Printf("%d classifiers trained, %d labels skipped\n",
		len(outcome.Classifiers), len(outcome.Failures))
}
