package cli

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/data"
	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/experiment"
	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/persistence"
)

var useTestSet bool

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Fit thresholds and report metrics for the trained classifiers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, policy, err := loadConfigAndPolicy()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("test-set") {
			cfg.UseTestSet = useTestSet
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

		result, err := runner.Evaluate(table, reportsDir)
		if err != nil {
			return err
		}

		printLeaderboard(result)

		valPath := filepath.Join(reportsDir, "performance-validation.csv")
		if err := result.Validation.WriteCSV(valPath); err != nil {
			return err
		}
		fmt.Printf("validation report written to %s\n", valPath)

		if result.Test != nil {
			testPath := filepath.Join(reportsDir, "performance-test.csv")
			if err := result.Test.WriteCSV(testPath); err != nil {
				return err
			}
			fmt.Printf("test report written to %s\n", testPath)
		}
		return nil
	},
}

func init() {
	evaluateCmd.Flags().BoolVar(&useTestSet, "test-set", false, "also score against the held-out test split")
}

func printLeaderboard(result *experiment.EvaluationResult) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Println(cyan("diagnosis leaderboard (validation)"))
	for _, row := range result.Validation.Rows {
		threshold := result.Thresholds[row.Label]
		fmt.Printf("%s %-55s auc=%.4f threshold=%.4f positives=%d\n",
			green("ok:"), row.Label, row.Metrics.ROCAUC, threshold, row.PositiveExamples)
	}
	for _, failure := range result.Failures {
		fmt.Printf("%s %-55s %v\n", yellow("failed:"), failure.Label, failure.Err)
	}
	fmt.Printf("%d of %d well-performing diagnoses evaluated\n",
		len(result.Validation.Rows), len(result.WellPerforming))
}
