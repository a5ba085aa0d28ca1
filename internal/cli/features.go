package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/data"
	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/experiment"
	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/persistence"
)

var maxFeatures int

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Run sequential forward selection for the well-performing classifiers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, policy, err := loadConfigAndPolicy()
		if err != nil {
			return err
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

		results, err := runner.SelectFeatures(table, reportsDir, maxFeatures)
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		for _, r := range results.Selected {
			fmt.Printf("%s %-55s %d subsets written to %s\n",
				green("selected:"), r.Label, len(r.Subsets), r.File)
		}
		for _, failure := range results.Failures {
			fmt.Printf("%s %-55s %v\n", yellow("failed:"), failure.Label, failure.Err)
		}
		return nil
	},
}

func init() {
	featuresCmd.Flags().IntVar(&maxFeatures, "max-features", 50, "largest feature subset to grow")
	rootCmd.AddCommand(featuresCmd)
}
