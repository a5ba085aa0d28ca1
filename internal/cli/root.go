package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	dataFile   string
	modelsDir  string
	reportsDir string
	configFile string
	policyFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "diagmodel",
	Short: "Train and evaluate clinical diagnosis classifiers",
	Long: `diagmodel searches for the best classifier per consensus diagnosis in a
clinical assessment dataset, tunes an operating threshold on held-out data
and reports a per-diagnosis performance leaderboard.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		slog.SetDefault(slog.New(handler))
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataFile, "data", "data/dataset.csv", "input dataset CSV")
	rootCmd.PersistentFlags().StringVar(&modelsDir, "models-dir", "models", "directory for persisted model artifacts")
	rootCmd.PersistentFlags().StringVar(&reportsDir, "reports-dir", "reports", "directory for CSV reports")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "experiment config YAML (defaults used when empty)")
	rootCmd.PersistentFlags().StringVar(&policyFile, "policy", "", "leakage policy YAML (built-in study policy when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(evaluateCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
