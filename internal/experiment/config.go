package experiment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config drives a full experiment run. Defaults mirror the study settings.
type Config struct {
	Beta                 float64 `yaml:"beta"`
	CostMargin           float64 `yaml:"cost_margin"`
	SplitFraction        float64 `yaml:"split_fraction"`
	Seed                 int64   `yaml:"seed"`
	MinPositiveExamples  int     `yaml:"min_positive_examples"`
	MinCVAUC             float64 `yaml:"min_cv_auc"`
	MaxCVSD              float64 `yaml:"max_cv_sd"`
	UseOtherDiagsAsInput bool    `yaml:"use_other_diags_as_input"`
	ModelsFromFile       bool    `yaml:"models_from_file"`
	SearchIterations     int     `yaml:"search_iterations"`
	CVFolds              int     `yaml:"cv_folds"`
	UseTestSet           bool    `yaml:"use_test_set"`
}

func DefaultConfig() Config {
	return Config{
		Beta:                 3,
		CostMargin:           0.02,
		SplitFraction:        0.2,
		Seed:                 1,
		MinPositiveExamples:  10,
		MinCVAUC:             0.8,
		MaxCVSD:              0.02,
		UseOtherDiagsAsInput: false,
		ModelsFromFile:       false,
		SearchIterations:     100,
		CVFolds:              3,
		UseTestSet:           false,
	}
}

// LoadConfig reads a YAML config, filling unset fields from the defaults.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.SplitFraction <= 0 || c.SplitFraction >= 1 {
		return fmt.Errorf("split_fraction must be in (0, 1), got %v", c.SplitFraction)
	}
	if c.Beta <= 0 {
		return fmt.Errorf("beta must be positive, got %v", c.Beta)
	}
	if c.CostMargin < 0 {
		return fmt.Errorf("cost_margin must not be negative, got %v", c.CostMargin)
	}
	if c.SearchIterations <= 0 {
		return fmt.Errorf("search_iterations must be positive, got %d", c.SearchIterations)
	}
	if c.CVFolds < 2 {
		return fmt.Errorf("cv_folds must be at least 2, got %d", c.CVFolds)
	}
	return nil
}
