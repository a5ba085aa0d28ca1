package experiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3.0, cfg.Beta)
	assert.Equal(t, 0.02, cfg.CostMargin)
	assert.Equal(t, 0.2, cfg.SplitFraction)
	assert.Equal(t, 10, cfg.MinPositiveExamples)
	assert.Equal(t, 0.8, cfg.MinCVAUC)
	assert.Equal(t, 0.02, cfg.MaxCVSD)
	assert.Equal(t, 100, cfg.SearchIterations)
	assert.Equal(t, 3, cfg.CVFolds)
	assert.False(t, cfg.UseTestSet)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	content := "beta: 2\nsearch_iterations: 25\nuse_test_set: true\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.Beta)
	assert.Equal(t, 25, cfg.SearchIterations)
	assert.True(t, cfg.UseTestSet)
	// Untouched fields keep their defaults.
	assert.Equal(t, 0.02, cfg.CostMargin)
	assert.Equal(t, 3, cfg.CVFolds)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("split_fraction: 1.5\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero split fraction", func(c *Config) { c.SplitFraction = 0 }},
		{"negative beta", func(c *Config) { c.Beta = -1 }},
		{"negative cost margin", func(c *Config) { c.CostMargin = -0.01 }},
		{"zero iterations", func(c *Config) { c.SearchIterations = 0 }},
		{"single fold", func(c *Config) { c.CVFolds = 1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
