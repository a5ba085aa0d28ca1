package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ExportCoefficients writes the non-zero coefficients of a linear model to
// <dir>/<label>_coefficients.csv, sorted by coefficient value descending.
// Labels contain characters hostile to filenames, so they get sanitized.
func ExportCoefficients(dir, label string, featureNames []string, coefficients []float64) (string, error) {
	if len(featureNames) != len(coefficients) {
		return "", fmt.Errorf("feature names and coefficients length mismatch: %d vs %d",
			len(featureNames), len(coefficients))
	}

	type pair struct {
		name  string
		value float64
	}
	var pairs []pair
	for i, c := range coefficients {
		if c == 0 {
			continue
		}
		pairs = append(pairs, pair{name: featureNames[i], value: c})
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].value > pairs[j].value })

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create coefficients dir: %w", err)
	}
	filename := filepath.Join(dir, SanitizeLabel(label)+"_coefficients.csv")
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create coefficients file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"Feature", "Coefficient"}); err != nil {
		return "", err
	}
	for _, p := range pairs {
		value := decimal.NewFromFloat(p.value).Round(3).String()
		if err := writer.Write([]string{p.name, value}); err != nil {
			return "", err
		}
	}
	if err := writer.Error(); err != nil {
		return "", err
	}
	return filename, nil
}

// SanitizeLabel turns a diagnosis label into a filename-safe token.
func SanitizeLabel(label string) string {
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "",
		" ", "_",
		"(", "",
		")", "",
		",", "",
	)
	return replacer.Replace(label)
}
