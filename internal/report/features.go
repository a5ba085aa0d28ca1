package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// WriteFeatureSubsetsCSV writes the nested forward-selection subsets for one
// label to <dir>/<label>_feature-subsets.csv, one row per subset size.
func WriteFeatureSubsetsCSV(dir, label string, subsets map[int][]string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create feature subsets dir: %w", err)
	}
	filename := filepath.Join(dir, SanitizeLabel(label)+"_feature-subsets.csv")
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create feature subsets file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"Number of features", "Features"}); err != nil {
		return "", err
	}

	sizes := make([]int, 0, len(subsets))
	for k := range subsets {
		sizes = append(sizes, k)
	}
	sort.Ints(sizes)

	for _, k := range sizes {
		record := []string{strconv.Itoa(k), strings.Join(subsets[k], ";")}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}
	if err := writer.Error(); err != nil {
		return "", err
	}
	return filename, nil
}
