package pipeline

import (
	"fmt"
	"math"
	"sort"
)

// MedianImputer fills NaN cells with the per-column median of the fitting
// data.
type MedianImputer struct {
	Medians  []float64
	IsFitted bool
}

func NewMedianImputer() *MedianImputer {
	return &MedianImputer{}
}

func (mi *MedianImputer) Fit(X [][]float64) error {
	if len(X) == 0 {
		return fmt.Errorf("empty dataset")
	}

	nFeatures := len(X[0])
	mi.Medians = make([]float64, nFeatures)

	values := make([]float64, 0, len(X))
	for j := 0; j < nFeatures; j++ {
		values = values[:0]
		for i := range X {
			if !math.IsNaN(X[i][j]) {
				values = append(values, X[i][j])
			}
		}
		mi.Medians[j] = median(values)
	}

	mi.IsFitted = true
	return nil
}

func (mi *MedianImputer) Transform(X [][]float64) ([][]float64, error) {
	if !mi.IsFitted {
		return nil, fmt.Errorf("imputer must be fitted before transform")
	}

	result := make([][]float64, len(X))
	for i := range X {
		result[i] = make([]float64, len(X[i]))
		for j, v := range X[i] {
			if math.IsNaN(v) {
				result[i][j] = mi.Medians[j]
			} else {
				result[i][j] = v
			}
		}
	}
	return result, nil
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
