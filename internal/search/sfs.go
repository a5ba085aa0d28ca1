package search

import (
	"fmt"

	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/pipeline"
)

// SequentialForwardSelection greedily grows a feature subset for one label's
// selected pipeline: at each step the candidate feature with the highest
// stratified 2-fold CV ROC-AUC joins the subset. Returns {k: top-k feature
// names} for k = 1..maxFeatures; subsets are nested by construction.
func (e *Engine) SequentialForwardSelection(template *pipeline.Pipeline, X [][]float64, y []int, featureNames []string, maxFeatures int) (map[int][]string, error) {
	if len(X) == 0 || len(X[0]) != len(featureNames) {
		return nil, fmt.Errorf("feature names do not match data width")
	}
	if maxFeatures < 1 || maxFeatures > len(featureNames) {
		return nil, fmt.Errorf("maxFeatures must be between 1 and %d", len(featureNames))
	}

	const sfsFolds = 2

	var selected []int
	remaining := make([]int, len(featureNames))
	for i := range remaining {
		remaining[i] = i
	}

	subsets := make(map[int][]string, maxFeatures)

	for k := 1; k <= maxFeatures; k++ {
		bestCandidate := -1
		bestScore := 0.0

		for pos, candidate := range remaining {
			columns := append(append([]int{}, selected...), candidate)
			XSub := takeColumns(X, columns)

			score, _, err := CrossValidateAUC(template.Clone(), XSub, y, sfsFolds, e.Seed)
			if err != nil {
				continue
			}
			if bestCandidate < 0 || score > bestScore {
				bestCandidate = pos
				bestScore = score
			}
		}

		if bestCandidate < 0 {
			return nil, fmt.Errorf("no scorable candidate at subset size %d", k)
		}

		selected = append(selected, remaining[bestCandidate])
		remaining = append(remaining[:bestCandidate], remaining[bestCandidate+1:]...)

		names := make([]string, len(selected))
		for i, idx := range selected {
			names[i] = featureNames[idx]
		}
		subsets[k] = names
	}

	return subsets, nil
}

func takeColumns(X [][]float64, columns []int) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		sub := make([]float64, len(columns))
		for j, col := range columns {
			sub[j] = row[col]
		}
		out[i] = sub
	}
	return out
}
