package evaluation

import (
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// ROCAUC computes the area under the ROC curve from raw positive-class
// probabilities. Returns NaN when y contains a single class, so callers can
// exclude the fold rather than fail.
func ROCAUC(probs []float64, y []int) float64 {
	if len(probs) == 0 || len(probs) != len(y) {
		return math.NaN()
	}

	scores := make([]float64, len(probs))
	copy(scores, probs)
	classes := make([]bool, len(y))
	positives := 0
	for i, label := range y {
		classes[i] = label == 1
		positives += label
	}
	if positives == 0 || positives == len(y) {
		return math.NaN()
	}

	stat.SortWeightedLabeled(scores, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, scores, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}

// ROCCurve returns (tpr, fpr, thresholds) ordered from the +Inf cutoff down.
func ROCCurve(probs []float64, y []int) ([]float64, []float64, []float64) {
	scores := make([]float64, len(probs))
	copy(scores, probs)
	classes := make([]bool, len(y))
	for i, label := range y {
		classes[i] = label == 1
	}

	stat.SortWeightedLabeled(scores, classes, nil)
	return stat.ROC(nil, scores, classes, nil)
}
