package models

// Estimator is a binary classifier. PredictProba returns the positive-class
// probability (or, before calibration, any monotone score mapped into (0,1))
// for each row.
type Estimator interface {
	Fit(X [][]float64, y []int) error
	PredictProba(X [][]float64) []float64
	Name() string
	Params() map[string]any
	Clone() Estimator
}

// ProbabilityCalibrator is implemented by estimators whose probability
// machinery is too expensive to carry during hyperparameter search and is
// fitted separately once a model has been selected.
type ProbabilityCalibrator interface {
	CalibrateProbability(X [][]float64, y []int) error
}

// Coefficients is implemented by linear estimators that expose per-feature
// weights for interpretation.
type Coefficients interface {
	Coefficients() []float64
}

// ClassWeights returns the per-class sample weights. Balanced weighting gives
// each class the same total mass: n / (2 * n_class).
func ClassWeights(y []int, balanced bool) [2]float64 {
	if !balanced {
		return [2]float64{1, 1}
	}

	counts := [2]float64{}
	for _, label := range y {
		counts[label]++
	}

	n := float64(len(y))
	weights := [2]float64{1, 1}
	for class, count := range counts {
		if count > 0 {
			weights[class] = n / (2 * count)
		}
	}
	return weights
}
