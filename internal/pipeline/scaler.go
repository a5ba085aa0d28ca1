package pipeline

import (
	"fmt"
	"math"
)

// StandardScaler centers each feature and scales it to unit variance.
// Zero-variance features get a unit divisor so they pass through as zeros.
type StandardScaler struct {
	FeatureMean []float64
	FeatureStd  []float64
	IsFitted    bool
}

func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return fmt.Errorf("empty dataset")
	}

	nFeatures := len(X[0])
	nSamples := float64(len(X))
	s.FeatureMean = make([]float64, nFeatures)
	s.FeatureStd = make([]float64, nFeatures)

	for j := 0; j < nFeatures; j++ {
		sum := 0.0
		for i := range X {
			sum += X[i][j]
		}
		s.FeatureMean[j] = sum / nSamples
	}

	for j := 0; j < nFeatures; j++ {
		variance := 0.0
		for i := range X {
			diff := X[i][j] - s.FeatureMean[j]
			variance += diff * diff
		}
		variance /= nSamples

		s.FeatureStd[j] = math.Sqrt(variance)
		if s.FeatureStd[j] == 0 {
			s.FeatureStd[j] = 1
		}
	}

	s.IsFitted = true
	return nil
}

func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	if !s.IsFitted {
		return nil, fmt.Errorf("scaler must be fitted before transform")
	}

	result := make([][]float64, len(X))
	for i := range X {
		result[i] = make([]float64, len(X[i]))
		for j, v := range X[i] {
			result[i][j] = (v - s.FeatureMean[j]) / s.FeatureStd[j]
		}
	}
	return result, nil
}
