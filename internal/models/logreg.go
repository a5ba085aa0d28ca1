package models

import (
	"fmt"
	"math"
)

// LogisticRegression supports l1, l2 and elastic-net penalties via proximal
// gradient descent with soft-thresholding, so l1-regularized fits produce
// exactly-zero coefficients.
type LogisticRegression struct {
	C        float64
	Penalty  string
	L1Ratio  float64
	Balanced bool
	MaxIter  int
	Tol      float64

	Coef []float64
	Bias float64
}

func NewLogisticRegression(c float64, penalty string, l1Ratio float64, balanced bool) *LogisticRegression {
	if c <= 0 {
		c = 1
	}
	if penalty == "" {
		penalty = "l2"
	}

	return &LogisticRegression{
		C:        c,
		Penalty:  penalty,
		L1Ratio:  l1Ratio,
		Balanced: balanced,
		MaxIter:  1000,
		Tol:      1e-5,
	}
}

func (lr *LogisticRegression) Name() string {
	return "logisticregression"
}

func (lr *LogisticRegression) Params() map[string]any {
	return map[string]any{
		"C":            lr.C,
		"penalty":      lr.Penalty,
		"l1_ratio":     lr.L1Ratio,
		"class_weight": classWeightName(lr.Balanced),
	}
}

func (lr *LogisticRegression) Clone() Estimator {
	clone := NewLogisticRegression(lr.C, lr.Penalty, lr.L1Ratio, lr.Balanced)
	clone.MaxIter = lr.MaxIter
	clone.Tol = lr.Tol
	return clone
}

func (lr *LogisticRegression) l1l2() (float64, float64) {
	switch lr.Penalty {
	case "l1":
		return 1, 0
	case "elasticnet":
		return lr.L1Ratio, 1 - lr.L1Ratio
	default:
		return 0, 1
	}
}

func (lr *LogisticRegression) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("invalid training data: %d samples, %d labels", len(X), len(y))
	}

	n := len(X)
	d := len(X[0])
	lr.Coef = make([]float64, d)
	lr.Bias = 0

	classWeights := ClassWeights(y, lr.Balanced)
	sampleWeights := make([]float64, n)
	totalWeight := 0.0
	for i, label := range y {
		sampleWeights[i] = classWeights[label]
		totalWeight += sampleWeights[i]
	}

	// Regularization strength matching the C convention: the penalty shrinks
	// as C grows and as the sample count grows.
	lambda := 1 / (lr.C * float64(n))
	l1Frac, l2Frac := lr.l1l2()
	lambda1 := l1Frac * lambda
	lambda2 := l2Frac * lambda

	// Step size from a Lipschitz bound on the averaged logistic loss.
	maxNorm := 0.0
	for _, row := range X {
		norm := 0.0
		for _, v := range row {
			norm += v * v
		}
		if norm > maxNorm {
			maxNorm = norm
		}
	}
	step := 1 / (maxNorm/4 + lambda2 + 1e-12)

	grad := make([]float64, d)
	for iter := 0; iter < lr.MaxIter; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		biasGrad := 0.0

		for i, row := range X {
			z := lr.Bias
			for j, v := range row {
				z += lr.Coef[j] * v
			}
			residual := sampleWeights[i] * (sigmoid(z) - float64(y[i]))
			for j, v := range row {
				grad[j] += residual * v
			}
			biasGrad += residual
		}

		maxDelta := 0.0
		for j := range lr.Coef {
			g := grad[j]/totalWeight + lambda2*lr.Coef[j]
			updated := softThreshold(lr.Coef[j]-step*g, step*lambda1)
			if delta := math.Abs(updated - lr.Coef[j]); delta > maxDelta {
				maxDelta = delta
			}
			lr.Coef[j] = updated
		}

		biasUpdated := lr.Bias - step*biasGrad/totalWeight
		if delta := math.Abs(biasUpdated - lr.Bias); delta > maxDelta {
			maxDelta = delta
		}
		lr.Bias = biasUpdated

		if maxDelta < lr.Tol {
			break
		}
	}

	return nil
}

func (lr *LogisticRegression) PredictProba(X [][]float64) []float64 {
	proba := make([]float64, len(X))
	for i, row := range X {
		z := lr.Bias
		for j, v := range row {
			z += lr.Coef[j] * v
		}
		proba[i] = sigmoid(z)
	}
	return proba
}

func (lr *LogisticRegression) Coefficients() []float64 {
	return lr.Coef
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func softThreshold(v, threshold float64) float64 {
	switch {
	case v > threshold:
		return v - threshold
	case v < -threshold:
		return v + threshold
	default:
		return 0
	}
}
