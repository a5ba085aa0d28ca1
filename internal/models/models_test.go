package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separable returns 1D data where positives sit well above negatives.
func separable(nPerClass int) ([][]float64, []int) {
	X := make([][]float64, 0, 2*nPerClass)
	y := make([]int, 0, 2*nPerClass)
	for i := 0; i < nPerClass; i++ {
		X = append(X, []float64{float64(i) / float64(nPerClass), 0.5})
		y = append(y, 0)
		X = append(X, []float64{10 + float64(i)/float64(nPerClass), 0.5})
		y = append(y, 1)
	}
	return X, y
}

func meanProbaByClass(t *testing.T, probs []float64, y []int) (neg, pos float64) {
	t.Helper()
	var negSum, posSum, negN, posN float64
	for i, p := range probs {
		require.GreaterOrEqual(t, p, 0.0)
		require.LessOrEqual(t, p, 1.0)
		if y[i] == 1 {
			posSum += p
			posN++
		} else {
			negSum += p
			negN++
		}
	}
	return negSum / negN, posSum / posN
}

func TestClassWeights(t *testing.T) {
	y := []int{0, 0, 0, 1}

	assert.Equal(t, [2]float64{1, 1}, ClassWeights(y, false))

	weights := ClassWeights(y, true)
	assert.InDelta(t, 4.0/6.0, weights[0], 1e-12)
	assert.InDelta(t, 2.0, weights[1], 1e-12)
}

func TestDecisionTreeSeparable(t *testing.T) {
	X, y := separable(20)

	tree := NewDecisionTree(5, 2, 1, 10, "gini", false)
	require.NoError(t, tree.Fit(X, y))

	probs := tree.PredictProba(X)
	for i, p := range probs {
		assert.Equal(t, float64(y[i]), p, "pure leaves on separable data")
	}
}

func TestDecisionTreeEntropyCriterion(t *testing.T) {
	X, y := separable(20)

	tree := NewDecisionTree(5, 2, 1, 10, "entropy", true)
	require.NoError(t, tree.Fit(X, y))

	neg, pos := meanProbaByClass(t, tree.PredictProba(X), y)
	assert.Greater(t, pos, neg)
}

func TestDecisionTreeMaxLeafNodes(t *testing.T) {
	X, y := separable(20)

	tree := NewDecisionTree(10, 2, 1, 1, "gini", false)
	require.NoError(t, tree.Fit(X, y))

	assert.True(t, tree.Root.IsLeaf, "a single-leaf budget must not split")
	assert.InDelta(t, 0.5, tree.Root.PositiveFraction, 1e-12)
}

func TestRandomForestSeparable(t *testing.T) {
	X, y := separable(20)

	forest := NewRandomForest(20, 5, 2, 1, "1.0", "gini", false, 1)
	require.NoError(t, forest.Fit(X, y))
	require.Len(t, forest.Trees, 20)

	neg, pos := meanProbaByClass(t, forest.PredictProba(X), y)
	assert.Less(t, neg, 0.3)
	assert.Greater(t, pos, 0.7)
}

func TestRandomForestDeterministicForSeed(t *testing.T) {
	X, y := separable(20)

	first := NewRandomForest(10, 5, 2, 1, "sqrt", "gini", false, 7)
	require.NoError(t, first.Fit(X, y))
	second := NewRandomForest(10, 5, 2, 1, "sqrt", "gini", false, 7)
	require.NoError(t, second.Fit(X, y))

	assert.Equal(t, first.PredictProba(X), second.PredictProba(X))
}

func TestLogisticRegressionSeparable(t *testing.T) {
	X, y := separable(20)

	lr := NewLogisticRegression(1, "l2", 0, false)
	require.NoError(t, lr.Fit(X, y))

	neg, pos := meanProbaByClass(t, lr.PredictProba(X), y)
	assert.Less(t, neg, 0.5)
	assert.Greater(t, pos, 0.5)
	assert.Len(t, lr.Coefficients(), 2)
}

func TestLogisticRegressionL1Sparsity(t *testing.T) {
	X, y := separable(20)

	lr := NewLogisticRegression(1e-4, "l1", 0, false)
	require.NoError(t, lr.Fit(X, y))

	for _, c := range lr.Coefficients() {
		assert.Equal(t, 0.0, c, "heavy l1 must zero the weights exactly")
	}
}

func TestLogisticRegressionElasticNet(t *testing.T) {
	X, y := separable(20)

	lr := NewLogisticRegression(1, "elasticnet", 0.5, true)
	require.NoError(t, lr.Fit(X, y))

	neg, pos := meanProbaByClass(t, lr.PredictProba(X), y)
	assert.Greater(t, pos, neg)
}

func TestKernelSVMSeparable(t *testing.T) {
	for _, kernel := range []string{"linear", "rbf"} {
		svm := NewKernelSVM(1, 0.5, 3, kernel, false, 1)
		X, y := separable(20)
		require.NoError(t, svm.Fit(X, y), kernel)

		neg, pos := meanProbaByClass(t, svm.PredictProba(X), y)
		assert.Greater(t, pos, neg, "kernel %s must rank positives higher", kernel)
	}
}

func TestKernelSVMCalibration(t *testing.T) {
	X, y := separable(20)

	svm := NewKernelSVM(1, 0.5, 3, "rbf", false, 1)
	require.NoError(t, svm.Fit(X, y))
	require.False(t, svm.Calibrated)

	require.NoError(t, svm.CalibrateProbability(X, y))
	assert.True(t, svm.Calibrated)

	neg, pos := meanProbaByClass(t, svm.PredictProba(X), y)
	assert.Greater(t, pos, neg)
}

func TestEstimatorClonesAreUnfitted(t *testing.T) {
	X, y := separable(10)

	estimators := []Estimator{
		NewDecisionTree(5, 2, 1, 10, "gini", false),
		NewRandomForest(5, 5, 2, 1, "sqrt", "gini", false, 1),
		NewKernelSVM(1, 0.5, 3, "rbf", false, 1),
		NewLogisticRegression(1, "l2", 0, false),
	}

	for _, est := range estimators {
		require.NoError(t, est.Fit(X, y), est.Name())
		clone := est.Clone()
		assert.Equal(t, est.Name(), clone.Name())
		assert.Equal(t, est.Params(), clone.Params())
	}
}
