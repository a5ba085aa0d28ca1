package evaluation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/models"
	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/pipeline"
)

// fixedEstimator returns preset probabilities regardless of the features, so
// metric tests can pin the confusion matrix exactly.
type fixedEstimator struct {
	Probs []float64
}

func (f *fixedEstimator) Fit(X [][]float64, y []int) error { return nil }

func (f *fixedEstimator) PredictProba(X [][]float64) []float64 {
	return f.Probs[:len(X)]
}

func (f *fixedEstimator) Name() string            { return "fixed" }
func (f *fixedEstimator) Params() map[string]any  { return map[string]any{} }
func (f *fixedEstimator) Clone() models.Estimator { return &fixedEstimator{Probs: f.Probs} }

func fixedPipeline(t *testing.T, probs []float64, y []int) *pipeline.Pipeline {
	t.Helper()
	X := make([][]float64, len(probs))
	for i := range X {
		X[i] = []float64{float64(i)}
	}
	p := pipeline.New(&fixedEstimator{Probs: probs})
	require.NoError(t, p.Fit(X, y))
	return p
}

func rowsFor(n int) [][]float64 {
	X := make([][]float64, n)
	for i := range X {
		X[i] = []float64{float64(i)}
	}
	return X
}

func TestComputeKnownConfusionMatrix(t *testing.T) {
	y := []int{1, 1, 1, 0, 0}
	probs := []float64{0.9, 0.8, 0.2, 0.7, 0.1}
	p := fixedPipeline(t, probs, y)

	m, err := Compute(p, 0.5, rowsFor(len(y)), y, 3)
	require.NoError(t, err)

	// TP=2 FN=1 FP=1 TN=1, each cell +0.01.
	assert.InDelta(t, 2.01, m.TP, 1e-9)
	assert.InDelta(t, 1.01, m.TN, 1e-9)
	assert.InDelta(t, 1.01, m.FP, 1e-9)
	assert.InDelta(t, 1.01, m.FN, 1e-9)

	assert.Equal(t, 0.6, m.Prevalence, "prevalence rounds to 2 decimals")
	assert.Equal(t, 0.5992, m.Accuracy)
	assert.Equal(t, 0.6656, m.Precision)
	assert.Equal(t, 0.6656, m.Recall)
	assert.Equal(t, 0.3344, m.FDR)
	assert.Equal(t, 0.5, m.NPV)
	assert.Equal(t, 0.5, m.FPR)
	assert.Equal(t, 0.5, m.TNR)
	assert.Equal(t, 0.6, m.PredictedPositiveRatio)

	assert.InDelta(t, 5.0/6.0, m.ROCAUC, 1e-9)
}

func TestComputeSelfConsistencyChecks(t *testing.T) {
	y := []int{1, 1, 0, 0, 1, 0, 1, 0}
	probs := []float64{0.9, 0.4, 0.6, 0.2, 0.8, 0.3, 0.1, 0.7}
	p := fixedPipeline(t, probs, y)

	m, err := Compute(p, 0.5, rowsFor(len(y)), y, 3)
	require.NoError(t, err)

	assert.InDelta(t, 1, m.CheckPos, 1e-3)
	assert.InDelta(t, 1, m.CheckNeg, 1e-3)
	assert.InDelta(t, 1, m.CheckPos2, 1e-3)
	assert.InDelta(t, 1, m.CheckNeg2, 1e-3)
	assert.Equal(t, 1.0, m.DOR)
	assert.InDelta(t, m.Recall+m.TNR-1, m.BM, 1e-12)
	assert.InDelta(t, m.Precision+m.NPV-1, m.MK, 1e-12)
}

func TestComputeEmptyCellsStayFinite(t *testing.T) {
	// Everything predicted positive and every label positive: TN, FP and FN
	// are all empty and survive only through the smoothing offset.
	y := []int{1, 1, 1, 1}
	probs := []float64{0.9, 0.9, 0.9, 0.9}
	p := fixedPipeline(t, probs, y)

	m, err := Compute(p, 0.5, rowsFor(len(y)), y, 3)
	require.NoError(t, err)

	for i, v := range m.Values() {
		if MetricNames()[i] == "ROC AUC" {
			assert.True(t, math.IsNaN(v), "single-class AUC is undefined")
			continue
		}
		assert.False(t, math.IsNaN(v), "%s must not be NaN", MetricNames()[i])
		assert.False(t, math.IsInf(v, 0), "%s must not be Inf", MetricNames()[i])
	}
}

func TestFBetaOneEqualsF1(t *testing.T) {
	y := []int{1, 1, 0, 0, 1, 0}
	probs := []float64{0.9, 0.4, 0.6, 0.2, 0.8, 0.3}
	p := fixedPipeline(t, probs, y)

	m, err := Compute(p, 0.5, rowsFor(len(y)), y, 1)
	require.NoError(t, err)

	assert.InDelta(t, m.F1, m.FBeta, 1e-4)
}

func TestThresholdBoundaryIsPositive(t *testing.T) {
	y := []int{0, 1}
	probs := []float64{0.3, 0.5}
	p := fixedPipeline(t, probs, y)

	m, err := Compute(p, 0.5, rowsFor(len(y)), y, 3)
	require.NoError(t, err)

	// A probability equal to the threshold counts as positive.
	assert.InDelta(t, 1.01, m.TP, 1e-9)
	assert.InDelta(t, 0.01, m.FN, 1e-9)
}

func TestMetricNamesMatchValues(t *testing.T) {
	m := &MetricReport{}
	assert.Len(t, m.Values(), len(MetricNames()))

	v, ok := m.ByName("DOR")
	assert.True(t, ok)
	assert.Equal(t, m.DOR, v)

	_, ok = m.ByName("nonexistent")
	assert.False(t, ok)
}
