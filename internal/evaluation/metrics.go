package evaluation

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/pipeline"
)

// MetricReport is the full confusion-matrix-derived vector for one
// classifier+threshold pair on one split. Cells carry the +0.01 smoothing
// offset; the checks are self-consistency sums that must equal 1.
type MetricReport struct {
	TP float64
	TN float64
	FP float64
	FN float64

	Prevalence float64
	Accuracy   float64
	Precision  float64
	NPV        float64
	FDR        float64
	FOR        float64
	CheckPos   float64
	CheckNeg   float64
	Recall     float64
	FPR        float64
	FNR        float64
	TNR        float64
	CheckPos2  float64
	CheckNeg2  float64
	LRPlus     float64
	LRMinus    float64
	DOR        float64
	F1         float64
	FBeta      float64
	MCC        float64
	BM         float64
	MK         float64

	PredictedPositiveRatio float64
	ROCAUC                 float64
}

// MetricNames lists report columns in canonical order.
func MetricNames() []string {
	return []string{
		"TP", "TN", "FP", "FN",
		"Prevalence", "Accuracy", "Precision", "NPV", "FDR", "FOR",
		"check_Pos", "check_Neg",
		"Recall (Sensitivity)", "FPR", "FNR", "TNR (Specificity)",
		"check_Pos2", "check_Neg2",
		"LR+", "LR-", "DOR", "F1", "FBeta", "MCC", "BM", "MK",
		"Predicted Positive Ratio", "ROC AUC",
	}
}

// Values returns the metrics in MetricNames order.
func (m *MetricReport) Values() []float64 {
	return []float64{
		m.TP, m.TN, m.FP, m.FN,
		m.Prevalence, m.Accuracy, m.Precision, m.NPV, m.FDR, m.FOR,
		m.CheckPos, m.CheckNeg,
		m.Recall, m.FPR, m.FNR, m.TNR,
		m.CheckPos2, m.CheckNeg2,
		m.LRPlus, m.LRMinus, m.DOR, m.F1, m.FBeta, m.MCC, m.BM, m.MK,
		m.PredictedPositiveRatio, m.ROCAUC,
	}
}

// ByName looks a metric up by its report column name.
func (m *MetricReport) ByName(name string) (float64, bool) {
	for i, n := range MetricNames() {
		if n == name {
			return m.Values()[i], true
		}
	}
	return 0, false
}

// Compute applies the pipeline, thresholds the probabilities, and derives the
// full metric vector. Pure with respect to its inputs: nothing is mutated.
func Compute(p *pipeline.Pipeline, threshold float64, X [][]float64, y []int, beta float64) (*MetricReport, error) {
	probs, err := p.PredictProba(X)
	if err != nil {
		return nil, err
	}
	if len(probs) != len(y) {
		return nil, fmt.Errorf("got %d probabilities for %d labels", len(probs), len(y))
	}

	yPred := make([]int, len(probs))
	for i, prob := range probs {
		if prob >= threshold {
			yPred[i] = 1
		}
	}

	report := matrixMetrics(y, yPred, beta)
	// AUC comes from the raw probabilities, independent of the threshold.
	report.ROCAUC = ROCAUC(probs, y)
	return report, nil
}

func matrixMetrics(yTrue, yPred []int, beta float64) *MetricReport {
	var tn, fn, tp, fp float64
	for i := range yTrue {
		switch {
		case yTrue[i] == 1 && yPred[i] == 1:
			tp++
		case yTrue[i] == 1 && yPred[i] == 0:
			fn++
		case yTrue[i] == 0 && yPred[i] == 1:
			fp++
		default:
			tn++
		}
	}

	// Offset every cell so zero cells never divide to NaN/Inf. The constant
	// must stay 0.01 for numeric parity with earlier reports.
	tn += 0.01
	fn += 0.01
	tp += 0.01
	fp += 0.01

	population := tn + fn + tp + fp

	m := &MetricReport{TP: tp, TN: tn, FP: fp, FN: fn}
	m.Prevalence = round2((tp + fn) / population)
	m.Accuracy = round4((tp + tn) / population)
	m.Precision = round4(tp / (tp + fp))
	m.NPV = round4(tn / (tn + fn))
	m.FDR = round4(fp / (tp + fp))
	m.FOR = round4(fn / (tn + fn))
	m.CheckPos = m.Precision + m.FDR
	m.CheckNeg = m.NPV + m.FOR
	m.Recall = round4(tp / (tp + fn))
	m.FPR = round4(fp / (tn + fp))
	m.FNR = round4(fn / (tp + fn))
	m.TNR = round4(tn / (tn + fp))
	m.CheckPos2 = m.Recall + m.FNR
	m.CheckNeg2 = m.FPR + m.TNR
	m.LRPlus = round4(m.Recall / m.FPR)
	m.LRMinus = round4(m.FNR / m.TNR)
	// DOR is pinned to 1 until the LR+/LR- derived value is validated;
	// downstream consumers rely on the placeholder.
	m.DOR = 1
	m.F1 = round4(2 * m.Precision * m.Recall / (m.Precision + m.Recall))
	m.FBeta = round4((1 + beta*beta) * m.Precision * m.Recall / (beta*beta*m.Precision + m.Recall))
	m.MCC = round4((tp*tn - fp*fn) / math.Sqrt((tp+fp)*(tp+fn)*(tn+fp)*(tn+fn)))
	m.BM = m.Recall + m.TNR - 1
	m.MK = m.Precision + m.NPV - 1
	m.PredictedPositiveRatio = round2((tp + fp) / population)

	return m
}

func round4(v float64) float64 {
	return roundPlaces(v, 4)
}

func round2(v float64) float64 {
	return roundPlaces(v, 2)
}

func roundPlaces(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	out, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return out
}
