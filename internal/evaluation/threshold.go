package evaluation

import (
	"fmt"
	"math"

	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/pipeline"
)

// ThresholdUndefinedError reports that no ROC point had a defined geometric
// mean, which happens when the validation split holds a single class.
type ThresholdUndefinedError struct {
	Label string
}

func (e *ThresholdUndefinedError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("label %q: no defined g-mean on the ROC curve, cannot select a threshold", e.Label)
	}
	return "no defined g-mean on the ROC curve, cannot select a threshold"
}

// SelectThreshold scans the validation ROC curve and returns the probability
// cutoff maximizing sqrt(TPR * (1 - FPR)). NaN g-means are skipped; if every
// point is NaN the selection fails rather than defaulting.
func SelectThreshold(p *pipeline.Pipeline, XVal [][]float64, yVal []int) (float64, error) {
	probs, err := p.PredictProba(XVal)
	if err != nil {
		return 0, err
	}

	tpr, fpr, thresholds := ROCCurve(probs, yVal)

	bestIdx := -1
	bestGMean := math.Inf(-1)
	for i := range tpr {
		gmean := math.Sqrt(tpr[i] * (1 - fpr[i]))
		if math.IsNaN(gmean) {
			continue
		}
		if gmean > bestGMean {
			bestGMean = gmean
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		return 0, &ThresholdUndefinedError{}
	}
	return thresholds[bestIdx], nil
}
