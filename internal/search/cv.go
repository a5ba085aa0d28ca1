package search

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/evaluation"
	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/pipeline"
)

// StratifiedKFold deals each class round-robin into nFolds test index sets
// after a seeded shuffle, keeping the label proportion of every fold close to
// the full set's.
func StratifiedKFold(y []int, nFolds int, seed int64) ([][]int, error) {
	if nFolds < 2 || nFolds > len(y) {
		return nil, fmt.Errorf("invalid number of folds: %d (must be between 2 and %d)", nFolds, len(y))
	}

	classIndices := make(map[int][]int)
	for i, label := range y {
		classIndices[label] = append(classIndices[label], i)
	}

	rng := rand.New(rand.NewSource(seed))
	folds := make([][]int, nFolds)

	for _, class := range []int{0, 1} {
		indices := classIndices[class]
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		for i, idx := range indices {
			fold := i % nFolds
			folds[fold] = append(folds[fold], idx)
		}
	}

	return folds, nil
}

// CrossValidateAUC scores a pipeline configuration by ROC-AUC under
// stratified k-fold cross-validation. Folds whose test half lacks a class
// yield an undefined AUC and are excluded from the average rather than
// failing the trial; a trial with no scorable fold is an error.
func CrossValidateAUC(template *pipeline.Pipeline, X [][]float64, y []int, nFolds int, seed int64) (mean, sd float64, err error) {
	folds, err := StratifiedKFold(y, nFolds, seed)
	if err != nil {
		return 0, 0, err
	}

	var scores []float64
	for _, testIndices := range folds {
		score, foldErr := evaluateFold(template, X, y, testIndices)
		if foldErr != nil {
			return 0, 0, foldErr
		}
		if math.IsNaN(score) {
			continue
		}
		scores = append(scores, score)
	}

	if len(scores) == 0 {
		return 0, 0, fmt.Errorf("no fold produced a defined ROC-AUC")
	}

	mean = stat.Mean(scores, nil)
	if len(scores) > 1 {
		sd = stat.StdDev(scores, nil)
	}
	return mean, sd, nil
}

func evaluateFold(template *pipeline.Pipeline, X [][]float64, y []int, testIndices []int) (float64, error) {
	testSet := make(map[int]bool, len(testIndices))
	for _, idx := range testIndices {
		testSet[idx] = true
	}

	trainIndices := make([]int, 0, len(X)-len(testIndices))
	for i := range X {
		if !testSet[i] {
			trainIndices = append(trainIndices, i)
		}
	}

	XTrain := make([][]float64, len(trainIndices))
	yTrain := make([]int, len(trainIndices))
	for i, idx := range trainIndices {
		XTrain[i] = X[idx]
		yTrain[i] = y[idx]
	}

	XTest := make([][]float64, len(testIndices))
	yTest := make([]int, len(testIndices))
	for i, idx := range testIndices {
		XTest[i] = X[idx]
		yTest[i] = y[idx]
	}

	foldPipeline := template.Clone()
	if err := foldPipeline.Fit(XTrain, yTrain); err != nil {
		return 0, err
	}

	probs, err := foldPipeline.PredictProba(XTest)
	if err != nil {
		return 0, err
	}
	return evaluation.ROCAUC(probs, yTest), nil
}
