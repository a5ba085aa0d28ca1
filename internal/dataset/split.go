package dataset

import (
	"fmt"
	"math/rand"
)

// StratifiedSplitter carves off a label-proportional test fraction with a
// fixed seed so every run produces the same partition.
type StratifiedSplitter struct {
	TestFraction float64
	Seed         int64
}

func NewStratifiedSplitter(testFraction float64, seed int64) *StratifiedSplitter {
	return &StratifiedSplitter{TestFraction: testFraction, Seed: seed}
}

// Split returns (XTrain, XTest, yTrain, yTest). The stage name only feeds
// error messages.
func (s *StratifiedSplitter) Split(X [][]float64, y []int, stage string) ([][]float64, [][]float64, []int, []int, error) {
	if len(X) != len(y) {
		return nil, nil, nil, nil, fmt.Errorf("x and y must have the same length")
	}
	if len(X) == 0 {
		return nil, nil, nil, nil, fmt.Errorf("cannot split empty dataset")
	}
	if s.TestFraction <= 0 || s.TestFraction >= 1 {
		return nil, nil, nil, nil, fmt.Errorf("test fraction must be between 0 and 1")
	}

	classIndices := make(map[int][]int)
	for i, label := range y {
		classIndices[label] = append(classIndices[label], i)
	}

	rng := rand.New(rand.NewSource(s.Seed))
	var trainIndices, testIndices []int

	// Iterate classes in a fixed order so the seed fully determines the split.
	for _, class := range []int{0, 1} {
		indices := classIndices[class]
		if len(indices) == 0 {
			return nil, nil, nil, nil, &InsufficientClassBalanceError{Class: class, Stage: stage}
		}

		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		testCount := int(float64(len(indices)) * s.TestFraction)
		trainCount := len(indices) - testCount
		if testCount == 0 || trainCount == 0 {
			return nil, nil, nil, nil, &InsufficientClassBalanceError{Class: class, Stage: stage}
		}

		trainIndices = append(trainIndices, indices[:trainCount]...)
		testIndices = append(testIndices, indices[trainCount:]...)
	}

	rng.Shuffle(len(trainIndices), func(i, j int) {
		trainIndices[i], trainIndices[j] = trainIndices[j], trainIndices[i]
	})
	rng.Shuffle(len(testIndices), func(i, j int) {
		testIndices[i], testIndices[j] = testIndices[j], testIndices[i]
	})

	XTrain, yTrain := gather(X, y, trainIndices)
	XTest, yTest := gather(X, y, testIndices)
	return XTrain, XTest, yTrain, yTest, nil
}

func gather(X [][]float64, y []int, indices []int) ([][]float64, []int) {
	outX := make([][]float64, len(indices))
	outY := make([]int, len(indices))
	for i, idx := range indices {
		row := make([]float64, len(X[idx]))
		copy(row, X[idx])
		outX[i] = row
		outY[i] = y[idx]
	}
	return outX, outY
}
