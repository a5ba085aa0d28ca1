package data

import (
	"fmt"
	"math"
)

type DataValidator struct{}

func NewDataValidator() *DataValidator {
	return &DataValidator{}
}

// ValidateDataset checks shape consistency. NaN cells are allowed here since
// the pipeline imputes them before fitting.
func (dv *DataValidator) ValidateDataset(X [][]float64, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("dataset is empty")
	}

	if len(X) != len(y) {
		return fmt.Errorf("feature matrix and labels have different lengths: %d vs %d", len(X), len(y))
	}

	nFeatures := len(X[0])
	if nFeatures == 0 {
		return fmt.Errorf("features cannot be empty")
	}

	for i, sample := range X {
		if len(sample) != nFeatures {
			return fmt.Errorf("inconsistent feature count at sample %d: expected %d, got %d", i, nFeatures, len(sample))
		}
	}

	return nil
}

func (dv *DataValidator) ValidateLabels(y []int) error {
	if len(y) == 0 {
		return fmt.Errorf("labels are empty")
	}

	for i, label := range y {
		if label != 0 && label != 1 {
			return fmt.Errorf("label at sample %d is %d, expected 0 or 1", i, label)
		}
	}

	classCount := make(map[int]int)
	for _, label := range y {
		classCount[label]++
	}

	if len(classCount) < 2 {
		return fmt.Errorf("dataset must have both classes, found %d", len(classCount))
	}

	return nil
}

// MissingFraction reports the share of NaN cells per feature column.
func (dv *DataValidator) MissingFraction(X [][]float64) []float64 {
	if len(X) == 0 {
		return nil
	}
	fractions := make([]float64, len(X[0]))
	for _, row := range X {
		for j, v := range row {
			if math.IsNaN(v) {
				fractions[j]++
			}
		}
	}
	for j := range fractions {
		fractions[j] /= float64(len(X))
	}
	return fractions
}
