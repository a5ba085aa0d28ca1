package dataset

import (
	"fmt"
	"strings"

	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/data"
)

// SplitBundle is the full partition for one target diagnosis: a held-out test
// split plus a nested train-train/validation split for threshold tuning.
// Validation and test are disjoint; train-train and validation together make
// the train split.
type SplitBundle struct {
	Label        string
	FeatureNames []string

	XTrain      [][]float64
	XTest       [][]float64
	XTrainTrain [][]float64
	XVal        [][]float64

	YTrain      []int
	YTest       []int
	YTrainTrain []int
	YVal        []int
}

// PositiveExamples counts positives over the whole partition (train + test).
func (b *SplitBundle) PositiveExamples() int {
	count := 0
	for _, y := range b.YTrain {
		count += y
	}
	for _, y := range b.YTest {
		count += y
	}
	return count
}

// Partitioner builds leakage-free per-diagnosis datasets according to a
// LeakagePolicy, then splits them stratified with a fixed seed.
type Partitioner struct {
	Policy       *LeakagePolicy
	TestFraction float64
	Seed         int64
}

func NewPartitioner(policy *LeakagePolicy, testFraction float64, seed int64) *Partitioner {
	return &Partitioner{Policy: policy, TestFraction: testFraction, Seed: seed}
}

// InputColumns selects the eligible feature columns for one target label.
// With otherDiagsAsInput the remaining consensus diagnoses stay in as
// predictors; without it the target is predicted from item-level features
// only. Either way the target, its cross-namespace counterpart, everything in
// the policy's exclusion lists, and the target's exclusion-pair partners are
// dropped.
func (p *Partitioner) InputColumns(table *data.Table, label string, otherDiagsAsInput bool) ([]string, error) {
	if !table.HasColumn(label) {
		return nil, fmt.Errorf("label %q not present in dataset", label)
	}

	counterparts, err := p.Policy.CounterpartColumns(label)
	if err != nil {
		return nil, err
	}
	partners, err := p.Policy.PairedColumns(label)
	if err != nil {
		return nil, err
	}

	dropExact := make(map[string]bool)
	for _, c := range p.Policy.ExcludedColumns {
		dropExact[c] = true
	}
	dropExact[p.Policy.NoDiagnosisCol] = true
	dropExact[label] = true
	for _, c := range counterparts {
		dropExact[c] = true
	}
	for _, c := range partners {
		dropExact[c] = true
	}

	var inputCols []string
	for _, name := range table.Columns {
		if dropExact[name] {
			continue
		}
		if hasAnyPrefix(name, p.Policy.ExcludedPrefixes) {
			continue
		}
		if strings.HasPrefix(name, p.Policy.DerivedPrefix) {
			continue
		}
		if !otherDiagsAsInput && strings.HasPrefix(name, p.Policy.LabelPrefix) {
			continue
		}
		inputCols = append(inputCols, name)
	}

	if len(inputCols) == 0 {
		return nil, &LeakageColumnConflictError{Label: label, Reason: "exclusion rules leave no input columns"}
	}
	return inputCols, nil
}

// Partition produces the SplitBundle for one target label. Both stages use
// the same fraction and the same fixed seed.
func (p *Partitioner) Partition(table *data.Table, label string, otherDiagsAsInput bool) (*SplitBundle, error) {
	inputCols, err := p.InputColumns(table, label, otherDiagsAsInput)
	if err != nil {
		return nil, err
	}

	X, err := table.Select(inputCols)
	if err != nil {
		return nil, err
	}
	y, err := table.BinaryColumn(label)
	if err != nil {
		return nil, err
	}

	validator := data.NewDataValidator()
	if err := validator.ValidateDataset(X, y); err != nil {
		return nil, fmt.Errorf("label %q: %w", label, err)
	}
	if err := validator.ValidateLabels(y); err != nil {
		return nil, fmt.Errorf("label %q: %w", label, err)
	}

	splitter := NewStratifiedSplitter(p.TestFraction, p.Seed)

	XTrain, XTest, yTrain, yTest, err := splitter.Split(X, y, "train/test")
	if err != nil {
		return nil, tagLabel(err, label)
	}
	XTrainTrain, XVal, yTrainTrain, yVal, err := splitter.Split(XTrain, yTrain, "train-train/validation")
	if err != nil {
		return nil, tagLabel(err, label)
	}

	return &SplitBundle{
		Label:        label,
		FeatureNames: inputCols,
		XTrain:       XTrain,
		XTest:        XTest,
		XTrainTrain:  XTrainTrain,
		XVal:         XVal,
		YTrain:       yTrain,
		YTest:        yTest,
		YTrainTrain:  yTrainTrain,
		YVal:         yVal,
	}, nil
}

func tagLabel(err error, label string) error {
	if balErr, ok := err.(*InsufficientClassBalanceError); ok {
		balErr.Label = label
		return balErr
	}
	return err
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
