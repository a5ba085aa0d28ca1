package models

import (
	"fmt"
	"math"
	"sort"
)

type TreeNode struct {
	IsLeaf           bool
	Feature          int
	Threshold        float64
	Left             *TreeNode
	Right            *TreeNode
	Samples          int
	PositiveFraction float64
}

type DecisionTree struct {
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxLeafNodes    int
	Criterion       string
	Balanced        bool

	Root    *TreeNode
	Weights [2]float64

	leaves int
}

func NewDecisionTree(maxDepth, minSamplesSplit, minSamplesLeaf, maxLeafNodes int, criterion string, balanced bool) *DecisionTree {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	if minSamplesSplit < 2 {
		minSamplesSplit = 2
	}
	if minSamplesLeaf < 1 {
		minSamplesLeaf = 1
	}
	if criterion == "" {
		criterion = "gini"
	}

	return &DecisionTree{
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		MinSamplesLeaf:  minSamplesLeaf,
		MaxLeafNodes:    maxLeafNodes,
		Criterion:       criterion,
		Balanced:        balanced,
	}
}

func (dt *DecisionTree) Name() string {
	return "decisiontree"
}

func (dt *DecisionTree) Params() map[string]any {
	return map[string]any{
		"max_depth":         dt.MaxDepth,
		"min_samples_split": dt.MinSamplesSplit,
		"min_samples_leaf":  dt.MinSamplesLeaf,
		"max_leaf_nodes":    dt.MaxLeafNodes,
		"criterion":         dt.Criterion,
		"class_weight":      classWeightName(dt.Balanced),
	}
}

func (dt *DecisionTree) Clone() Estimator {
	return NewDecisionTree(dt.MaxDepth, dt.MinSamplesSplit, dt.MinSamplesLeaf, dt.MaxLeafNodes, dt.Criterion, dt.Balanced)
}

func (dt *DecisionTree) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("invalid training data: %d samples, %d labels", len(X), len(y))
	}

	dt.Weights = ClassWeights(y, dt.Balanced)
	dt.leaves = 1
	dt.Root = dt.buildTree(X, y, 0)
	return nil
}

func (dt *DecisionTree) buildTree(X [][]float64, y []int, depth int) *TreeNode {
	node := &TreeNode{
		Samples:          len(y),
		PositiveFraction: dt.weightedPositiveFraction(y),
	}

	if depth >= dt.MaxDepth ||
		len(y) < dt.MinSamplesSplit ||
		isPure(y) ||
		(dt.MaxLeafNodes > 0 && dt.leaves >= dt.MaxLeafNodes) {
		node.IsLeaf = true
		return node
	}

	feature, threshold, decrease := dt.findBestSplit(X, y)
	if decrease <= 1e-7 {
		node.IsLeaf = true
		return node
	}

	leftIndices, rightIndices := partitionIndices(X, feature, threshold)
	if len(leftIndices) < dt.MinSamplesLeaf || len(rightIndices) < dt.MinSamplesLeaf {
		node.IsLeaf = true
		return node
	}

	node.Feature = feature
	node.Threshold = threshold
	dt.leaves++

	XLeft, yLeft := selectRows(X, y, leftIndices)
	XRight, yRight := selectRows(X, y, rightIndices)
	node.Left = dt.buildTree(XLeft, yLeft, depth+1)
	node.Right = dt.buildTree(XRight, yRight, depth+1)
	return node
}

// findBestSplit scans each feature in sorted order, tracking weighted class
// mass on both sides of every candidate cut.
func (dt *DecisionTree) findBestSplit(X [][]float64, y []int) (int, float64, float64) {
	bestFeature := -1
	bestThreshold := 0.0
	bestDecrease := 0.0

	totalPos, totalNeg := dt.weightedCounts(y)
	parentImpurity := dt.impurity(totalPos, totalNeg)
	totalMass := totalPos + totalNeg

	type valueLabel struct {
		value float64
		label int
	}
	pairs := make([]valueLabel, len(y))

	for feature := range X[0] {
		for i := range X {
			pairs[i] = valueLabel{value: X[i][feature], label: y[i]}
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].value < pairs[j].value })

		leftPos, leftNeg := 0.0, 0.0
		for i := 0; i < len(pairs)-1; i++ {
			if pairs[i].label == 1 {
				leftPos += dt.Weights[1]
			} else {
				leftNeg += dt.Weights[0]
			}

			if pairs[i].value == pairs[i+1].value {
				continue
			}
			if i+1 < dt.MinSamplesLeaf || len(pairs)-i-1 < dt.MinSamplesLeaf {
				continue
			}

			rightPos := totalPos - leftPos
			rightNeg := totalNeg - leftNeg
			leftMass := leftPos + leftNeg
			rightMass := rightPos + rightNeg

			weighted := (leftMass*dt.impurity(leftPos, leftNeg) + rightMass*dt.impurity(rightPos, rightNeg)) / totalMass
			decrease := parentImpurity - weighted
			if decrease > bestDecrease {
				bestDecrease = decrease
				bestFeature = feature
				bestThreshold = (pairs[i].value + pairs[i+1].value) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestDecrease
}

func (dt *DecisionTree) impurity(pos, neg float64) float64 {
	total := pos + neg
	if total == 0 {
		return 0
	}
	p := pos / total
	q := neg / total

	if dt.Criterion == "entropy" {
		impurity := 0.0
		if p > 0 {
			impurity -= p * math.Log2(p)
		}
		if q > 0 {
			impurity -= q * math.Log2(q)
		}
		return impurity
	}
	return 1 - p*p - q*q
}

func (dt *DecisionTree) weightedCounts(y []int) (pos, neg float64) {
	for _, label := range y {
		if label == 1 {
			pos += dt.Weights[1]
		} else {
			neg += dt.Weights[0]
		}
	}
	return pos, neg
}

func (dt *DecisionTree) weightedPositiveFraction(y []int) float64 {
	pos, neg := dt.weightedCounts(y)
	if pos+neg == 0 {
		return 0
	}
	return pos / (pos + neg)
}

func (dt *DecisionTree) PredictProba(X [][]float64) []float64 {
	proba := make([]float64, len(X))
	for i, sample := range X {
		proba[i] = dt.predictSample(sample, dt.Root)
	}
	return proba
}

func (dt *DecisionTree) predictSample(sample []float64, node *TreeNode) float64 {
	if node.IsLeaf {
		return node.PositiveFraction
	}
	if sample[node.Feature] < node.Threshold {
		return dt.predictSample(sample, node.Left)
	}
	return dt.predictSample(sample, node.Right)
}

func isPure(y []int) bool {
	if len(y) == 0 {
		return true
	}
	first := y[0]
	for _, label := range y {
		if label != first {
			return false
		}
	}
	return true
}

func partitionIndices(X [][]float64, feature int, threshold float64) ([]int, []int) {
	var left, right []int
	for i, sample := range X {
		if sample[feature] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

func selectRows(X [][]float64, y []int, indices []int) ([][]float64, []int) {
	outX := make([][]float64, len(indices))
	outY := make([]int, len(indices))
	for i, idx := range indices {
		outX[i] = X[idx]
		outY[i] = y[idx]
	}
	return outX, outY
}

func classWeightName(balanced bool) string {
	if balanced {
		return "balanced"
	}
	return "none"
}
