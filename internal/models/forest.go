package models

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
)

type RandomForest struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     string
	Criterion       string
	Balanced        bool
	Seed            int64

	Trees          []*DecisionTree
	FeatureIndices [][]int

	Parallel   bool
	MaxWorkers int
}

func NewRandomForest(nEstimators, maxDepth, minSamplesSplit, minSamplesLeaf int, maxFeatures, criterion string, balanced bool, seed int64) *RandomForest {
	if nEstimators <= 0 {
		nEstimators = 100
	}
	if maxFeatures == "" {
		maxFeatures = "sqrt"
	}

	return &RandomForest{
		NEstimators:     nEstimators,
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		MinSamplesLeaf:  minSamplesLeaf,
		MaxFeatures:     maxFeatures,
		Criterion:       criterion,
		Balanced:        balanced,
		Seed:            seed,
		Parallel:        true,
		MaxWorkers:      runtime.GOMAXPROCS(0),
	}
}

func (rf *RandomForest) Name() string {
	return "randomforest"
}

func (rf *RandomForest) Params() map[string]any {
	return map[string]any{
		"n_estimators":      rf.NEstimators,
		"max_depth":         rf.MaxDepth,
		"min_samples_split": rf.MinSamplesSplit,
		"min_samples_leaf":  rf.MinSamplesLeaf,
		"max_features":      rf.MaxFeatures,
		"criterion":         rf.Criterion,
		"class_weight":      classWeightName(rf.Balanced),
	}
}

func (rf *RandomForest) Clone() Estimator {
	return NewRandomForest(rf.NEstimators, rf.MaxDepth, rf.MinSamplesSplit, rf.MinSamplesLeaf, rf.MaxFeatures, rf.Criterion, rf.Balanced, rf.Seed)
}

func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("invalid training data: %d samples, %d labels", len(X), len(y))
	}

	rf.Trees = make([]*DecisionTree, rf.NEstimators)
	rf.FeatureIndices = make([][]int, rf.NEstimators)

	if rf.Parallel {
		return rf.trainParallel(X, y)
	}
	return rf.trainSequential(X, y)
}

func (rf *RandomForest) trainParallel(X [][]float64, y []int) error {
	var wg sync.WaitGroup
	errors := make([]error, rf.NEstimators)

	workers := rf.MaxWorkers
	if workers > rf.NEstimators {
		workers = rf.NEstimators
	}

	jobs := make(chan int, rf.NEstimators)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				tree, features, err := rf.trainSingleTree(X, y, rf.Seed+int64(i))
				rf.Trees[i] = tree
				rf.FeatureIndices[i] = features
				errors[i] = err
			}
		}()
	}

	for i := 0; i < rf.NEstimators; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errors {
		if err != nil {
			return fmt.Errorf("tree %d training failed: %w", i, err)
		}
	}
	return nil
}

func (rf *RandomForest) trainSequential(X [][]float64, y []int) error {
	for i := 0; i < rf.NEstimators; i++ {
		tree, features, err := rf.trainSingleTree(X, y, rf.Seed+int64(i))
		if err != nil {
			return err
		}
		rf.Trees[i] = tree
		rf.FeatureIndices[i] = features
	}
	return nil
}

func (rf *RandomForest) trainSingleTree(X [][]float64, y []int, seed int64) (*DecisionTree, []int, error) {
	r := rand.New(rand.NewSource(seed))

	n := len(X)
	XBoot := make([][]float64, n)
	yBoot := make([]int, n)
	for i := 0; i < n; i++ {
		idx := r.Intn(n)
		XBoot[i] = X[idx]
		yBoot[i] = y[idx]
	}

	features := rf.selectRandomFeatures(len(X[0]), r)
	XSelected := make([][]float64, n)
	for i := range XBoot {
		XSelected[i] = make([]float64, len(features))
		for j, feat := range features {
			XSelected[i][j] = XBoot[i][feat]
		}
	}

	tree := NewDecisionTree(rf.MaxDepth, rf.MinSamplesSplit, rf.MinSamplesLeaf, 0, rf.Criterion, rf.Balanced)
	err := tree.Fit(XSelected, yBoot)
	return tree, features, err
}

func (rf *RandomForest) featureSubsetSize(nFeatures int) int {
	var size int
	switch rf.MaxFeatures {
	case "sqrt":
		size = int(math.Sqrt(float64(nFeatures)))
	case "log2":
		size = int(math.Log2(float64(nFeatures)))
	default:
		fraction := 1.0
		fmt.Sscanf(rf.MaxFeatures, "%f", &fraction)
		size = int(fraction * float64(nFeatures))
	}
	if size < 1 {
		size = 1
	}
	if size > nFeatures {
		size = nFeatures
	}
	return size
}

func (rf *RandomForest) selectRandomFeatures(nFeatures int, r *rand.Rand) []int {
	size := rf.featureSubsetSize(nFeatures)
	features := make([]int, nFeatures)
	for i := range features {
		features[i] = i
	}
	for i := 0; i < size; i++ {
		j := i + r.Intn(nFeatures-i)
		features[i], features[j] = features[j], features[i]
	}
	return features[:size]
}

// PredictProba averages the per-tree leaf probabilities.
func (rf *RandomForest) PredictProba(X [][]float64) []float64 {
	proba := make([]float64, len(X))
	if len(rf.Trees) == 0 {
		return proba
	}

	for i, sample := range X {
		sum := 0.0
		for j, tree := range rf.Trees {
			selected := make([]float64, len(rf.FeatureIndices[j]))
			for k, feat := range rf.FeatureIndices[j] {
				selected[k] = sample[feat]
			}
			sum += tree.predictSample(selected, tree.Root)
		}
		proba[i] = sum / float64(len(rf.Trees))
	}
	return proba
}
