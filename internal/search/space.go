package search

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/models"
)

type ParamKind int

const (
	// IntGrid draws from a pre-sampled grid of integers, 30 values per
	// dimension, mirroring how the search spaces were originally laid out.
	IntGrid ParamKind = iota
	LogUniform
	Uniform
	Choice
)

type Param struct {
	Name    string
	Kind    ParamKind
	Min     float64
	Max     float64
	Choices []any
}

func (p Param) Sample(rng *rand.Rand) any {
	switch p.Kind {
	case LogUniform:
		logDist := distuv.Uniform{Min: math.Log(p.Min), Max: math.Log(p.Max), Src: rng}
		return math.Exp(logDist.Rand())
	case Uniform:
		return distuv.Uniform{Min: p.Min, Max: p.Max, Src: rng}.Rand()
	default:
		return p.Choices[rng.Intn(len(p.Choices))]
	}
}

// Family binds a model family's name, its hyperparameter space, and its
// estimator constructor. Adding a family means adding a row here; the search
// loop itself never branches on family names.
type Family struct {
	Name  string
	Space []Param
	Build func(params map[string]any, seed int64) models.Estimator
}

const gridSize = 30

// Families returns the four searched model families. The integer grids are
// drawn once per call from the given seed, so a run's search space is fixed
// up front.
func Families(seed int64) []Family {
	rng := rand.New(rand.NewSource(uint64(seed)))

	classWeights := []any{"balanced", "none"}
	criteria := []any{"gini", "entropy"}

	return []Family{
		{
			Name: "decisiontree",
			Space: []Param{
				intGrid("min_samples_split", 2, 20, rng),
				intGrid("max_depth", 1, 30, rng),
				intGrid("min_samples_leaf", 1, 20, rng),
				intGrid("max_leaf_nodes", 2, 50, rng),
				{Name: "criterion", Kind: Choice, Choices: criteria},
				{Name: "class_weight", Kind: Choice, Choices: classWeights},
			},
			Build: func(p map[string]any, _ int64) models.Estimator {
				return models.NewDecisionTree(
					asInt(p["max_depth"]),
					asInt(p["min_samples_split"]),
					asInt(p["min_samples_leaf"]),
					asInt(p["max_leaf_nodes"]),
					asString(p["criterion"]),
					isBalanced(p["class_weight"]),
				)
			},
		},
		{
			Name: "randomforest",
			Space: []Param{
				intGrid("max_depth", 5, 150, rng),
				intGrid("min_samples_split", 2, 50, rng),
				intGridSized("n_estimators", 50, 400, 10, rng),
				intGrid("min_samples_leaf", 1, 20, rng),
				{Name: "max_features", Kind: Choice, Choices: []any{"sqrt", "log2", "0.25", "0.5", "0.75", "1.0"}},
				{Name: "criterion", Kind: Choice, Choices: criteria},
				{Name: "class_weight", Kind: Choice, Choices: classWeights},
			},
			Build: func(p map[string]any, seed int64) models.Estimator {
				return models.NewRandomForest(
					asInt(p["n_estimators"]),
					asInt(p["max_depth"]),
					asInt(p["min_samples_split"]),
					asInt(p["min_samples_leaf"]),
					asString(p["max_features"]),
					asString(p["criterion"]),
					isBalanced(p["class_weight"]),
					seed,
				)
			},
		},
		{
			Name: "svc",
			Space: []Param{
				{Name: "C", Kind: LogUniform, Min: 1e-3, Max: 1e2},
				{Name: "gamma", Kind: LogUniform, Min: 1e-3, Max: 1e2},
				{Name: "degree", Kind: Uniform, Min: 2, Max: 5},
				{Name: "kernel", Kind: Choice, Choices: []any{"linear", "poly", "rbf", "sigmoid"}},
				{Name: "class_weight", Kind: Choice, Choices: classWeights},
			},
			Build: func(p map[string]any, seed int64) models.Estimator {
				return models.NewKernelSVM(
					asFloat(p["C"]),
					asFloat(p["gamma"]),
					asInt(p["degree"]),
					asString(p["kernel"]),
					isBalanced(p["class_weight"]),
					seed,
				)
			},
		},
		{
			Name: "logisticregression",
			Space: []Param{
				{Name: "C", Kind: LogUniform, Min: 1e-5, Max: 1e2},
				{Name: "penalty", Kind: Choice, Choices: []any{"l1", "l2", "elasticnet"}},
				{Name: "class_weight", Kind: Choice, Choices: classWeights},
				{Name: "l1_ratio", Kind: LogUniform, Min: 0.5, Max: 1},
			},
			Build: func(p map[string]any, _ int64) models.Estimator {
				return models.NewLogisticRegression(
					asFloat(p["C"]),
					asString(p["penalty"]),
					asFloat(p["l1_ratio"]),
					isBalanced(p["class_weight"]),
				)
			},
		},
	}
}

// SampleParams draws one configuration from a family's space.
func (f Family) SampleParams(rng *rand.Rand) map[string]any {
	params := make(map[string]any, len(f.Space))
	for _, p := range f.Space {
		params[p.Name] = p.Sample(rng)
	}
	return params
}

func intGrid(name string, low, high int, rng *rand.Rand) Param {
	return intGridSized(name, low, high, gridSize, rng)
}

func intGridSized(name string, low, high, size int, rng *rand.Rand) Param {
	choices := make([]any, size)
	for i := range choices {
		choices[i] = low + rng.Intn(high-low)
	}
	return Param{Name: name, Kind: IntGrid, Choices: choices}
}

func asInt(v any) int {
	switch value := v.(type) {
	case int:
		return value
	case float64:
		return int(value)
	default:
		return 0
	}
}

func asFloat(v any) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case int:
		return float64(value)
	default:
		return 0
	}
}

func asString(v any) string {
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return s
}

func isBalanced(v any) bool {
	return asString(v) == "balanced"
}
