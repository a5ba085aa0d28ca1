package search

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/exp/rand"

	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/pipeline"
)

// Result is the outcome of a full search: the winning family's pipeline
// refitted on the whole training set, with its cross-validated score.
type Result struct {
	FamilyName string
	Pipeline   *pipeline.Pipeline
	CVScore    float64
	CVScoreSD  float64
	Params     map[string]any
}

type familyBest struct {
	name   string
	params map[string]any
	score  float64
	sd     float64
	valid  bool
}

// Engine runs randomized hyperparameter search over every model family under
// stratified k-fold cross-validation, scoring by ROC-AUC.
type Engine struct {
	Iterations int
	Folds      int
	Seed       int64
	Workers    int
	Logger     *slog.Logger
}

func NewEngine(seed int64) *Engine {
	return &Engine{
		Iterations: 100,
		Folds:      3,
		Seed:       seed,
		Workers:    runtime.GOMAXPROCS(0),
		Logger:     slog.Default(),
	}
}

// Search evaluates every family and picks the best by mean CV score. When the
// logistic family scores within costMargin of the winner it is preferred
// anyway: it is cheaper to run and its coefficients are interpretable. A zero
// margin disables the preference. The returned pipeline is refitted on the
// full training set, with probability calibration applied where the family
// needs it.
func (e *Engine) Search(X [][]float64, y []int, costMargin float64) (*Result, error) {
	families := Families(e.Seed)

	bests := make([]familyBest, len(families))
	for i, family := range families {
		bests[i] = e.searchFamily(family, X, y, int64(i))
		if bests[i].valid {
			e.Logger.Info("family search finished",
				"family", bests[i].name,
				"cv_auc", bests[i].score,
				"cv_auc_sd", bests[i].sd)
		} else {
			e.Logger.Warn("family produced no scorable configuration", "family", family.Name)
		}
	}

	chosen := -1
	for i, best := range bests {
		if !best.valid {
			continue
		}
		if chosen < 0 || best.score > bests[chosen].score {
			chosen = i
		}
	}
	if chosen < 0 {
		return nil, fmt.Errorf("no model family produced a scorable configuration")
	}

	if costMargin > 0 && bests[chosen].name != "logisticregression" {
		for i, best := range bests {
			if best.valid && best.name == "logisticregression" && bests[chosen].score-best.score <= costMargin {
				e.Logger.Info("preferring logistic regression within cost margin",
					"best_family", bests[chosen].name,
					"best_cv_auc", bests[chosen].score,
					"logreg_cv_auc", best.score,
					"cost_margin", costMargin)
				chosen = i
				break
			}
		}
	}

	winner := bests[chosen]
	estimator := families[chosen].Build(winner.params, e.Seed)
	fitted := pipeline.New(estimator)
	if err := fitted.Fit(X, y); err != nil {
		return nil, fmt.Errorf("refit of winning %s configuration: %w", winner.name, err)
	}
	if err := fitted.CalibrateProbability(X, y); err != nil {
		return nil, fmt.Errorf("probability calibration of %s: %w", winner.name, err)
	}

	return &Result{
		FamilyName: winner.name,
		Pipeline:   fitted,
		CVScore:    winner.score,
		CVScoreSD:  winner.sd,
		Params:     winner.params,
	}, nil
}

// searchFamily samples configurations up front, then scores them on a worker
// pool. A failing trial is dropped, never fatal to the family.
func (e *Engine) searchFamily(family Family, X [][]float64, y []int, familyIndex int64) familyBest {
	rng := rand.New(rand.NewSource(uint64(e.Seed + familyIndex)))
	configs := make([]map[string]any, e.Iterations)
	for i := range configs {
		configs[i] = family.SampleParams(rng)
	}

	type trial struct {
		score float64
		sd    float64
		valid bool
	}
	trials := make([]trial, len(configs))

	workers := e.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(configs) {
		workers = len(configs)
	}

	jobs := make(chan int, len(configs))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				estimator := family.Build(configs[i], e.Seed)
				template := pipeline.New(estimator)
				mean, sd, err := CrossValidateAUC(template, X, y, e.Folds, e.Seed)
				if err != nil {
					e.Logger.Debug("trial excluded", "family", family.Name, "trial", i, "error", err)
					continue
				}
				trials[i] = trial{score: mean, sd: sd, valid: true}
			}
		}()
	}
	for i := range configs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	best := familyBest{name: family.Name}
	for i, t := range trials {
		if !t.valid {
			continue
		}
		if !best.valid || t.score > best.score {
			best = familyBest{name: family.Name, params: configs[i], score: t.score, sd: t.sd, valid: true}
		}
	}
	return best
}
