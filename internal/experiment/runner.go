package experiment

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/data"
	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/dataset"
	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/evaluation"
	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/models"
	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/persistence"
	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/pipeline"
	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/report"
	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/search"
)

// LabelFailure records one diagnosis the run could not handle. Failures never
// abort the experiment; the remaining labels keep going.
type LabelFailure struct {
	Label string
	Err   error
}

// Runner wires partitioning, model search, threshold fitting and reporting
// into the per-diagnosis experiment loop.
type Runner struct {
	Config Config
	Policy *dataset.LeakagePolicy
	Store  *persistence.ArtifactStore
	Logger *slog.Logger
}

func NewRunner(cfg Config, policy *dataset.LeakagePolicy, store *persistence.ArtifactStore) *Runner {
	return &Runner{
		Config: cfg,
		Policy: policy,
		Store:  store,
		Logger: slog.Default(),
	}
}

// CandidateLabels picks the consensus diagnosis columns with strictly more
// positive examples than the configured minimum. The no-diagnosis marker is
// never a candidate.
func (r *Runner) CandidateLabels(table *data.Table) ([]string, error) {
	var labels []string
	for _, name := range table.ColumnsWithPrefix(r.Policy.LabelPrefix) {
		if name == r.Policy.NoDiagnosisCol {
			continue
		}
		if strings.HasPrefix(name, r.Policy.DerivedPrefix) {
			continue
		}
		positives, err := table.PositiveCount(name)
		if err != nil {
			return nil, err
		}
		if positives > r.Config.MinPositiveExamples {
			labels = append(labels, name)
		}
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("no diagnosis column has more than %d positive examples", r.Config.MinPositiveExamples)
	}
	return labels, nil
}

// TrainOutcome carries everything the training phase produced.
type TrainOutcome struct {
	Classifiers map[string]*pipeline.Pipeline
	Scores      map[string]float64
	ScoreSDs    map[string]float64
	BestRows    []report.BestClassifierRow
	Failures    []LabelFailure
	FromCache   bool
}

// Train runs the model search for every candidate diagnosis and persists the
// winning classifiers with their cross-validated scores. With ModelsFromFile
// set and artifacts on disk, the search is skipped and the stored models are
// returned instead.
func (r *Runner) Train(table *data.Table) (*TrainOutcome, error) {
	if r.Config.ModelsFromFile && r.Store.HasClassifiers() {
		return r.loadTrained()
	}

	labels, err := r.CandidateLabels(table)
	if err != nil {
		return nil, err
	}

	partitioner := dataset.NewPartitioner(r.Policy, r.Config.SplitFraction, r.Config.Seed)

	outcome := &TrainOutcome{
		Classifiers: make(map[string]*pipeline.Pipeline),
		Scores:      make(map[string]float64),
		ScoreSDs:    make(map[string]float64),
	}

	for _, label := range labels {
		r.Logger.Info("training diagnosis model", "label", label)

		bundle, err := partitioner.Partition(table, label, r.Config.UseOtherDiagsAsInput)
		if err != nil {
			r.Logger.Warn("skipping diagnosis", "label", label, "error", err)
			outcome.Failures = append(outcome.Failures, LabelFailure{Label: label, Err: err})
			continue
		}

		validator := data.NewDataValidator()
		for i, fraction := range validator.MissingFraction(bundle.XTrain) {
			if fraction > 0.5 {
				r.Logger.Debug("feature is mostly missing",
					"label", label, "feature", bundle.FeatureNames[i], "missing", fraction)
			}
		}

		engine := search.NewEngine(r.Config.Seed)
		engine.Iterations = r.Config.SearchIterations
		engine.Folds = r.Config.CVFolds
		engine.Logger = r.Logger

		result, err := engine.Search(bundle.XTrain, bundle.YTrain, r.Config.CostMargin)
		if err != nil {
			r.Logger.Warn("search failed", "label", label, "error", err)
			outcome.Failures = append(outcome.Failures, LabelFailure{Label: label, Err: err})
			continue
		}

		outcome.Classifiers[label] = result.Pipeline
		outcome.Scores[label] = result.CVScore
		outcome.ScoreSDs[label] = result.CVScoreSD
		outcome.BestRows = append(outcome.BestRows, report.BestClassifierRow{
			Label:            label,
			ModelType:        result.FamilyName,
			BestScore:        result.CVScore,
			BestScoreSD:      result.CVScoreSD,
			PositiveExamples: bundle.PositiveExamples(),
		})

		r.Logger.Info("best classifier found",
			"label", label,
			"model", result.FamilyName,
			"cv_auc", result.CVScore,
			"cv_sd", result.CVScoreSD,
		)
	}

	if len(outcome.Classifiers) == 0 {
		return nil, fmt.Errorf("model search produced no classifiers (%d labels failed)", len(outcome.Failures))
	}

	if err := r.Store.SaveClassifiers(outcome.Classifiers); err != nil {
		return nil, err
	}
	if err := r.Store.SaveScores(outcome.Scores); err != nil {
		return nil, err
	}
	if err := r.Store.SaveScoreSDs(outcome.ScoreSDs); err != nil {
		return nil, err
	}

	return outcome, nil
}

func (r *Runner) loadTrained() (*TrainOutcome, error) {
	classifiers, err := r.Store.LoadClassifiers()
	if err != nil {
		return nil, err
	}
	scores, err := r.Store.LoadScores()
	if err != nil {
		return nil, err
	}
	sds, err := r.Store.LoadScoreSDs()
	if err != nil {
		return nil, err
	}
	r.Logger.Info("loaded classifiers from disk", "count", len(classifiers))
	return &TrainOutcome{
		Classifiers: classifiers,
		Scores:      scores,
		ScoreSDs:    sds,
		FromCache:   true,
	}, nil
}

// EvaluationResult carries the evaluation-phase leaderboard and thresholds.
type EvaluationResult struct {
	Validation     report.Table
	Test           *report.Table
	Thresholds     map[string]float64
	WellPerforming []string
	Failures       []LabelFailure
}

// Evaluate loads the trained classifiers, keeps only the well-performing
// ones, fits an operating threshold per diagnosis on held-out validation data
// and computes the metric vector. With UseTestSet the stored classifier (fit
// on the full train split) is also scored against the untouched test split.
// Logistic winners additionally get their coefficients exported under
// reportsDir.
func (r *Runner) Evaluate(table *data.Table, reportsDir string) (*EvaluationResult, error) {
	classifiers, err := r.Store.LoadClassifiers()
	if err != nil {
		return nil, err
	}
	scores, err := r.Store.LoadScores()
	if err != nil {
		return nil, err
	}
	sds, err := r.Store.LoadScoreSDs()
	if err != nil {
		return nil, err
	}

	kept := report.WellPerforming(scores, sds, r.Config.MinCVAUC, r.Config.MaxCVSD)
	if len(kept) == 0 {
		return nil, fmt.Errorf("no classifier meets auc >= %v with sd <= %v", r.Config.MinCVAUC, r.Config.MaxCVSD)
	}

	partitioner := dataset.NewPartitioner(r.Policy, r.Config.SplitFraction, r.Config.Seed)

	result := &EvaluationResult{
		Thresholds:     make(map[string]float64),
		WellPerforming: kept,
	}
	if r.Config.UseTestSet {
		result.Test = &report.Table{}
	}

	for _, label := range kept {
		trained, ok := classifiers[label]
		if !ok {
			result.Failures = append(result.Failures, LabelFailure{
				Label: label,
				Err:   fmt.Errorf("no stored classifier for %q", label),
			})
			continue
		}

		bundle, err := partitioner.Partition(table, label, r.Config.UseOtherDiagsAsInput)
		if err != nil {
			result.Failures = append(result.Failures, LabelFailure{Label: label, Err: err})
			continue
		}

		// The threshold must come from data the model never saw, so a
		// clone is refit on the inner train split before tuning on the
		// validation split.
		tuning := trained.Clone()
		if err := tuning.Fit(bundle.XTrainTrain, bundle.YTrainTrain); err != nil {
			result.Failures = append(result.Failures, LabelFailure{Label: label, Err: err})
			continue
		}

		threshold, err := evaluation.SelectThreshold(tuning, bundle.XVal, bundle.YVal)
		if err != nil {
			result.Failures = append(result.Failures, LabelFailure{Label: label, Err: err})
			continue
		}
		result.Thresholds[label] = threshold

		valMetrics, err := evaluation.Compute(tuning, threshold, bundle.XVal, bundle.YVal, r.Config.Beta)
		if err != nil {
			result.Failures = append(result.Failures, LabelFailure{Label: label, Err: err})
			continue
		}
		result.Validation.Rows = append(result.Validation.Rows, report.Row{
			Label:            label,
			Metrics:          valMetrics,
			PositiveExamples: bundle.PositiveExamples(),
			CVScore:          scores[label],
			CVScoreSD:        sds[label],
		})

		if r.Config.UseTestSet {
			testMetrics, err := evaluation.Compute(trained, threshold, bundle.XTest, bundle.YTest, r.Config.Beta)
			if err != nil {
				result.Failures = append(result.Failures, LabelFailure{Label: label, Err: err})
			} else {
				result.Test.Rows = append(result.Test.Rows, report.Row{
					Label:            label,
					Metrics:          testMetrics,
					PositiveExamples: bundle.PositiveExamples(),
					CVScore:          scores[label],
					CVScoreSD:        sds[label],
				})
			}
		}

		if reportsDir != "" {
			if err := r.exportCoefficients(reportsDir, label, trained, bundle.FeatureNames); err != nil {
				r.Logger.Warn("coefficient export failed", "label", label, "error", err)
			}
		}

		r.Logger.Info("diagnosis evaluated",
			"label", label,
			"threshold", threshold,
			"roc_auc", valMetrics.ROCAUC,
		)
	}

	if len(result.Validation.Rows) == 0 {
		return nil, fmt.Errorf("evaluation produced no results (%d labels failed)", len(result.Failures))
	}

	result.Validation.SortBy("ROC AUC")
	if result.Test != nil {
		result.Test.SortBy("ROC AUC")
	}

	if err := r.Store.SaveThresholds(result.Thresholds); err != nil {
		return nil, err
	}

	return result, nil
}

// LabelFeatureSubsets holds one label's nested forward-selection subsets and
// the file they were written to.
type LabelFeatureSubsets struct {
	Label   string
	Subsets map[int][]string
	File    string
}

// FeatureSelectionResult carries the feature-selection outcomes per label.
type FeatureSelectionResult struct {
	Selected []LabelFeatureSubsets
	Failures []LabelFailure
}

// SelectFeatures grows forward-selected feature subsets for every
// well-performing classifier and writes one CSV per label under reportsDir.
func (r *Runner) SelectFeatures(table *data.Table, reportsDir string, maxFeatures int) (*FeatureSelectionResult, error) {
	classifiers, err := r.Store.LoadClassifiers()
	if err != nil {
		return nil, err
	}
	scores, err := r.Store.LoadScores()
	if err != nil {
		return nil, err
	}
	sds, err := r.Store.LoadScoreSDs()
	if err != nil {
		return nil, err
	}

	kept := report.WellPerforming(scores, sds, r.Config.MinCVAUC, r.Config.MaxCVSD)
	if len(kept) == 0 {
		return nil, fmt.Errorf("no classifier meets auc >= %v with sd <= %v", r.Config.MinCVAUC, r.Config.MaxCVSD)
	}

	partitioner := dataset.NewPartitioner(r.Policy, r.Config.SplitFraction, r.Config.Seed)
	engine := search.NewEngine(r.Config.Seed)
	engine.Logger = r.Logger

	result := &FeatureSelectionResult{}
	for _, label := range kept {
		trained, ok := classifiers[label]
		if !ok {
			result.Failures = append(result.Failures, LabelFailure{
				Label: label,
				Err:   fmt.Errorf("no stored classifier for %q", label),
			})
			continue
		}

		bundle, err := partitioner.Partition(table, label, r.Config.UseOtherDiagsAsInput)
		if err != nil {
			result.Failures = append(result.Failures, LabelFailure{Label: label, Err: err})
			continue
		}

		limit := maxFeatures
		if limit < 1 || limit > len(bundle.FeatureNames) {
			limit = len(bundle.FeatureNames)
		}

		subsets, err := engine.SequentialForwardSelection(trained.Clone(),
			bundle.XTrain, bundle.YTrain, bundle.FeatureNames, limit)
		if err != nil {
			result.Failures = append(result.Failures, LabelFailure{Label: label, Err: err})
			continue
		}

		file, err := report.WriteFeatureSubsetsCSV(reportsDir, label, subsets)
		if err != nil {
			result.Failures = append(result.Failures, LabelFailure{Label: label, Err: err})
			continue
		}

		result.Selected = append(result.Selected, LabelFeatureSubsets{
			Label:   label,
			Subsets: subsets,
			File:    file,
		})
		r.Logger.Info("feature subsets selected", "label", label, "max_features", limit)
	}

	if len(result.Selected) == 0 {
		return nil, fmt.Errorf("feature selection produced no results (%d labels failed)", len(result.Failures))
	}
	return result, nil
}

func (r *Runner) exportCoefficients(dir, label string, p *pipeline.Pipeline, featureNames []string) error {
	linear, ok := p.Estimator.(models.Coefficients)
	if !ok {
		return nil
	}
	_, err := report.ExportCoefficients(dir, label, featureNames, linear.Coefficients())
	return err
}
