package pipeline

import (
	"encoding/gob"
	"fmt"

	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/models"
)

// Pipeline chains median imputation, standardization and an estimator. Every
// model family is searched and persisted wrapped in one of these, so fitted
// transforms always travel with the classifier.
type Pipeline struct {
	Imputer   *MedianImputer
	Scaler    *StandardScaler
	Estimator models.Estimator
	IsFitted  bool
}

func New(estimator models.Estimator) *Pipeline {
	return &Pipeline{
		Imputer:   NewMedianImputer(),
		Scaler:    NewStandardScaler(),
		Estimator: estimator,
	}
}

// FamilyName reports the estimator family, e.g. "logisticregression".
func (p *Pipeline) FamilyName() string {
	return p.Estimator.Name()
}

func (p *Pipeline) Params() map[string]any {
	return p.Estimator.Params()
}

// Clone returns a fresh unfitted pipeline with the same hyperparameters.
func (p *Pipeline) Clone() *Pipeline {
	return New(p.Estimator.Clone())
}

func (p *Pipeline) Fit(X [][]float64, y []int) error {
	if err := p.Imputer.Fit(X); err != nil {
		return fmt.Errorf("imputer fit: %w", err)
	}
	imputed, err := p.Imputer.Transform(X)
	if err != nil {
		return err
	}

	if err := p.Scaler.Fit(imputed); err != nil {
		return fmt.Errorf("scaler fit: %w", err)
	}
	scaled, err := p.Scaler.Transform(imputed)
	if err != nil {
		return err
	}

	if err := p.Estimator.Fit(scaled, y); err != nil {
		return fmt.Errorf("%s fit: %w", p.FamilyName(), err)
	}
	p.IsFitted = true
	return nil
}

func (p *Pipeline) transform(X [][]float64) ([][]float64, error) {
	imputed, err := p.Imputer.Transform(X)
	if err != nil {
		return nil, err
	}
	return p.Scaler.Transform(imputed)
}

// PredictProba returns the positive-class probability for each row.
func (p *Pipeline) PredictProba(X [][]float64) ([]float64, error) {
	if !p.IsFitted {
		return nil, fmt.Errorf("pipeline must be fitted before predict")
	}
	scaled, err := p.transform(X)
	if err != nil {
		return nil, err
	}
	return p.Estimator.PredictProba(scaled), nil
}

// CalibrateProbability runs the estimator's calibration, if it has one, on
// raw (untransformed) data. A no-op for estimators that are probabilistic
// from the start.
func (p *Pipeline) CalibrateProbability(X [][]float64, y []int) error {
	calibrator, ok := p.Estimator.(models.ProbabilityCalibrator)
	if !ok {
		return nil
	}
	scaled, err := p.transform(X)
	if err != nil {
		return err
	}
	return calibrator.CalibrateProbability(scaled, y)
}

// RegisterGobTypes registers every concrete estimator so fitted pipelines
// round-trip through gob.
func RegisterGobTypes() {
	gob.Register(&models.DecisionTree{})
	gob.Register(&models.RandomForest{})
	gob.Register(&models.KernelSVM{})
	gob.Register(&models.LogisticRegression{})
	gob.Register(&models.TreeNode{})
}
