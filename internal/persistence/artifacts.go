package persistence

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/pipeline"
)

const (
	classifiersFile = "best-classifiers.gob"
	scoresFile      = "scores-of-best-classifiers.gob"
	scoreSDsFile    = "sds-of-scores-of-best-classifiers.gob"
	thresholdsFile  = "best-thresholds.gob"
)

// ArtifactStore persists the per-label search outputs: fitted classifiers,
// their cross-validated scores and SDs, and the selected thresholds. A
// reloaded classifier must behave identically to the persisted one.
type ArtifactStore struct {
	Dir string
}

func NewArtifactStore(dir string) *ArtifactStore {
	pipeline.RegisterGobTypes()
	return &ArtifactStore{Dir: dir}
}

func (s *ArtifactStore) HasClassifiers() bool {
	_, err := os.Stat(filepath.Join(s.Dir, classifiersFile))
	return err == nil
}

func (s *ArtifactStore) SaveClassifiers(classifiers map[string]*pipeline.Pipeline) error {
	return s.save(classifiersFile, classifiers)
}

func (s *ArtifactStore) LoadClassifiers() (map[string]*pipeline.Pipeline, error) {
	classifiers := make(map[string]*pipeline.Pipeline)
	if err := s.load(classifiersFile, &classifiers); err != nil {
		return nil, err
	}
	return classifiers, nil
}

func (s *ArtifactStore) SaveScores(scores map[string]float64) error {
	return s.save(scoresFile, scores)
}

func (s *ArtifactStore) LoadScores() (map[string]float64, error) {
	scores := make(map[string]float64)
	if err := s.load(scoresFile, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

func (s *ArtifactStore) SaveScoreSDs(sds map[string]float64) error {
	return s.save(scoreSDsFile, sds)
}

func (s *ArtifactStore) LoadScoreSDs() (map[string]float64, error) {
	sds := make(map[string]float64)
	if err := s.load(scoreSDsFile, &sds); err != nil {
		return nil, err
	}
	return sds, nil
}

func (s *ArtifactStore) SaveThresholds(thresholds map[string]float64) error {
	return s.save(thresholdsFile, thresholds)
}

func (s *ArtifactStore) LoadThresholds() (map[string]float64, error) {
	thresholds := make(map[string]float64)
	if err := s.load(thresholdsFile, &thresholds); err != nil {
		return nil, err
	}
	return thresholds, nil
}

func (s *ArtifactStore) save(name string, value any) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact dir: %w", err)
	}

	file, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return fmt.Errorf("failed to create artifact %s: %w", name, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(value); err != nil {
		return fmt.Errorf("failed to encode artifact %s: %w", name, err)
	}
	return nil
}

func (s *ArtifactStore) load(name string, value any) error {
	file, err := os.Open(filepath.Join(s.Dir, name))
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", name, err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(value); err != nil {
		return fmt.Errorf("failed to decode artifact %s: %w", name, err)
	}
	return nil
}
