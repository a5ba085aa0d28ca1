package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/evaluation"
)

// Row is one label's entry in the performance leaderboard: the full metric
// vector plus search provenance.
type Row struct {
	Label            string
	Metrics          *evaluation.MetricReport
	PositiveExamples int
	CVScore          float64
	CVScoreSD        float64
}

func (r Row) ScoreMinusSD() float64 {
	return r.CVScore - r.CVScoreSD
}

// Table aggregates rows across labels and renders the leaderboard.
type Table struct {
	Rows []Row
}

// SortBy orders rows by a metric column, descending. Besides the metric
// names of the report, the three CV provenance columns are sortable too.
// Unknown names leave the order untouched.
func (t *Table) SortBy(name string) {
	value := func(r Row) (float64, bool) {
		switch name {
		case "ROC AUC Mean CV":
			return r.CVScore, true
		case "ROC AUC SD CV":
			return r.CVScoreSD, true
		case "ROC AUC Mean CV - SD":
			return r.ScoreMinusSD(), true
		}
		return r.Metrics.ByName(name)
	}

	sort.SliceStable(t.Rows, func(i, j int) bool {
		vi, oki := value(t.Rows[i])
		vj, okj := value(t.Rows[j])
		if !oki || !okj {
			return false
		}
		return vi > vj
	})
}

// WriteCSV renders one row per label with every metric, the positive-example
// count and the joined CV columns.
func (t *Table) WriteCSV(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := append([]string{"Diag"}, evaluation.MetricNames()...)
	header = append(header, "# of Positive Examples", "ROC AUC Mean CV", "ROC AUC SD CV", "ROC AUC Mean CV - SD")
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, row := range t.Rows {
		record := []string{row.Label}
		for _, v := range row.Metrics.Values() {
			record = append(record, formatFloat(v))
		}
		record = append(record,
			strconv.Itoa(row.PositiveExamples),
			formatFloat(row.CVScore),
			formatFloat(row.CVScoreSD),
			formatFloat(row.ScoreMinusSD()),
		)
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

// BestClassifierRow summarizes one label's search outcome.
type BestClassifierRow struct {
	Label            string
	ModelType        string
	BestScore        float64
	BestScoreSD      float64
	PositiveExamples int
}

// WriteBestClassifiersCSV renders the per-label search summary, including the
// pessimistic Score - SD column.
func WriteBestClassifiersCSV(filename string, rows []BestClassifierRow) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Diag", "Model type", "Best score", "SD of best score", "Score - SD", "Number of positive examples"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.Label,
			row.ModelType,
			formatFloat(row.BestScore),
			formatFloat(row.BestScoreSD),
			formatFloat(row.BestScore - row.BestScoreSD),
			strconv.Itoa(row.PositiveExamples),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

// WellPerforming returns the labels whose cross-validated score clears
// minCVAUC and whose score SD stays within maxCVSD. This is the gate deciding
// which labels get production threshold fitting.
func WellPerforming(scores, sds map[string]float64, minCVAUC, maxCVSD float64) []string {
	var labels []string
	for label, score := range scores {
		sd, ok := sds[label]
		if !ok {
			continue
		}
		if score >= minCVAUC && sd <= maxCVSD {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
