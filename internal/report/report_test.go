package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/evaluation"
)

func sampleTable() *Table {
	return &Table{Rows: []Row{
		{Label: "Diag: ASD", Metrics: &evaluation.MetricReport{ROCAUC: 0.82, Recall: 0.7}, PositiveExamples: 40, CVScore: 0.84, CVScoreSD: 0.02},
		{Label: "Diag: ADHD-Combined Type", Metrics: &evaluation.MetricReport{ROCAUC: 0.91, Recall: 0.6}, PositiveExamples: 120, CVScore: 0.9, CVScoreSD: 0.01},
		{Label: "Diag: Specific Phobia", Metrics: &evaluation.MetricReport{ROCAUC: 0.77, Recall: 0.9}, PositiveExamples: 25, CVScore: 0.8, CVScoreSD: 0.03},
	}}
}

func TestSortByROCAUC(t *testing.T) {
	table := sampleTable()
	table.SortBy("ROC AUC")

	assert.Equal(t, "Diag: ADHD-Combined Type", table.Rows[0].Label)
	assert.Equal(t, "Diag: ASD", table.Rows[1].Label)
	assert.Equal(t, "Diag: Specific Phobia", table.Rows[2].Label)
}

func TestSortByCVColumns(t *testing.T) {
	table := sampleTable()
	table.SortBy("ROC AUC Mean CV - SD")

	assert.Equal(t, "Diag: ADHD-Combined Type", table.Rows[0].Label)
	assert.InDelta(t, 0.89, table.Rows[0].ScoreMinusSD(), 1e-12)
}

func TestSortByUnknownKeepsOrder(t *testing.T) {
	table := sampleTable()
	before := []string{table.Rows[0].Label, table.Rows[1].Label, table.Rows[2].Label}

	table.SortBy("No Such Metric")

	after := []string{table.Rows[0].Label, table.Rows[1].Label, table.Rows[2].Label}
	assert.Equal(t, before, after)
}

func TestWriteCSV(t *testing.T) {
	table := sampleTable()
	table.SortBy("ROC AUC")

	path := filepath.Join(t.TempDir(), "reports", "performance.csv")
	require.NoError(t, table.WriteCSV(path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	header := records[0]
	assert.Equal(t, "Diag", header[0])
	assert.Contains(t, header, "Recall (Sensitivity)")
	assert.Contains(t, header, "# of Positive Examples")
	assert.Equal(t, "ROC AUC Mean CV - SD", header[len(header)-1])

	assert.Equal(t, "Diag: ADHD-Combined Type", records[1][0])
	assert.Equal(t, "120", records[1][len(header)-4])
}

func TestWriteBestClassifiersCSV(t *testing.T) {
	rows := []BestClassifierRow{
		{Label: "Diag: ASD", ModelType: "logisticregression", BestScore: 0.9, BestScoreSD: 0.01, PositiveExamples: 40},
	}

	path := filepath.Join(t.TempDir(), "best-classifiers.csv")
	require.NoError(t, WriteBestClassifiersCSV(path, rows))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)

	assert.Contains(t, content, "Diag,Model type,Best score,SD of best score,Score - SD,Number of positive examples")
	assert.Contains(t, content, "logisticregression")
	assert.Contains(t, content, "0.89")
}

func TestWellPerforming(t *testing.T) {
	scores := map[string]float64{
		"Diag: ASD":                0.85,
		"Diag: ADHD-Combined Type": 0.9,
		"Diag: Specific Phobia":    0.79,
		"Diag: Social Anxiety":     0.84,
		"Diag: Without Stored Sd":  0.95,
	}
	sds := map[string]float64{
		"Diag: ASD":                0.01,
		"Diag: ADHD-Combined Type": 0.02,
		"Diag: Specific Phobia":    0.01,
		"Diag: Social Anxiety":     0.05,
	}

	kept := WellPerforming(scores, sds, 0.8, 0.02)

	assert.Equal(t, []string{"Diag: ADHD-Combined Type", "Diag: ASD"}, kept)
}

func TestExportCoefficients(t *testing.T) {
	dir := t.TempDir()

	path, err := ExportCoefficients(dir, "Diag: ADHD-Combined Type",
		[]string{"SCQ_Total", "ASSQ_Total", "ARI_P_Total"},
		[]float64{0.12345, 0, -1.5})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "Diag_ADHD-Combined_Type_coefficients.csv"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")

	// Header, then non-zero coefficients sorted descending.
	require.Len(t, lines, 3)
	assert.Equal(t, "Feature,Coefficient", lines[0])
	assert.Equal(t, "SCQ_Total,0.123", lines[1])
	assert.Equal(t, "ARI_P_Total,-1.5", lines[2])
}

func TestExportCoefficientsLengthMismatch(t *testing.T) {
	_, err := ExportCoefficients(t.TempDir(), "Diag: ASD", []string{"a"}, []float64{1, 2})
	assert.Error(t, err)
}

func TestWriteFeatureSubsetsCSV(t *testing.T) {
	dir := t.TempDir()
	subsets := map[int][]string{
		1: {"SCQ_Total"},
		2: {"SCQ_Total", "ASSQ_Total"},
	}

	path, err := WriteFeatureSubsetsCSV(dir, "Diag: ASD", subsets)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Diag_ASD_feature-subsets.csv"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")

	require.Len(t, lines, 3)
	assert.Equal(t, "Number of features,Features", lines[0])
	assert.Equal(t, "1,SCQ_Total", lines[1])
	assert.Equal(t, "2,SCQ_Total;ASSQ_Total", lines[2])
}

func TestSanitizeLabel(t *testing.T) {
	assert.Equal(t, "Diag_ADHD-Combined_Type", SanitizeLabel("Diag: ADHD-Combined Type"))
	assert.Equal(t, "Diag_Other_Specified_Disorder", SanitizeLabel("Diag: Other (Specified) Disorder"))
}
