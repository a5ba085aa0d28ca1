package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyIsValid(t *testing.T) {
	policy := DefaultPolicy()
	require.NoError(t, policy.Validate())

	assert.Equal(t, "Diag: ", policy.LabelPrefix)
	assert.Equal(t, "New Diag: ", policy.DerivedPrefix)
	assert.Contains(t, policy.ExcludedPrefixes, "WIAT")
	assert.Contains(t, policy.ExcludedPrefixes, "WISC")
	assert.Contains(t, policy.ExcludedColumns, "WHODAS_P,WHODAS_P_Total")
}

func TestBaseName(t *testing.T) {
	policy := DefaultPolicy()

	base, ok := policy.BaseName("Diag: ADHD-Combined Type")
	require.True(t, ok)
	assert.Equal(t, "ADHD-Combined Type", base)

	base, ok = policy.BaseName("New Diag: ADHD-Combined Type")
	require.True(t, ok)
	assert.Equal(t, "ADHD-Combined Type", base)

	_, ok = policy.BaseName("SCQ_Total")
	assert.False(t, ok)
}

func TestCounterpartColumns(t *testing.T) {
	policy := DefaultPolicy()

	cols, err := policy.CounterpartColumns("Diag: ASD")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Diag: ASD", "New Diag: ASD"}, cols)

	_, err = policy.CounterpartColumns("SCQ_Total")
	var conflictErr *LeakageColumnConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

func TestPairedColumnsBothDirections(t *testing.T) {
	policy := DefaultPolicy()

	cols, err := policy.PairedColumns("Diag: Intellectual Disability-Mild")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"Diag: Borderline Intellectual Functioning",
		"New Diag: Borderline Intellectual Functioning",
	}, cols)

	cols, err = policy.PairedColumns("Diag: Borderline Intellectual Functioning")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"Diag: Intellectual Disability-Mild",
		"New Diag: Intellectual Disability-Mild",
	}, cols)

	cols, err = policy.PairedColumns("Diag: ADHD-Combined Type")
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestLoadPolicy(t *testing.T) {
	content := `version: 2
label_prefix: "Diag: "
derived_prefix: "New Diag: "
no_diagnosis_column: "Diag: No Diagnosis Given"
excluded_columns:
  - "CIS_P,CIS_P_Score"
excluded_prefixes:
  - WIAT
exclusion_pairs:
  - a: "Intellectual Disability-Mild"
    b: "Borderline Intellectual Functioning"
`
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	policy, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, 2, policy.Version)
	assert.Equal(t, []string{"WIAT"}, policy.ExcludedPrefixes)
	require.Len(t, policy.ExclusionPairs, 1)
	assert.Equal(t, "Intellectual Disability-Mild", policy.ExclusionPairs[0].A)
}

func TestLoadPolicyRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("label_prefix: \"Diag: \"\nderived_prefix: \"Diag: \"\n"), 0o644))

	_, err := LoadPolicy(path)
	assert.Error(t, err)
}
