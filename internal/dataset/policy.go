package dataset

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LeakagePolicy is the declarative exclusion table for feature selection.
// Diagnosis labels live in two parallel namespaces: the consensus columns
// (LabelPrefix) used for modeling and the derived columns (DerivedPrefix)
// produced from raw instrument scores. Columns used to derive any label are
// listed here so they never leak in as predictors.
type LeakagePolicy struct {
	Version          int             `yaml:"version"`
	LabelPrefix      string          `yaml:"label_prefix"`
	DerivedPrefix    string          `yaml:"derived_prefix"`
	NoDiagnosisCol   string          `yaml:"no_diagnosis_column"`
	ExcludedColumns  []string        `yaml:"excluded_columns"`
	ExcludedPrefixes []string        `yaml:"excluded_prefixes"`
	ExclusionPairs   []ExclusionPair `yaml:"exclusion_pairs"`
}

// ExclusionPair names two diagnoses that are mutually exclusive by
// construction (derived from adjacent ranges of the same score). Members are
// given without a namespace prefix; both namespaces are excluded.
type ExclusionPair struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

// DefaultPolicy reproduces the exclusion rules of the clinical study:
// aggregate impairment scores, the WIAT/WISC instrument families that feed
// the derived diagnoses, and the ID-Mild / Borderline-IF pair.
func DefaultPolicy() *LeakagePolicy {
	return &LeakagePolicy{
		Version:        1,
		LabelPrefix:    "Diag: ",
		DerivedPrefix:  "New Diag: ",
		NoDiagnosisCol: "Diag: No Diagnosis Given",
		ExcludedColumns: []string{
			"WHODAS_P,WHODAS_P_Total",
			"CIS_P,CIS_P_Score",
			"WHODAS_SR,WHODAS_SR_Score",
			"CIS_SR,CIS_SR_Total",
		},
		ExcludedPrefixes: []string{"WIAT", "WISC"},
		ExclusionPairs: []ExclusionPair{
			{A: "Intellectual Disability-Mild", B: "Borderline Intellectual Functioning"},
		},
	}
}

// LoadPolicy reads a policy file, falling back to nothing: the caller decides
// whether a missing file is an error.
func LoadPolicy(filename string) (*LeakagePolicy, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read leakage policy: %w", err)
	}

	policy := &LeakagePolicy{}
	if err := yaml.Unmarshal(raw, policy); err != nil {
		return nil, fmt.Errorf("failed to parse leakage policy: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}

func (p *LeakagePolicy) Validate() error {
	if p.LabelPrefix == "" || p.DerivedPrefix == "" {
		return fmt.Errorf("leakage policy v%d: label and derived prefixes must be set", p.Version)
	}
	if p.LabelPrefix == p.DerivedPrefix {
		return fmt.Errorf("leakage policy v%d: label and derived prefixes must differ", p.Version)
	}
	for _, pair := range p.ExclusionPairs {
		if pair.A == "" || pair.B == "" {
			return fmt.Errorf("leakage policy v%d: exclusion pair with empty member", p.Version)
		}
	}
	return nil
}

// BaseName strips whichever namespace prefix the label carries. The second
// return is false when the label is in neither namespace.
func (p *LeakagePolicy) BaseName(label string) (string, bool) {
	if strings.HasPrefix(label, p.DerivedPrefix) {
		return strings.TrimPrefix(label, p.DerivedPrefix), true
	}
	if strings.HasPrefix(label, p.LabelPrefix) {
		return strings.TrimPrefix(label, p.LabelPrefix), true
	}
	return "", false
}

// CounterpartColumns returns the target's own column names in both
// namespaces; all of them are leakage for that target.
func (p *LeakagePolicy) CounterpartColumns(label string) ([]string, error) {
	base, ok := p.BaseName(label)
	if !ok {
		return nil, &LeakageColumnConflictError{Label: label, Reason: "label is in neither the consensus nor the derived namespace"}
	}
	return []string{p.LabelPrefix + base, p.DerivedPrefix + base}, nil
}

// PairedColumns returns both-namespace column names of every configured
// exclusion partner of the target label.
func (p *LeakagePolicy) PairedColumns(label string) ([]string, error) {
	base, ok := p.BaseName(label)
	if !ok {
		return nil, &LeakageColumnConflictError{Label: label, Reason: "label is in neither the consensus nor the derived namespace"}
	}

	var partners []string
	for _, pair := range p.ExclusionPairs {
		switch base {
		case pair.A:
			partners = append(partners, p.LabelPrefix+pair.B, p.DerivedPrefix+pair.B)
		case pair.B:
			partners = append(partners, p.LabelPrefix+pair.A, p.DerivedPrefix+pair.A)
		}
	}
	return partners, nil
}
