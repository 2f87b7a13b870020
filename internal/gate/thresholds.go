package gate

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Thresholds holds the QUALITY-tier gate levels. Defaults are operator
// policy, not invariants; every field is overridable from configuration
// and from tests.
type Thresholds struct {
	// QualityPassRate is the minimum scenario pass rate for the quality
	// gate. A rate exactly at the threshold passes.
	QualityPassRate float64 `yaml:"quality_pass_rate"`

	// ExcellenceBadge marks runs at or above this pass rate.
	ExcellenceBadge float64 `yaml:"excellence_badge"`

	// MinRequirements is the minimum declared-requirement count below
	// which a phase is too thin to judge.
	MinRequirements int `yaml:"min_requirements"`

	// WaveMinSuccessRate is the minimum success rate for wave-style
	// batch execution.
	WaveMinSuccessRate float64 `yaml:"wave_min_success_rate"`

	// WaveTargetSuccessRate is the aspirational wave rate; shortfalls
	// between minimum and target warn rather than fail.
	WaveTargetSuccessRate float64 `yaml:"wave_target_success_rate"`

	// CoverageMin is the minimum constraint coverage (matched /
	// declared) for the quality gate.
	CoverageMin float64 `yaml:"coverage_min"`
}

// DefaultThresholds returns the standard gate levels.
func DefaultThresholds() Thresholds {
	return Thresholds{
		QualityPassRate:       0.70,
		ExcellenceBadge:       0.95,
		MinRequirements:       3,
		WaveMinSuccessRate:    0.50,
		WaveTargetSuccessRate: 0.80,
		CoverageMin:           0.70,
	}
}

// ParseThresholds merges YAML overrides onto the defaults. Absent fields
// keep their default values.
func ParseThresholds(data []byte) (Thresholds, error) {
	t := DefaultThresholds()
	if len(data) == 0 {
		return t, nil
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Thresholds{}, fmt.Errorf("thresholds: %w", err)
	}
	if err := t.validate(); err != nil {
		return Thresholds{}, err
	}
	return t, nil
}

func (t Thresholds) validate() error {
	for name, v := range map[string]float64{
		"quality_pass_rate":        t.QualityPassRate,
		"excellence_badge":         t.ExcellenceBadge,
		"wave_min_success_rate":    t.WaveMinSuccessRate,
		"wave_target_success_rate": t.WaveTargetSuccessRate,
		"coverage_min":             t.CoverageMin,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("thresholds: %s must be in [0,1], got %v", name, v)
		}
	}
	if t.MinRequirements < 0 {
		return fmt.Errorf("thresholds: min_requirements must be non-negative, got %d", t.MinRequirements)
	}
	return nil
}
