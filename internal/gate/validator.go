package gate

import (
	"fmt"
	"log/slog"

	"github.com/verdict-engine/verdict/internal/extract"
	"github.com/verdict-engine/verdict/internal/match"
)

// Check codes, grouped by tier.
const (
	// STRUCTURAL (S00x)
	CheckPhaseNamed   = "S001" // phase identification present
	CheckCountsValid  = "S002" // scenario counts non-negative
	CheckMatchPresent = "S003" // match report present

	// SEMANTIC (M00x)
	CheckDecomposition = "M001" // passed + failed == total
	CheckComplexity    = "M002" // non-zero complexity for non-trivial specs

	// QUALITY (Q00x)
	CheckPassRate      = "Q001" // pass rate at or above gate
	CheckCoverage      = "Q002" // constraint coverage at or above gate
	CheckRequirements  = "Q003" // minimum requirement count
	CheckWaveRate      = "Q004" // wave batch success rate
	CheckManualBacklog = "Q005" // unrepairable items awaiting review
)

// ScenarioStats is the pass/fail decomposition of a phase's scenarios.
type ScenarioStats struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Input is everything a validator run evaluates for one phase.
type Input struct {
	Phase            string
	IRHash           string
	Iteration        int
	Scenarios        ScenarioStats
	Complexity       int
	RequirementCount int
	Match            *match.Report
	Warnings         []extract.Warning

	// ManualItems are unrepairable constraints surfaced by the repair
	// orchestrator. They are a QUALITY-tier shortfall, never a
	// STRUCTURAL failure.
	ManualItems []string

	// WaveSuccessRate is the optional wave-style batch execution metric.
	// Nil when the phase ran no wave.
	WaveSuccessRate *float64
}

// Validator runs the tiered contract state machine. The mode and
// thresholds are fixed at construction for the whole run.
type Validator struct {
	mode       Mode
	thresholds Thresholds
	logger     *slog.Logger
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithThresholds overrides the default gate levels.
func WithThresholds(t Thresholds) ValidatorOption {
	return func(v *Validator) { v.thresholds = t }
}

// WithValidatorLogger installs a logger.
func WithValidatorLogger(l *slog.Logger) ValidatorOption {
	return func(v *Validator) { v.logger = l }
}

// NewValidator creates a validator for one run.
func NewValidator(mode Mode, opts ...ValidatorOption) *Validator {
	v := &Validator{
		mode:       mode,
		thresholds: DefaultThresholds(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run executes the state machine for one phase.
//
// The returned report is always non-nil and complete up to the point the
// run stopped. The error is non-nil only for aborts (a StructuralDefect
// under STRICT/LENIENT); SEMANTIC and QUALITY findings are aggregated
// into the report and never raised as errors -- callers inspect Status.
func (v *Validator) Run(input Input) (*Report, error) {
	report := &Report{
		Phase:       input.Phase,
		IRHash:      input.IRHash,
		Iteration:   input.Iteration,
		Mode:        v.mode,
		TierResults: make(map[TierName]TierResult),
		Status:      StatusPending,
	}

	// STRUCTURAL_CHECK
	structural := v.checkStructural(input)
	report.TierResults[TierStructural] = structural
	report.Violations = append(report.Violations, structural.Violations...)
	if structural.Status == TierFailed {
		if v.mode.abortsOnStructural() {
			report.TierResults[TierSemantic] = TierResult{Status: TierSkipped}
			report.TierResults[TierQuality] = TierResult{Status: TierSkipped}
			report.Status = StatusFailed
			return report, &StructuralDefect{Phase: input.Phase, Violations: structural.Violations}
		}
		v.logger.Warn("structural defect, proceeding with degraded confidence",
			"phase", input.Phase, "mode", v.mode, "violations", len(structural.Violations))
	}

	// SEMANTIC_CHECK -- never aborts, downgrades to warnings.
	semantic := v.checkSemantic(input)
	report.TierResults[TierSemantic] = semantic
	report.Warnings = append(report.Warnings, semantic.Warnings...)

	// QUALITY_CHECK
	quality := v.checkQuality(input)
	report.TierResults[TierQuality] = quality
	report.Violations = append(report.Violations, quality.Violations...)
	report.Warnings = append(report.Warnings, quality.Warnings...)
	report.ManualItems = append(report.ManualItems, input.ManualItems...)

	if input.Match != nil {
		report.CoverageScore = input.Match.Coverage()
	}

	report.Status = v.terminalStatus(structural, semantic, quality)
	if report.Status == StatusPassed && input.Scenarios.Total > 0 {
		rate := float64(input.Scenarios.Passed) / float64(input.Scenarios.Total)
		report.Excellence = rate >= v.thresholds.ExcellenceBadge
	}

	v.logger.Info("validation complete",
		"phase", input.Phase,
		"status", report.Status,
		"violations", len(report.Violations),
		"warnings", len(report.Warnings),
		"manual", len(report.ManualItems))

	return report, nil
}

func (v *Validator) checkStructural(input Input) TierResult {
	var violations []Violation
	add := func(code, format string, args ...any) {
		violations = append(violations, Violation{
			Tier:    TierStructural,
			Code:    code,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if input.Phase == "" {
		add(CheckPhaseNamed, "phase identification is required")
	}
	if input.Scenarios.Total < 0 || input.Scenarios.Passed < 0 || input.Scenarios.Failed < 0 {
		add(CheckCountsValid, "scenario counts must be non-negative: total=%d passed=%d failed=%d",
			input.Scenarios.Total, input.Scenarios.Passed, input.Scenarios.Failed)
	}
	if input.Match == nil {
		add(CheckMatchPresent, "match report is required")
	}

	if len(violations) > 0 {
		return TierResult{Status: TierFailed, Violations: violations}
	}
	return TierResult{Status: TierPassed}
}

func (v *Validator) checkSemantic(input Input) TierResult {
	var warnings []string

	if input.Scenarios.Total > 0 && input.Scenarios.Passed+input.Scenarios.Failed != input.Scenarios.Total {
		warnings = append(warnings, fmt.Sprintf(
			"[%s] pass/fail decomposition does not sum to total: %d + %d != %d",
			CheckDecomposition, input.Scenarios.Passed, input.Scenarios.Failed, input.Scenarios.Total))
	}
	if input.RequirementCount > 0 && input.Complexity == 0 {
		warnings = append(warnings, fmt.Sprintf(
			"[%s] zero complexity for a spec with %d requirements is implausible",
			CheckComplexity, input.RequirementCount))
	}
	for _, w := range input.Warnings {
		warnings = append(warnings, fmt.Sprintf("extraction (%s, %s): %s", w.Source, w.File, w.Message))
	}

	if len(warnings) > 0 {
		return TierResult{Status: TierWarned, Warnings: warnings}
	}
	return TierResult{Status: TierPassed}
}

func (v *Validator) checkQuality(input Input) TierResult {
	var violations []Violation
	var warnings []string
	add := func(code, format string, args ...any) {
		violations = append(violations, Violation{
			Tier:    TierQuality,
			Code:    code,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if input.Scenarios.Total > 0 {
		rate := float64(input.Scenarios.Passed) / float64(input.Scenarios.Total)
		if rate < v.thresholds.QualityPassRate {
			add(CheckPassRate, "pass rate %.4f below gate %.2f", rate, v.thresholds.QualityPassRate)
		}
	}
	if input.Match != nil {
		if coverage := input.Match.Coverage(); coverage < v.thresholds.CoverageMin {
			add(CheckCoverage, "constraint coverage %.4f below gate %.2f", coverage, v.thresholds.CoverageMin)
		}
	}
	if input.RequirementCount < v.thresholds.MinRequirements {
		add(CheckRequirements, "requirement count %d below minimum %d",
			input.RequirementCount, v.thresholds.MinRequirements)
	}
	if input.WaveSuccessRate != nil {
		switch rate := *input.WaveSuccessRate; {
		case rate < v.thresholds.WaveMinSuccessRate:
			add(CheckWaveRate, "wave success rate %.4f below minimum %.2f", rate, v.thresholds.WaveMinSuccessRate)
		case rate < v.thresholds.WaveTargetSuccessRate:
			warnings = append(warnings, fmt.Sprintf(
				"[%s] wave success rate %.4f below target %.2f", CheckWaveRate, rate, v.thresholds.WaveTargetSuccessRate))
		}
	}
	if len(input.ManualItems) > 0 {
		add(CheckManualBacklog, "%d unrepairable constraints require human review", len(input.ManualItems))
	}

	switch {
	case len(violations) > 0:
		return TierResult{Status: TierFailed, Violations: violations, Warnings: warnings}
	case len(warnings) > 0:
		return TierResult{Status: TierWarned, Warnings: warnings}
	default:
		return TierResult{Status: TierPassed}
	}
}

func (v *Validator) terminalStatus(structural, semantic, quality TierResult) Status {
	if structural.Status == TierFailed && v.mode.abortsOnStructural() {
		return StatusFailed
	}
	if quality.Status == TierFailed {
		if v.mode.failsOnQuality() {
			return StatusFailed
		}
		// LENIENT and RESEARCH log the shortfall and complete with
		// warnings.
		return StatusPassedWithWarnings
	}
	if structural.Status == TierFailed || semantic.Status == TierWarned || quality.Status == TierWarned {
		return StatusPassedWithWarnings
	}
	return StatusPassed
}
