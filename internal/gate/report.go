package gate

import (
	"github.com/verdict-engine/verdict/internal/ir"
)

// TierName identifies a contract tier.
type TierName string

const (
	TierStructural TierName = "STRUCTURAL"
	TierSemantic   TierName = "SEMANTIC"
	TierQuality    TierName = "QUALITY"
)

// Status is the terminal outcome of a validator run.
type Status string

const (
	StatusPending            Status = "PENDING"
	StatusPassed             Status = "PASSED"
	StatusPassedWithWarnings Status = "PASSED_WITH_WARNINGS"
	StatusFailed             Status = "FAILED"
)

// TierStatus is the outcome of a single tier.
type TierStatus string

const (
	TierPassed  TierStatus = "PASSED"
	TierWarned  TierStatus = "WARNED"
	TierFailed  TierStatus = "FAILED"
	TierSkipped TierStatus = "SKIPPED"
)

// Violation is one failed check, attributed to its tier.
type Violation struct {
	Tier    TierName `json:"tier"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
}

// Key returns the violation's identity for cross-iteration comparison.
func (v Violation) Key() string {
	return string(v.Tier) + "/" + v.Code + "/" + v.Message
}

// TierResult is one tier's outcome within a report.
type TierResult struct {
	Status     TierStatus  `json:"status"`
	Violations []Violation `json:"violations,omitempty"`
	Warnings   []string    `json:"warnings,omitempty"`
}

// Report is the compliance report for one phase in one iteration.
//
// Reports are never mutated after creation. MANUAL items are enumerated
// separately from both passed and failed automated checks because they
// require different remediation (human review, not a pipeline re-run).
type Report struct {
	Phase         string                  `json:"phase"`
	IRHash        string                  `json:"ir_hash,omitempty"`
	Iteration     int                     `json:"iteration"`
	Mode          Mode                    `json:"mode"`
	TierResults   map[TierName]TierResult `json:"tier_results"`
	Violations    []Violation             `json:"violations,omitempty"`
	Warnings      []string                `json:"warnings,omitempty"`
	ManualItems   []string                `json:"manual_items,omitempty"`
	CoverageScore float64                 `json:"coverage_score"`
	Excellence    bool                    `json:"excellence,omitempty"`
	Status        Status                  `json:"status"`
}

// Better reports whether r is a strictly better outcome than other: fewer
// violations, or equal violations and higher coverage. Used by the repair
// loop to track the best iteration.
func (r *Report) Better(other *Report) bool {
	if other == nil {
		return true
	}
	if len(r.Violations) != len(other.Violations) {
		return len(r.Violations) < len(other.Violations)
	}
	return r.CoverageScore > other.CoverageScore
}

// DetectRegression reports whether next's violation set is not a subset
// of prev's. A regression is a hard stop regardless of mode: the repair
// loop must never trade one violation for a new one silently.
func DetectRegression(prev, next *Report) bool {
	if prev == nil || next == nil {
		return false
	}
	known := make(map[string]bool, len(prev.Violations))
	for _, v := range prev.Violations {
		known[v.Key()] = true
	}
	for _, v := range next.Violations {
		if !known[v.Key()] {
			return true
		}
	}
	return false
}

// MarshalCanonical serializes the report's stable fields as canonical
// JSON for golden comparison. Coverage is scaled to basis points so no
// float enters the canonical form.
func (r *Report) MarshalCanonical() ([]byte, error) {
	tiers := ir.Obj{}
	for name, result := range r.TierResults {
		violations := make(ir.List, 0, len(result.Violations))
		for _, v := range result.Violations {
			violations = append(violations, ir.Obj{
				"code":    ir.Str(v.Code),
				"message": ir.Str(v.Message),
			})
		}
		tierObj := ir.Obj{"status": ir.Str(string(result.Status))}
		if len(violations) > 0 {
			tierObj["violations"] = violations
		}
		if len(result.Warnings) > 0 {
			warnings := make(ir.List, 0, len(result.Warnings))
			for _, w := range result.Warnings {
				warnings = append(warnings, ir.Str(w))
			}
			tierObj["warnings"] = warnings
		}
		tiers[string(name)] = tierObj
	}

	manual := make(ir.List, 0, len(r.ManualItems))
	for _, m := range r.ManualItems {
		manual = append(manual, ir.Str(m))
	}

	obj := ir.Obj{
		"phase":              ir.Str(r.Phase),
		"mode":               ir.Str(string(r.Mode)),
		"iteration":          ir.Int(int64(r.Iteration)),
		"tier_results":       tiers,
		"coverage_score_bps": ir.Int(int64(r.CoverageScore*10000 + 0.5)),
		"status":             ir.Str(string(r.Status)),
	}
	if len(manual) > 0 {
		obj["manual_items"] = manual
	}
	if r.IRHash != "" {
		obj["ir_hash"] = ir.Str(r.IRHash)
	}
	return ir.MarshalCanonical(obj)
}
