package repair

import (
	"fmt"
	"log/slog"

	"github.com/verdict-engine/verdict/internal/extract"
	"github.com/verdict-engine/verdict/internal/ir"
)

// Outcome is the result category of one repair attempt.
type Outcome string

const (
	// OutcomeApplied means the fix mutated the snapshot.
	OutcomeApplied Outcome = "APPLIED"

	// OutcomeAlreadyApplied means the fingerprint was already in the
	// run's applied set; the fix was skipped.
	OutcomeAlreadyApplied Outcome = "ALREADY_APPLIED"

	// OutcomeAlreadySatisfied means the transform produced no structural
	// change: the code already embodies the fix.
	OutcomeAlreadySatisfied Outcome = "ALREADY_SATISFIED"

	// OutcomeManual means no deterministic template exists. Never
	// retried; surfaced verbatim for human review.
	OutcomeManual Outcome = "MANUAL"

	// OutcomeSeedDefect means the failure traces to missing seed data,
	// not generated code. The correction belongs upstream in seed
	// derivation; attempting a code repair would mask the real defect.
	OutcomeSeedDefect Outcome = "SEED_DEFECT"
)

// Result records one repair attempt.
type Result struct {
	Outcome     Outcome `json:"outcome"`
	Fingerprint string  `json:"fingerprint,omitempty"`
	Detail      string  `json:"detail,omitempty"`
}

// Orchestrator applies fixes idempotently within a single run. It is the
// only component allowed to produce new code snapshots.
type Orchestrator struct {
	applied map[string]bool // fingerprints applied this run
	logger  *slog.Logger
}

// NewOrchestrator creates an orchestrator with an empty applied set.
func NewOrchestrator(logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{applied: make(map[string]bool), logger: logger}
}

// AppliedCount returns the size of the applied-fingerprint set.
func (o *Orchestrator) AppliedCount() int { return len(o.applied) }

// Repair attempts one failure against a pending file set. The pending
// map accumulates an iteration's mutations; the caller commits it into a
// new immutable snapshot only after the whole fix set is decided, so no
// partial mutation is ever visible to the next extraction pass.
func (o *Orchestrator) Repair(f ValidationFailure, snapshot *extract.Snapshot, pending map[string]string) Result {
	switch f.Kind {
	case ir.FailureMissingPrecondition:
		return Result{
			Outcome: OutcomeSeedDefect,
			Detail:  fmt.Sprintf("%s: precondition resource absent; correct seed derivation, not code", f.Endpoint),
		}
	case ir.FailureUnknown:
		return Result{
			Outcome: OutcomeManual,
			Detail:  fmt.Sprintf("%s: unclassifiable failure", f.Endpoint),
		}
	}

	if f.RelatedConstraint != nil && !f.RelatedConstraint.Kind.Templatable() {
		return Result{
			Outcome: OutcomeManual,
			Detail: fmt.Sprintf("%s: constraint kind %s has no deterministic template",
				f.Endpoint, f.RelatedConstraint.Kind),
		}
	}

	fix, ok := buildFix(f, snapshot)
	if !ok {
		return Result{
			Outcome: OutcomeManual,
			Detail:  fmt.Sprintf("%s: no repair template for %s", f.Endpoint, f.Kind),
		}
	}

	if o.applied[fix.Fingerprint] {
		return Result{Outcome: OutcomeAlreadyApplied, Fingerprint: fix.Fingerprint}
	}

	before, exists := pending[fix.TargetLocation]
	if !exists {
		before, _ = snapshot.Content(fix.TargetLocation)
	}
	after := fix.apply(before)

	// Structural no-op detection: a transform that changes nothing after
	// normalization is already satisfied. This protects against loops
	// reapplying semantically identical fixes expressed with
	// superficially different generated code.
	if normalizeStructure(before) == normalizeStructure(after) {
		o.applied[fix.Fingerprint] = true
		return Result{Outcome: OutcomeAlreadySatisfied, Fingerprint: fix.Fingerprint}
	}

	pending[fix.TargetLocation] = after
	o.applied[fix.Fingerprint] = true

	o.logger.Debug("fix applied",
		"kind", fix.Kind,
		"target", fix.TargetLocation,
		"fingerprint", fix.Fingerprint[:12])

	return Result{Outcome: OutcomeApplied, Fingerprint: fix.Fingerprint}
}
