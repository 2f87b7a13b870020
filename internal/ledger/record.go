package ledger

import (
	"context"
	"fmt"

	"github.com/verdict-engine/verdict/internal/gate"
	"github.com/verdict-engine/verdict/internal/ir"
	"github.com/verdict-engine/verdict/internal/repair"
)

// RunRecorder binds a store to one run id and implements the repair
// loop's recorder contract. The context is fixed at construction because
// the loop drives recording, not the caller.
type RunRecorder struct {
	ctx   context.Context
	store *Store
	runID int64
}

// NewRecorder creates a recorder for the given run.
func NewRecorder(ctx context.Context, store *Store, runID int64) *RunRecorder {
	return &RunRecorder{ctx: ctx, store: store, runID: runID}
}

// RecordClassification appends one classified failure.
func (r *RunRecorder) RecordClassification(iteration int, f repair.ValidationFailure) error {
	payload, err := marshalObj(f.Payload)
	if err != nil {
		return fmt.Errorf("record classification: %w", err)
	}

	_, err = r.store.db.ExecContext(r.ctx, `
		INSERT INTO classifications
		(run_id, iteration, kind, endpoint, expected_status, actual_status, related_flow, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.runID,
		iteration,
		string(f.Kind),
		f.Endpoint,
		f.Expected,
		f.Actual,
		f.RelatedFlow,
		payload,
	)
	if err != nil {
		return fmt.Errorf("record classification: %w", err)
	}
	return nil
}

// RecordRepair appends one repair attempt. Duplicate APPLIED fingerprints
// within a run are silently ignored; the orchestrator already refused the
// second application, so the first row is the authoritative one.
func (r *RunRecorder) RecordRepair(iteration int, f repair.ValidationFailure, res repair.Result) error {
	_, err := r.store.db.ExecContext(r.ctx, `
		INSERT INTO repairs
		(run_id, iteration, kind, endpoint, outcome, fingerprint, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		r.runID,
		iteration,
		string(f.Kind),
		f.Endpoint,
		string(res.Outcome),
		res.Fingerprint,
		res.Detail,
	)
	if err != nil {
		return fmt.Errorf("record repair: %w", err)
	}
	return nil
}

// RecordReport appends one iteration's report with its canonical JSON
// body. Re-recording the same (run, phase, iteration) is a no-op.
func (r *RunRecorder) RecordReport(report *gate.Report) error {
	body, err := report.MarshalCanonical()
	if err != nil {
		return fmt.Errorf("record report: %w", err)
	}

	_, err = r.store.db.ExecContext(r.ctx, `
		INSERT INTO reports
		(run_id, phase, iteration, status, coverage_bp, violations, warnings, manual, excellence, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		r.runID,
		report.Phase,
		report.Iteration,
		string(report.Status),
		basisPoints(report.CoverageScore),
		len(report.Violations),
		len(report.Warnings),
		len(report.ManualItems),
		boolInt(report.Excellence),
		string(body),
	)
	if err != nil {
		return fmt.Errorf("record report: %w", err)
	}
	return nil
}

func marshalObj(o ir.Obj) (string, error) {
	if len(o) == 0 {
		return "", nil
	}
	data, err := ir.MarshalCanonical(o)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// basisPoints stores coverage as an integer so float formatting never
// leaks into the ledger.
func basisPoints(v float64) int {
	return int(v*10000 + 0.5)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
