package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-engine/verdict/internal/gate"
	"github.com/verdict-engine/verdict/internal/ir"
	"github.com/verdict-engine/verdict/internal/repair"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen_Reopenable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	store, err := Open(path)
	require.NoError(t, err)

	runID, err := store.BeginRun(context.Background(), "api", "hash1", "STRICT")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Schema application is idempotent and data survives.
	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	second, err := store.BeginRun(context.Background(), "api", "hash2", "LENIENT")
	require.NoError(t, err)
	assert.Greater(t, second, runID)
}

func TestRecorder_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	runID, err := store.BeginRun(ctx, "api", "abc123", "STRICT")
	require.NoError(t, err)
	rec := NewRecorder(ctx, store, runID)

	failure := repair.ValidationFailure{
		Kind:        ir.FailureWrongStatusCode,
		Endpoint:    "POST /orders/{order_id}/pay",
		Expected:    200,
		Actual:      422,
		Payload:     ir.Obj{"amount": ir.Int(5)},
		RelatedFlow: "pay_order",
	}
	require.NoError(t, rec.RecordClassification(1, failure))
	require.NoError(t, rec.RecordRepair(1, failure, repair.Result{
		Outcome:     repair.OutcomeApplied,
		Fingerprint: "fp-1",
	}))
	require.NoError(t, rec.RecordReport(&gate.Report{
		Phase:         "api",
		Iteration:     1,
		Mode:          gate.ModeStrict,
		TierResults:   map[gate.TierName]gate.TierResult{},
		CoverageScore: 0.8,
		Status:        gate.StatusFailed,
		Violations:    []gate.Violation{{Tier: gate.TierQuality, Code: "Q001", Message: "low"}},
	}))

	repairs, err := store.ListRepairs(ctx, runID)
	require.NoError(t, err)
	require.Len(t, repairs, 1)
	assert.Equal(t, "APPLIED", repairs[0].Outcome)
	assert.Equal(t, "fp-1", repairs[0].Fingerprint)
	assert.Equal(t, "POST /orders/{order_id}/pay", repairs[0].Endpoint)

	reports, err := store.ListReports(ctx, runID)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "FAILED", reports[0].Status)
	assert.Equal(t, 8000, reports[0].CoverageBP)
	assert.Equal(t, 1, reports[0].Violations)
	assert.Contains(t, reports[0].Body, `"coverage_score_bps":8000`)
}

func TestRecorder_DuplicateAppliedFingerprintIgnored(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	runID, err := store.BeginRun(ctx, "api", "abc123", "STRICT")
	require.NoError(t, err)
	rec := NewRecorder(ctx, store, runID)

	failure := repair.ValidationFailure{Kind: ir.FailureWrongStatusCode, Endpoint: "POST /x"}
	result := repair.Result{Outcome: repair.OutcomeApplied, Fingerprint: "fp-dup"}

	require.NoError(t, rec.RecordRepair(1, failure, result))
	require.NoError(t, rec.RecordRepair(2, failure, result))

	repairs, err := store.ListRepairs(ctx, runID)
	require.NoError(t, err)
	assert.Len(t, repairs, 1)
}

func TestRecorder_ManualOutcomesAllRecorded(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	runID, err := store.BeginRun(ctx, "api", "abc123", "STRICT")
	require.NoError(t, err)
	rec := NewRecorder(ctx, store, runID)

	// MANUAL rows carry no fingerprint; the applied-fingerprint
	// uniqueness rule must not collapse them.
	for i, endpoint := range []string{"POST /a", "POST /b"} {
		failure := repair.ValidationFailure{Kind: ir.FailureUnknown, Endpoint: endpoint}
		require.NoError(t, rec.RecordRepair(i+1, failure, repair.Result{
			Outcome: repair.OutcomeManual,
			Detail:  endpoint + ": unclassifiable failure",
		}))
	}

	counts, err := store.OutcomeCounts(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"MANUAL": 2}, counts)
}

func TestRecorder_ReportIdempotentPerIteration(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	runID, err := store.BeginRun(ctx, "api", "abc123", "STRICT")
	require.NoError(t, err)
	rec := NewRecorder(ctx, store, runID)

	report := &gate.Report{
		Phase:       "api",
		Iteration:   1,
		Mode:        gate.ModeStrict,
		TierResults: map[gate.TierName]gate.TierResult{},
		Status:      gate.StatusPassed,
	}
	require.NoError(t, rec.RecordReport(report))
	require.NoError(t, rec.RecordReport(report))

	report.Iteration = 2
	require.NoError(t, rec.RecordReport(report))

	reports, err := store.ListReports(ctx, runID)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, 1, reports[0].Iteration)
	assert.Equal(t, 2, reports[1].Iteration)
}

func TestRunsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	first, err := store.BeginRun(ctx, "api", "hash1", "STRICT")
	require.NoError(t, err)
	second, err := store.BeginRun(ctx, "api", "hash2", "STRICT")
	require.NoError(t, err)

	require.NoError(t, NewRecorder(ctx, store, first).RecordRepair(1,
		repair.ValidationFailure{Kind: ir.FailureUnknown, Endpoint: "POST /a"},
		repair.Result{Outcome: repair.OutcomeManual, Detail: "d"}))

	rows, err := store.ListRepairs(ctx, second)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
