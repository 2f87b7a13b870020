package repair_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-engine/verdict/internal/extract"
	"github.com/verdict-engine/verdict/internal/ir"
	"github.com/verdict-engine/verdict/internal/repair"
	"github.com/verdict-engine/verdict/internal/testutil"
)

func paySnapshot() *extract.Snapshot {
	return extract.NewSnapshot(map[string]string{
		"order.py": "@app.post(\"/orders/{order_id}/pay\")\ndef pay():\n    return 422\n",
	})
}

func wrongStatusFailure(t *testing.T) repair.ValidationFailure {
	t.Helper()
	app := testutil.OrderApp()
	e := testutil.WrongStatusEvidence("pay", "pay_order", "POST", "/orders/{order_id}/pay", 200, 422)
	f := repair.ToFailure(e, app)
	require.Equal(t, ir.FailureWrongStatusCode, f.Kind)
	return f
}

func TestOrchestrator_AppliesStatusFix(t *testing.T) {
	orch := repair.NewOrchestrator(nil)
	snap := paySnapshot()
	pending := snap.Files()

	res := orch.Repair(wrongStatusFailure(t), snap, pending)

	assert.Equal(t, repair.OutcomeApplied, res.Outcome)
	assert.NotEmpty(t, res.Fingerprint)
	assert.Contains(t, pending["order.py"], "return 200")
	assert.NotContains(t, pending["order.py"], "return 422")
	assert.Equal(t, 1, orch.AppliedCount())
}

func TestOrchestrator_FingerprintDedup(t *testing.T) {
	orch := repair.NewOrchestrator(nil)
	snap := paySnapshot()
	pending := snap.Files()
	f := wrongStatusFailure(t)

	first := orch.Repair(f, snap, pending)
	second := orch.Repair(f, snap, pending)

	assert.Equal(t, repair.OutcomeApplied, first.Outcome)
	assert.Equal(t, repair.OutcomeAlreadyApplied, second.Outcome)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, 1, orch.AppliedCount())
}

func TestOrchestrator_AlreadySatisfiedAcrossRuns(t *testing.T) {
	app := testutil.OrderApp()
	e := testutil.StaleStateEvidence("pay", "pay_order", "POST", "/orders/{order_id}/pay",
		"order", "status", ir.Str("pending"))
	f := repair.ToFailure(e, app)

	snap := paySnapshot()
	pending := snap.Files()
	res := repair.NewOrchestrator(nil).Repair(f, snap, pending)
	require.Equal(t, repair.OutcomeApplied, res.Outcome)

	// A fresh orchestrator has an empty fingerprint set, but the guard is
	// already in the committed snapshot: structural no-op.
	committed := extract.NewSnapshot(pending)
	res = repair.NewOrchestrator(nil).Repair(f, committed, committed.Files())
	assert.Equal(t, repair.OutcomeAlreadySatisfied, res.Outcome)
}

func TestOrchestrator_SeedDefectNeverTouchesCode(t *testing.T) {
	app := testutil.OrderApp()
	e := testutil.MissingResourceEvidence("get_order", "GET", "/orders/{order_id}", 200)
	f := repair.ToFailure(e, app)

	orch := repair.NewOrchestrator(nil)
	snap := paySnapshot()
	pending := snap.Files()

	res := orch.Repair(f, snap, pending)

	assert.Equal(t, repair.OutcomeSeedDefect, res.Outcome)
	assert.Contains(t, res.Detail, "seed derivation")
	assert.Equal(t, snap.Files(), pending)
	assert.Zero(t, orch.AppliedCount())
}

func TestOrchestrator_UnknownGoesManual(t *testing.T) {
	f := repair.ValidationFailure{
		Kind:     ir.FailureUnknown,
		Endpoint: "POST /orders/{order_id}/pay",
	}

	snap := paySnapshot()
	res := repair.NewOrchestrator(nil).Repair(f, snap, snap.Files())

	assert.Equal(t, repair.OutcomeManual, res.Outcome)
	assert.Contains(t, res.Detail, "unclassifiable")
}

func TestOrchestrator_UntemplatableGoesManual(t *testing.T) {
	c := ir.Constraint{Entity: "order", Field: "total", Kind: ir.KindCustom}
	f := repair.ValidationFailure{
		Kind:              ir.FailureMissingSideEffect,
		Endpoint:          "POST /orders/{order_id}/pay",
		RelatedConstraint: &c,
	}

	snap := paySnapshot()
	res := repair.NewOrchestrator(nil).Repair(f, snap, snap.Files())

	assert.Equal(t, repair.OutcomeManual, res.Outcome)
	assert.Contains(t, res.Detail, "no deterministic template")
}
