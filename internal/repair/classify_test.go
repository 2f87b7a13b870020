package repair_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-engine/verdict/internal/ir"
	"github.com/verdict-engine/verdict/internal/repair"
	"github.com/verdict-engine/verdict/internal/testutil"
)

func TestClassify_MissingPrecondition(t *testing.T) {
	app := testutil.OrderApp()
	e := testutil.MissingResourceEvidence("get_order", "GET", "/orders/{order_id}", 200)

	assert.Equal(t, ir.FailureMissingPrecondition, repair.Classify(e, app))
}

func TestClassify_ProbeTakesPrecedence(t *testing.T) {
	// Even a declared flow step with an error status classifies as a
	// precondition failure when the probe shows the resource absent.
	app := testutil.OrderApp()
	e := testutil.WrongStatusEvidence("pay", "pay_order", "POST", "/orders/{order_id}/pay", 200, 422)
	e.ProbeStatus = 404

	assert.Equal(t, ir.FailureMissingPrecondition, repair.Classify(e, app))
}

func TestClassify_WrongStatusCode(t *testing.T) {
	app := testutil.OrderApp()
	e := testutil.WrongStatusEvidence("pay", "pay_order", "POST", "/orders/{order_id}/pay", 200, 422)

	assert.Equal(t, ir.FailureWrongStatusCode, repair.Classify(e, app))
}

func TestClassify_MissingSideEffect(t *testing.T) {
	app := testutil.OrderApp()
	e := testutil.StaleStateEvidence("pay", "pay_order", "POST", "/orders/{order_id}/pay",
		"order", "status", ir.Str("pending"))

	assert.Equal(t, ir.FailureMissingSideEffect, repair.Classify(e, app))
}

func TestClassify_UnknownWithoutFlow(t *testing.T) {
	app := testutil.OrderApp()
	e := testutil.WrongStatusEvidence("pay", "", "POST", "/orders/{order_id}/pay", 200, 500)

	assert.Equal(t, ir.FailureUnknown, repair.Classify(e, app))
}

func TestClassify_UnknownForUndeclaredStep(t *testing.T) {
	app := testutil.OrderApp()
	e := testutil.WrongStatusEvidence("refund", "pay_order", "POST", "/orders/{order_id}/refund", 200, 500)

	assert.Equal(t, ir.FailureUnknown, repair.Classify(e, app))
}

func TestToFailure_AttachesRelatedConstraint(t *testing.T) {
	app := testutil.OrderApp()
	e := testutil.StaleStateEvidence("pay", "pay_order", "POST", "/orders/{order_id}/pay",
		"order", "status", ir.Str("pending"))

	f := repair.ToFailure(e, app)

	assert.Equal(t, ir.FailureMissingSideEffect, f.Kind)
	assert.Equal(t, "POST /orders/{order_id}/pay", f.Endpoint)
	assert.Equal(t, "pay_order", f.RelatedFlow)
	require.NotNil(t, f.RelatedConstraint)
	assert.Equal(t, "order", f.RelatedConstraint.Entity)
	assert.Equal(t, "status", f.RelatedConstraint.Field)
	assert.Equal(t, ir.KindEnum, f.RelatedConstraint.Kind)
}

func TestToFailure_WrongStatusCarriesObserved(t *testing.T) {
	app := testutil.OrderApp()
	e := testutil.WrongStatusEvidence("pay", "pay_order", "POST", "/orders/{order_id}/pay", 200, 422)

	f := repair.ToFailure(e, app)

	assert.Equal(t, ir.FailureWrongStatusCode, f.Kind)
	assert.Equal(t, 200, f.Expected)
	assert.Equal(t, 422, f.Actual)
	assert.Nil(t, f.RelatedConstraint)
}

func TestEvidence_Failed(t *testing.T) {
	passing := testutil.PassingEvidence("ok", "GET", "/orders/{order_id}", 200)
	assert.False(t, passing.Failed())

	wrong := testutil.WrongStatusEvidence("pay", "pay_order", "POST", "/orders/{order_id}/pay", 200, 422)
	assert.True(t, wrong.Failed())

	// An assertion failure counts even when the status matched.
	stale := testutil.StaleStateEvidence("pay", "pay_order", "POST", "/orders/{order_id}/pay",
		"order", "status", ir.Str("pending"))
	assert.True(t, stale.Failed())
}
