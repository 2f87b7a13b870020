package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-engine/verdict/internal/ir"
	"github.com/verdict-engine/verdict/internal/testutil"
)

func TestDerive_Deterministic(t *testing.T) {
	first, err := Derive(testutil.OrderApp())
	require.NoError(t, err)
	firstBytes, err := first.MarshalCanonical()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := Derive(testutil.OrderApp())
		require.NoError(t, err)
		againBytes, err := again.MarshalCanonical()
		require.NoError(t, err)
		assert.Equal(t, string(firstBytes), string(againBytes))
	}
}

func TestDerive_ParentsPrecedeChildren(t *testing.T) {
	plan, err := Derive(testutil.OrderApp())
	require.NoError(t, err)
	require.Len(t, plan.Requirements, 2)
	assert.Equal(t, "customer", plan.Requirements[0].EntityName)
	assert.Equal(t, "order", plan.Requirements[1].EntityName)
}

func TestDerive_ForeignKeyWiring(t *testing.T) {
	plan, err := Derive(testutil.OrderApp())
	require.NoError(t, err)

	customer, ok := plan.Requirement("customer")
	require.True(t, ok)
	order, ok := plan.Requirement("order")
	require.True(t, ok)

	require.Len(t, order.FKRefs, 1)
	assert.Equal(t, "customer_id", order.FKRefs[0].Field)
	assert.Equal(t, "customer", order.FKRefs[0].TargetEntity)
	assert.Equal(t, customer.UUIDPrimary, order.FKRefs[0].TargetUUID)

	// The FK field lives in FKRefs, never duplicated in Fields.
	_, present := order.Fields["customer_id"]
	assert.False(t, present)
}

func TestDerive_NestedChildFlags(t *testing.T) {
	plan, err := Derive(testutil.OrderApp())
	require.NoError(t, err)

	order, ok := plan.Requirement("order")
	require.True(t, ok)
	assert.True(t, order.IsNestedChild)
	assert.Equal(t, "customer", order.ParentEntity)

	customer, ok := plan.Requirement("customer")
	require.True(t, ok)
	assert.False(t, customer.IsNestedChild)
}

func TestDerive_FieldValuePriority(t *testing.T) {
	plan, err := Derive(testutil.OrderApp())
	require.NoError(t, err)

	order, _ := plan.Requirement("order")
	// Enum constraint: first allowed value.
	assert.Equal(t, ir.Str("pending"), order.Fields["status"])
	// Range minimum 1: minimum plus one.
	assert.Equal(t, ir.Int(2), order.Fields["amount"])

	customer, _ := plan.Requirement("customer")
	// Email-shaped pattern constraint.
	assert.Equal(t, ir.Str("seed@example.com"), customer.Fields["email"])
	// No constraint: string type default.
	assert.Equal(t, ir.Str("seed-value"), customer.Fields["name"])
	// Primary identity is never a field.
	_, present := customer.Fields["id"]
	assert.False(t, present)
}

func TestDerive_SeedHintsRaiseCardinality(t *testing.T) {
	plan, err := Derive(testutil.OrderApp())
	require.NoError(t, err)

	order, _ := plan.Requirement("order")
	assert.Equal(t, 2, order.CardinalityMin)
	customer, _ := plan.Requirement("customer")
	assert.Equal(t, 1, customer.CardinalityMin)
}

func TestDerive_PreconditionsSetFields(t *testing.T) {
	app := testutil.OrderApp()
	app.Behavior.Flows = append(app.Behavior.Flows, ir.Flow{
		Name:  "big_order",
		Steps: []ir.FlowStep{{Endpoint: "POST /orders/{order_id}/pay"}},
		Preconditions: []ir.Predicate{
			{Entity: "order", Field: "amount", Op: ir.OpGreater, Value: ir.Int(10)},
		},
	})

	plan, err := Derive(app)
	require.NoError(t, err)

	order, _ := plan.Requirement("order")
	assert.Equal(t, ir.Int(11), order.Fields["amount"])
	assert.Contains(t, order.SatisfiedPreconditions, "big_order: order.amount gt")
	assert.Contains(t, order.SatisfiedPreconditions, "pay_order: order.status eq")
}

func TestDerive_HintsAndPreconditionsReachEarlyEntities(t *testing.T) {
	// The first entity in generation order must receive hints and
	// precondition labels the same way the last one does.
	app := testutil.OrderApp()
	app.Tests.SeedHints = append(app.Tests.SeedHints, ir.SeedHint{Entity: "customer", MinCount: 3})
	app.Behavior.Flows = append(app.Behavior.Flows, ir.Flow{
		Name:  "verify_email",
		Steps: []ir.FlowStep{{Endpoint: "POST /customers/{customer_id}/verify"}},
		Preconditions: []ir.Predicate{
			{Entity: "customer", Field: "email", Op: ir.OpEquals, Value: ir.Str("seed@example.com")},
		},
	})

	plan, err := Derive(app)
	require.NoError(t, err)
	require.Equal(t, "customer", plan.Requirements[0].EntityName)

	customer := plan.Requirements[0]
	assert.Equal(t, 3, customer.CardinalityMin)
	assert.Equal(t, ir.Str("seed@example.com"), customer.Fields["email"])
	assert.Contains(t, customer.SatisfiedPreconditions, "verify_email: customer.email eq")
}

func TestDerive_NonEmptyCollectionForcesChildRow(t *testing.T) {
	app := testutil.OrderApp()
	app.Tests.SeedHints = nil
	app.Behavior.Flows = append(app.Behavior.Flows, ir.Flow{
		Name:  "list_orders",
		Steps: []ir.FlowStep{{Endpoint: "GET /orders/{order_id}"}},
		Preconditions: []ir.Predicate{
			{Entity: "customer", Field: "orders", Op: ir.OpNonEmpty},
		},
	})

	plan, err := Derive(app)
	require.NoError(t, err)

	order, _ := plan.Requirement("order")
	assert.GreaterOrEqual(t, order.CardinalityMin, 1)
	assert.Contains(t, order.SatisfiedPreconditions, "list_orders: customer.orders non_empty")
}

func TestDerive_CyclicDependencyFails(t *testing.T) {
	app := testutil.OrderApp()
	app.Domain.Relationships = append(app.Domain.Relationships, ir.Relationship{
		Parent: "order", Child: "customer", ForeignKeyField: "last_order_id",
	})

	_, err := Derive(app)
	require.Error(t, err)
	assert.True(t, IsCyclicDependency(err))
	assert.Contains(t, err.Error(), "cyclic generation dependency")
}

func TestEntityUUID_Deterministic(t *testing.T) {
	a := EntityUUID("order", 0, RolePrimary)
	assert.Equal(t, a, EntityUUID("order", 0, RolePrimary))
	assert.NotEqual(t, a, EntityUUID("order", 0, RoleDelete))
	assert.NotEqual(t, a, EntityUUID("order", 1, RolePrimary))
	assert.NotEqual(t, a, EntityUUID("customer", 0, RolePrimary))
	assert.Len(t, a, 36)
}
