package seed

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-engine/verdict/internal/ir"
)

func fixedPlan() *Plan {
	return &Plan{
		IRHash: "fixed-ir-hash-for-golden",
		Requirements: []Requirement{
			{
				EntityName:     "customer",
				UUIDPrimary:    "11111111-1111-1111-1111-111111111111",
				UUIDDelete:     "22222222-2222-2222-2222-222222222222",
				Fields:         ir.Obj{"email": ir.Str("seed@example.com")},
				CardinalityMin: 1,
			},
			{
				EntityName:  "order",
				UUIDPrimary: "33333333-3333-3333-3333-333333333333",
				UUIDDelete:  "44444444-4444-4444-4444-444444444444",
				Fields:      ir.Obj{"amount": ir.Int(2), "status": ir.Str("pending")},
				FKRefs: []FKRef{
					{Field: "customer_id", TargetEntity: "customer", TargetUUID: "11111111-1111-1111-1111-111111111111"},
				},
				IsNestedChild:          true,
				ParentEntity:           "customer",
				CardinalityMin:         2,
				SatisfiedPreconditions: []string{"pay_order: order.status eq"},
			},
		},
	}
}

func TestPlan_MarshalCanonical_Golden(t *testing.T) {
	data, err := fixedPlan().MarshalCanonical()
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "plan_canonical", data)
}

func TestPlan_MarshalCanonical_Deterministic(t *testing.T) {
	first, err := fixedPlan().MarshalCanonical()
	require.NoError(t, err)
	again, err := fixedPlan().MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(again))
}

func TestPlan_Requirement(t *testing.T) {
	plan := fixedPlan()

	req, ok := plan.Requirement("order")
	require.True(t, ok)
	assert.Equal(t, "order", req.EntityName)

	_, ok = plan.Requirement("ghost")
	assert.False(t, ok)
}

func TestCyclicDependencyError_Unwrapping(t *testing.T) {
	err := &CyclicDependencyError{Path: []string{"a", "b", "a"}}
	assert.True(t, IsCyclicDependency(err))
	assert.False(t, IsCyclicDependency(assert.AnError))
	assert.Equal(t, "cyclic generation dependency: a -> b -> a", err.Error())
}
