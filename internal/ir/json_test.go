package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstraint_UnmarshalJSON(t *testing.T) {
	var c Constraint
	err := json.Unmarshal([]byte(`{
		"entity": "order",
		"field": "amount",
		"kind": "RANGE_MIN",
		"value": 1,
		"enforcement": "both"
	}`), &c)
	require.NoError(t, err)
	assert.Equal(t, "order", c.Entity)
	assert.Equal(t, KindRangeMin, c.Kind)
	assert.Equal(t, Int(1), c.Value)
	assert.Equal(t, EnforceBoth, c.Enforcement)
}

func TestConstraint_UnmarshalJSON_ListValue(t *testing.T) {
	var c Constraint
	err := json.Unmarshal([]byte(`{
		"entity": "order",
		"field": "status",
		"kind": "ENUM",
		"value": ["pending", "paid"]
	}`), &c)
	require.NoError(t, err)
	assert.Equal(t, List{Str("pending"), Str("paid")}, c.Value)
}

func TestConstraint_UnmarshalJSON_RejectsFloatValue(t *testing.T) {
	var c Constraint
	err := json.Unmarshal([]byte(`{"entity":"e","field":"f","kind":"RANGE_MIN","value":1.5}`), &c)
	require.Error(t, err)
}

func TestConstraint_UnmarshalJSON_AbsentValue(t *testing.T) {
	var c Constraint
	err := json.Unmarshal([]byte(`{"entity":"e","field":"f","kind":"PRESENCE"}`), &c)
	require.NoError(t, err)
	assert.Nil(t, c.Value)
}

func TestPredicate_UnmarshalJSON(t *testing.T) {
	var p Predicate
	err := json.Unmarshal([]byte(`{"entity":"order","field":"status","op":"eq","value":"pending"}`), &p)
	require.NoError(t, err)
	assert.Equal(t, OpEquals, p.Op)
	assert.Equal(t, Str("pending"), p.Value)
}

func TestObj_UnmarshalJSON(t *testing.T) {
	var o Obj
	err := json.Unmarshal([]byte(`{"amount":5,"status":"pending","nested":{"ok":true}}`), &o)
	require.NoError(t, err)
	assert.Equal(t, Obj{
		"amount": Int(5),
		"status": Str("pending"),
		"nested": Obj{"ok": Bool(true)},
	}, o)
}

func TestObj_UnmarshalJSON_RejectsNonObject(t *testing.T) {
	var o Obj
	err := json.Unmarshal([]byte(`[1,2]`), &o)
	require.Error(t, err)
}

func TestConstraintKind_Templatable(t *testing.T) {
	assert.True(t, KindRangeMin.Templatable())
	assert.True(t, KindStatusTransition.Templatable())
	assert.False(t, KindCustom.Templatable())
	assert.False(t, KindUnclassified.Templatable())
	assert.False(t, ConstraintKind("BOGUS").Templatable())
}
