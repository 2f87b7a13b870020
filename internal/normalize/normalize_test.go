package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-engine/verdict/internal/extract"
	"github.com/verdict-engine/verdict/internal/ir"
)

func TestNormalize_MergesSemanticDuplicates(t *testing.T) {
	n := New(nil)

	raw := []extract.RawRule{
		{Entity: "orders", Field: "amount", RawKind: "check >=", Value: ir.Int(1), Confidence: 0.9, Source: "schema"},
		{Entity: "order", Field: "amt", RawKind: "gte", Value: ir.Int(1), Confidence: 0.85, Source: "code"},
		{Entity: "Order", Field: "total_amount", RawKind: "minimum", Value: ir.Int(1), Confidence: 0.9, Source: "contract"},
	}

	rules, warnings := n.Normalize(raw)
	assert.Empty(t, warnings)
	require.Len(t, rules, 1)

	r := rules[0]
	assert.Equal(t, "order", r.Entity)
	assert.Equal(t, "amount", r.Field)
	assert.Equal(t, ir.KindRangeMin, r.Kind)
	assert.Equal(t, ir.Int(1), r.Value)
	assert.Equal(t, 0.9, r.Confidence)
	assert.Equal(t, []string{"code", "contract", "schema"}, r.Sources)
}

func TestNormalize_MaxConfidenceValueWins(t *testing.T) {
	n := New(nil)

	raw := []extract.RawRule{
		{Entity: "order", Field: "amount", RawKind: "guard >=", Value: ir.Int(5), Confidence: 0.7, Source: "code"},
		{Entity: "order", Field: "amount", RawKind: "check >=", Value: ir.Int(1), Confidence: 0.9, Source: "schema"},
	}

	rules, _ := n.Normalize(raw)
	require.Len(t, rules, 1)
	assert.Equal(t, ir.Int(1), rules[0].Value)
	assert.Equal(t, 0.9, rules[0].Confidence)
}

func TestNormalize_DistinctKindsStaySeparate(t *testing.T) {
	n := New(nil)

	raw := []extract.RawRule{
		{Entity: "order", Field: "amount", RawKind: "check >=", Value: ir.Int(1), Confidence: 0.9, Source: "schema"},
		{Entity: "order", Field: "amount", RawKind: "check <=", Value: ir.Int(100), Confidence: 0.9, Source: "schema"},
		{Entity: "order", Field: "status", RawKind: "check in", Value: ir.List{ir.Str("a")}, Confidence: 0.9, Source: "schema"},
	}

	rules, _ := n.Normalize(raw)
	assert.Len(t, rules, 3)
}

func TestNormalize_SortedByKey(t *testing.T) {
	n := New(nil)

	raw := []extract.RawRule{
		{Entity: "zebra", Field: "a", RawKind: "required", Confidence: 0.9, Source: "schema"},
		{Entity: "apple", Field: "b", RawKind: "required", Confidence: 0.9, Source: "schema"},
		{Entity: "apple", Field: "a", RawKind: "unique", Confidence: 0.9, Source: "schema"},
		{Entity: "apple", Field: "a", RawKind: "required", Confidence: 0.9, Source: "schema"},
	}

	rules, _ := n.Normalize(raw)
	require.Len(t, rules, 4)
	assert.Equal(t, ir.RuleKey{Entity: "apple", Field: "a", Kind: ir.KindPresence}, rules[0].Key())
	assert.Equal(t, ir.RuleKey{Entity: "apple", Field: "a", Kind: ir.KindUniqueness}, rules[1].Key())
	assert.Equal(t, ir.RuleKey{Entity: "apple", Field: "b", Kind: ir.KindPresence}, rules[2].Key())
	assert.Equal(t, ir.RuleKey{Entity: "zebra", Field: "a", Kind: ir.KindPresence}, rules[3].Key())
}

func TestNormalize_EntitylessRuleWarns(t *testing.T) {
	n := New(nil)

	rules, warnings := n.Normalize([]extract.RawRule{
		{Field: "amount", RawKind: "required", Confidence: 0.9, Source: "code", File: "main.py"},
	})

	assert.Empty(t, rules)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "no entity context")
}

func TestCanonicalKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Amount", "amount"},
		{"total-amount", "total_amount"},
		{"Total Amount", "total_amount"},
		{"order.amount", "order_amount"},
		{"__weird__", "weird"},
		{"a--b  c", "a_b_c"},
		{"Café", "café"},
		{"Café", "café"}, // NFC composes the accent
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalKey(tt.in), tt.in)
	}
}

func TestSynonymTable_FieldResolution(t *testing.T) {
	table := DefaultSynonyms()

	assert.Equal(t, "amount", table.Field("amt"))
	assert.Equal(t, "amount", table.Field("Total Amount"))
	assert.Equal(t, "price", table.Field("unit_price"))
	assert.Equal(t, "status", table.Field("state"))
	assert.Equal(t, "email", table.Field("e-mail"))

	// Unknown spellings fold but stay themselves.
	assert.Equal(t, "shoe_size", table.Field("Shoe-Size"))

	assert.True(t, table.SameField("amt", "total"))
	assert.False(t, table.SameField("amount", "price"))
}

func TestSynonymTable_EntitySingularizes(t *testing.T) {
	table := DefaultSynonyms()

	assert.Equal(t, "order", table.Entity("orders"))
	assert.Equal(t, "category", table.Entity("categories"))
	assert.Equal(t, "address", table.Entity("addresses"))
	assert.Equal(t, "batch", table.Entity("batches"))
	assert.Equal(t, "customer", table.Entity("Customer"))
}

func TestSynonymTable_Extend(t *testing.T) {
	table := DefaultSynonyms()
	require.NoError(t, table.Extend([]byte("fields:\n  amount:\n    - grand_total\n")))

	assert.Equal(t, "amount", table.Field("grand_total"))
	// Existing classes survive the merge.
	assert.Equal(t, "amount", table.Field("amt"))
}

func TestParseSynonyms_Invalid(t *testing.T) {
	_, err := ParseSynonyms([]byte(": [broken"))
	assert.Error(t, err)
}

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		raw  string
		want ir.ConstraintKind
	}{
		{"check >=", ir.KindRangeMin},
		{"guard >=", ir.KindRangeMin},
		{"gte", ir.KindRangeMin},
		{"minLength", ir.KindRangeMin},
		{"check <=", ir.KindRangeMax},
		{"maximum", ir.KindRangeMax},
		{"check in", ir.KindEnum},
		{"oneof", ir.KindEnum},
		{"pattern", ir.KindPattern},
		{"not null", ir.KindPresence},
		{"required", ir.KindPresence},
		{"unique", ir.KindUniqueness},
		{"references", ir.KindRelationship},
		{"transition table", ir.KindStatusTransition},
		{"cross-field guard", ir.KindCustom},
		{"something novel", ir.KindUnclassified},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyKind(tt.raw), tt.raw)
	}
}
