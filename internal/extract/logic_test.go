package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-engine/verdict/internal/ir"
)

func TestLogicExtractor_TransitionTable(t *testing.T) {
	content := `
TRANSITIONS = {
    "pending": ["paid", "cancelled"],
    "paid": ["refunded"],
    "cancelled": [],
}
`
	ex := &LogicExtractor{}
	rules, warnings, err := ex.ExtractFile(context.Background(), "order_service.py", content)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	r := findRaw(rules, "order", "TRANSITIONS", "transition table")
	require.NotNil(t, r)
	assert.Equal(t, 0.8, r.Confidence)
	assert.Equal(t, "logic", r.Source)

	table, ok := r.Value.(ir.Obj)
	require.True(t, ok)
	assert.Equal(t, ir.List{ir.Str("paid"), ir.Str("cancelled")}, table["pending"])
	assert.Equal(t, ir.List{ir.Str("refunded")}, table["paid"])
	assert.Equal(t, ir.List{}, table["cancelled"])
}

func TestLogicExtractor_SingleEntryIsNotATable(t *testing.T) {
	content := `
COLORS = {
    "primary": ["red", "blue"],
}
x = 1
`
	ex := &LogicExtractor{}
	rules, _, err := ex.ExtractFile(context.Background(), "order_service.py", content)
	require.NoError(t, err)
	assert.Nil(t, findRaw(rules, "order", "COLORS", "transition table"))
}

func TestLogicExtractor_CrossFieldGuard(t *testing.T) {
	content := "if start_date > end_date:\n    raise ValueError\n"

	ex := &LogicExtractor{}
	rules, _, err := ex.ExtractFile(context.Background(), "booking_service.py", content)
	require.NoError(t, err)

	r := findRaw(rules, "booking", "start_date", "cross-field guard")
	require.NotNil(t, r)
	assert.Equal(t, 0.6, r.Confidence)
	assert.Equal(t, ir.Obj{"op": ir.Str(">"), "other": ir.Str("end_date")}, r.Value)
}

func TestLogicExtractor_NumericGuardLeftToCodeExtractor(t *testing.T) {
	content := "if amount < 100:\n    raise ValueError\n"

	ex := &LogicExtractor{}
	rules, _, err := ex.ExtractFile(context.Background(), "order_service.py", content)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestLogicExtractor_SkipsDataFiles(t *testing.T) {
	ex := &LogicExtractor{}
	for _, path := range []string{"a.sql", "a.yaml", "a.yml", "a.json", "a.md"} {
		rules, _, err := ex.ExtractFile(context.Background(), path, "if a > b:")
		require.NoError(t, err)
		assert.Empty(t, rules, path)
	}
}
