package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsObjectKeys(t *testing.T) {
	data, err := MarshalCanonical(Obj{
		"zeta":  Int(1),
		"alpha": Int(2),
		"mid":   Int(3),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mid":3,"zeta":1}`, string(data))
}

func TestMarshalCanonical_SortsKeysByUTF16CodeUnits(t *testing.T) {
	// 'z' (U+007A) sorts before 'é' (U+00E9) in UTF-16 code units.
	data, err := MarshalCanonical(Obj{
		"é": Int(1),
		"z": Int(2),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"z":2,"é":1}`, string(data))
}

func TestMarshalCanonical_RejectsFloats(t *testing.T) {
	_, err := MarshalCanonical(3.14)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")
}

func TestMarshalCanonical_RejectsNull(t *testing.T) {
	_, err := MarshalCanonical(nil)
	require.Error(t, err)

	_, err = MarshalCanonical(Obj{"a": nil})
	require.Error(t, err)
}

func TestMarshalCanonical_NFCNormalizesStrings(t *testing.T) {
	// "e" + combining acute accent normalizes to the precomposed form.
	decomposed := "é"
	data, err := MarshalCanonical(Str(decomposed))
	require.NoError(t, err)
	assert.Equal(t, `"`+"é"+`"`, string(data))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	data, err := MarshalCanonical(Str(`a<b>&c`))
	require.NoError(t, err)
	assert.Equal(t, `"a<b>&c"`, string(data))
}

func TestMarshalCanonical_EscapesControlCharacters(t *testing.T) {
	data, err := MarshalCanonical(Str("line1\nline2\ttab\x01"))
	require.NoError(t, err)
	assert.Equal(t, `"line1\nline2\ttab\u0001"`, string(data))
}

func TestMarshalCanonical_NestedStructures(t *testing.T) {
	data, err := MarshalCanonical(Obj{
		"list": List{Int(1), Str("two"), Bool(true)},
		"obj":  Obj{"inner": Str("v")},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"list":[1,"two",true],"obj":{"inner":"v"}}`, string(data))
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	obj := Obj{
		"b": List{Obj{"y": Int(2), "x": Int(1)}},
		"a": Str("value"),
	}
	first, err := MarshalCanonical(obj)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(obj)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}
