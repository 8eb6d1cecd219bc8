package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeysAtEveryLevel(t *testing.T) {
	in := map[string]any{
		"zebra": map[string]any{"b": 1, "a": 2},
		"alpha": []any{map[string]any{"y": "v", "x": "w"}},
	}

	got, err := MarshalCanonical(in)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":[{"x":"w","y":"v"}],"zebra":{"a":2,"b":1}}`, string(got))
}

func TestMarshalCanonical_StructFieldOrderIrrelevant(t *testing.T) {
	type first struct {
		B string `json:"b"`
		A string `json:"a"`
	}
	type second struct {
		A string `json:"a"`
		B string `json:"b"`
	}

	fromFirst, err := MarshalCanonical(first{A: "1", B: "2"})
	require.NoError(t, err)
	fromSecond, err := MarshalCanonical(second{A: "1", B: "2"})
	require.NoError(t, err)
	assert.Equal(t, fromFirst, fromSecond)
}

func TestMarshalCanonical_PreservesNumberLiterals(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"v": 95.5, "w": 95.0, "n": 42})
	require.NoError(t, err)
	// encoding/json renders integral floats without a fraction; the
	// canonical pass must not reformat them.
	assert.Equal(t, `{"n":42,"v":95.5,"w":95}`, string(got))
}

func TestMarshalCanonical_EscapesStrings(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"text": "a\"b"})
	require.NoError(t, err)
	assert.Equal(t, `{"text":"a\"b"}`, string(got))
}

func TestMarshalCanonical_Stable(t *testing.T) {
	in := map[string]any{"b": []any{1, 2, 3}, "a": nil, "c": true}

	first, err := MarshalCanonical(in)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := MarshalCanonical(in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
