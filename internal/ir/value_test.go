package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Bool(true)
	var _ Value = Array{String("a"), Int(1)}
	var _ Value = Object{"key": String("value")}
}

func TestObjectSortedKeys(t *testing.T) {
	obj := Object{
		"a":  Int(1),
		"A":  Int(2),
		"aa": Int(3),
		"aA": Int(4),
		"Aa": Int(5),
		"AA": Int(6),
	}

	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{"string", `"hi"`, String("hi")},
		{"int", `42`, Int(42)},
		{"negative", `-7`, Int(-7)},
		{"bool", `true`, Bool(true)},
		{"null", `null`, Null{}},
		{"array", `[1,"a"]`, Array{Int(1), String("a")}},
		{"object", `{"k":null}`, Object{"k": Null{}}},
		{"padded", "  \"x\"\n", String("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseValueRejects(t *testing.T) {
	for _, input := range []string{``, `3.14`, `1e3`, `nul`, `{"a":1.5}`, `99999999999999999999`} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseValue([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestFromGo(t *testing.T) {
	got, err := FromGo(map[string]any{
		"s": "x",
		"n": 3,
		"f": float64(4),
		"b": false,
		"z": nil,
		"l": []any{"a", int64(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, Object{
		"s": String("x"),
		"n": Int(3),
		"f": Int(4),
		"b": Bool(false),
		"z": Null{},
		"l": Array{String("a"), Int(2)},
	}, got)

	_, err = FromGo(2.5)
	assert.Error(t, err)

	_, err = FromGo(struct{}{})
	assert.Error(t, err)
}

func TestMarshalValueRoundTrip(t *testing.T) {
	original := Object{"list": Array{Int(1), Bool(true), Null{}}, "name": String("<x>")}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Object
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestIsNull(t *testing.T) {
	assert.True(t, IsNull(nil))
	assert.True(t, IsNull(Null{}))
	assert.False(t, IsNull(String("")))
}
