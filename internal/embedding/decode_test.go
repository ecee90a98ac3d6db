package embedding

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromJSON(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Shape
	}{
		{name: "flat json", raw: fromJSON(t, `[0.1, 0.2]`), want: ShapeFlat},
		{name: "empty array", raw: fromJSON(t, `[]`), want: ShapeFlat},
		{name: "typed flat", raw: []float64{1, 2}, want: ShapeFlat},
		{name: "nested json", raw: fromJSON(t, `[[0.1], [0.2]]`), want: ShapeNested},
		{name: "typed nested", raw: [][]float32{{1}}, want: ShapeNested},
		{name: "keyed", raw: fromJSON(t, `{"embedding": [1]}`), want: ShapeKeyed},
		{name: "string", raw: "0.1,0.2", want: ShapeUnknown},
		{name: "mixed array", raw: fromJSON(t, `[1, [2]]`), want: ShapeUnknown},
		{name: "array of strings", raw: fromJSON(t, `["a"]`), want: ShapeUnknown},
		{name: "nil", raw: nil, want: ShapeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.raw))
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Vector
	}{
		{name: "flat", raw: fromJSON(t, `[0.5, -1, 2]`), want: Vector{0.5, -1, 2}},
		{name: "nested", raw: fromJSON(t, `[[1, 2], [3]]`), want: Vector{1, 2, 3}},
		{name: "deeply nested", raw: fromJSON(t, `[[[1], [2]], [[3]]]`), want: Vector{1, 2, 3}},
		{name: "embedding key", raw: fromJSON(t, `{"embedding": [1, 2]}`), want: Vector{1, 2}},
		{name: "vector key", raw: fromJSON(t, `{"vector": [[1, 2]]}`), want: Vector{1, 2}},
		{name: "data key gradio envelope", raw: fromJSON(t, `{"data": [[4, 5]], "duration": 0.1}`), want: Vector{4, 5}},
		{name: "emb key", raw: fromJSON(t, `{"emb": [7]}`), want: Vector{7}},
		{name: "key preference order", raw: fromJSON(t, `{"emb": [9], "embedding": [1]}`), want: Vector{1}},
		{name: "keyed inside keyed", raw: fromJSON(t, `{"data": {"embedding": [3]}}`), want: Vector{3}},
		{name: "typed float32", raw: []float32{1.5}, want: Vector{1.5}},
		{name: "empty", raw: fromJSON(t, `[]`), want: Vector{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Unrecognized(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{name: "object without known key", raw: fromJSON(t, `{"result": [1]}`)},
		{name: "string", raw: "oops"},
		{name: "number", raw: 3.0},
		{name: "mixed", raw: fromJSON(t, `[1, "a"]`)},
		{name: "nil", raw: nil},
		{name: "keyed to string", raw: fromJSON(t, `{"embedding": "1,2"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			assert.ErrorIs(t, err, ErrUnrecognizedShape)
		})
	}
}

func TestDecode_NonFinite(t *testing.T) {
	_, err := Decode([]float64{1, math.NaN()})
	assert.ErrorIs(t, err, ErrNonFinite)

	_, err = Decode([]any{math.Inf(1)})
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestVector_Serialize(t *testing.T) {
	assert.Equal(t, "[0.5,-1,2]", Vector{0.5, -1, 2}.Serialize())
	assert.Equal(t, "[]", Vector(nil).Serialize())

	fallback := Fallback(32).Serialize()
	var back []float64
	require.NoError(t, json.Unmarshal([]byte(fallback), &back))
	assert.Len(t, back, 32)
	for _, v := range back {
		assert.Zero(t, v)
	}
}
