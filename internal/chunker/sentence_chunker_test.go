package chunker

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentenceChunker_Segment(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{name: "mixed terminators", in: "A。B.C", want: []string{"A", "B", "C"}},
		{name: "trims whitespace", in: "  first sentence.   second one 。 ", want: []string{"first sentence", "second one"}},
		{name: "drops empty fragments", in: "..。. A .。", want: []string{"A"}},
		{name: "no terminator", in: "single", want: []string{"single"}},
		{name: "only whitespace", in: "   ", want: nil},
		{name: "empty", in: "", want: nil},
		{name: "nil", in: nil, want: nil},
		{name: "nan", in: math.NaN(), want: nil},
		{name: "number splits on period", in: 3.25, want: []string{"3", "25"}},
		{name: "chinese text", in: "今天天气很好。我们去公园。", want: []string{"今天天气很好", "我们去公园"}},
	}
	c := NewSentenceChunker()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Segment(tt.in)
			require.NoError(t, err)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSentenceChunker_DoesNotCap(t *testing.T) {
	text := strings.Repeat("s.", 40)
	got, err := NewSentenceChunker().Segment(text)
	require.NoError(t, err)
	assert.Len(t, got, 40)
}

func TestSentenceChunker_CustomTerminators(t *testing.T) {
	got, err := NewSentenceChunker('!').Segment("a!b.c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b.c"}, got)
}
