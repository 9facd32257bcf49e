package highlight_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/textsheets/pkg/document"
	"github.com/yaklabco/textsheets/pkg/highlight"
	"github.com/yaklabco/textsheets/pkg/scope"
)

func mk(sheet string, from, to int) *highlight.Highlight {
	return highlight.New("doc", sheet, document.Span{From: from, To: to})
}

func spans(hs []*highlight.Highlight) []document.Span {
	out := make([]document.Span, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.Span)
	}
	return out
}

func TestHighlight_Field(t *testing.T) {
	t.Parallel()

	h := mk("word", 2, 5)
	h.Data.Set("word", "abc")
	h.Data.Set("span", "shadowed")

	v, ok := h.Field("word")
	require.True(t, ok)
	assert.Equal(t, "abc", v)

	v, ok = h.Field("span")
	require.True(t, ok)
	assert.Equal(t, []any{float64(2), float64(5)}, v)

	v, ok = h.Field("sheetConfigId")
	require.True(t, ok)
	assert.Equal(t, "word", v)

	_, ok = h.Field("missing")
	assert.False(t, ok)
}

func TestHighlight_Text(t *testing.T) {
	t.Parallel()

	doc := document.New("doc", "d", "hello world")
	assert.Equal(t, "world", mk("s", 6, 11).Text(doc))
	assert.Equal(t, "world", mk("s", 6, 99).Text(doc))
}

func TestSort_StableByStart(t *testing.T) {
	t.Parallel()

	a := mk("first", 4, 6)
	b := mk("second", 0, 2)
	c := mk("second", 4, 9)
	hs := []*highlight.Highlight{a, b, c}

	highlight.Sort(hs)

	assert.Same(t, b, hs[0])
	assert.Same(t, a, hs[1], "ties keep encounter order")
	assert.Same(t, c, hs[2])
}

func TestRemap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mapper highlight.Mapper
		input  []document.Span
		want   []document.Span
	}{
		{
			name:   "identity leaves spans unchanged",
			mapper: highlight.Identity,
			input:  []document.Span{{From: 0, To: 3}, {From: 5, To: 8}},
			want:   []document.Span{{From: 0, To: 3}, {From: 5, To: 8}},
		},
		{
			name:   "nil mapper is identity",
			mapper: nil,
			input:  []document.Span{{From: 1, To: 2}},
			want:   []document.Span{{From: 1, To: 2}},
		},
		{
			name:   "shift after insertion",
			mapper: func(pos int) int { return pos + 4 },
			input:  []document.Span{{From: 1, To: 2}},
			want:   []document.Span{{From: 5, To: 6}},
		},
		{
			name: "collapsed span is dropped",
			mapper: func(pos int) int {
				if pos >= 5 && pos <= 8 {
					return 5
				}
				return pos
			},
			input: []document.Span{{From: 0, To: 3}, {From: 5, To: 8}},
			want:  []document.Span{{From: 0, To: 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			input := make([]*highlight.Highlight, 0, len(tt.input))
			for _, s := range tt.input {
				input = append(input, mk("s", s.From, s.To))
			}

			got := highlight.Remap(input, tt.mapper)

			if diff := cmp.Diff(tt.want, spans(got)); diff != "" {
				t.Errorf("Remap() spans mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.input, spans(input), "input must not be modified")
		})
	}
}

func TestRemap_SharesData(t *testing.T) {
	t.Parallel()

	h := mk("s", 0, 4)
	h.Data = scope.Of("k", "v")

	got := highlight.Remap([]*highlight.Highlight{h}, highlight.Identity)
	require.Len(t, got, 1)
	assert.NotSame(t, h, got[0])
	assert.Same(t, h.Data, got[0].Data)
	assert.True(t, highlight.Equal(h, got[0]))
}

func TestOverlapping(t *testing.T) {
	t.Parallel()

	hs := []*highlight.Highlight{mk("a", 0, 3), mk("b", 5, 8), mk("a", 10, 12)}

	got := highlight.Overlapping(hs, document.Span{From: 3, To: 6})
	assert.Equal(t, []document.Span{{From: 0, To: 3}, {From: 5, To: 8}}, spans(got))

	assert.Len(t, highlight.OfSheet(hs, "a"), 2)
}
