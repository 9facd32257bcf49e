package formula_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/textsheets/pkg/document"
	"github.com/yaklabco/textsheets/pkg/formula"
	"github.com/yaklabco/textsheets/pkg/highlight"
	"github.com/yaklabco/textsheets/pkg/scope"
)

const recipe = "2 cups flour\n1 tsp salt\n"

// wordHighlights returns the words of recipe as highlights of sheet "w".
func wordHighlights() []*highlight.Highlight {
	spans := []document.Span{
		{From: 2, To: 6},   // cups
		{From: 7, To: 12},  // flour
		{From: 15, To: 18}, // tsp
		{From: 19, To: 23}, // salt
	}
	out := make([]*highlight.Highlight, 0, len(spans))
	for _, s := range spans {
		out = append(out, highlight.New("doc", "w", s))
	}
	return out
}

func newContext(text string, hs []*highlight.Highlight) *formula.Context {
	return &formula.Context{
		Ctx:           context.Background(),
		Document:      document.New("doc", "recipe", text),
		SheetConfigID: "current",
		Highlights:    hs,
		SheetIDs:      map[string]string{"word": "w", "current": "current"},
	}
}

func evalIn(t *testing.T, c *formula.Context, source string, row *scope.Scope) (any, error) {
	t.Helper()
	return eval(t, source, row, formula.API(c))
}

func texts(t *testing.T, doc *document.Document, value any) []string {
	t.Helper()

	list, ok := value.([]any)
	require.True(t, ok, "want a list, got %T", value)

	out := make([]string, 0, len(list))
	for _, item := range list {
		h, ok := item.(*highlight.Highlight)
		require.True(t, ok, "want a highlight, got %T", item)
		out = append(out, h.Text(doc))
	}
	return out
}

func TestEachLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "trailing newline dropped", text: "a\nb\n", want: []string{"a", "b"}},
		{name: "no trailing newline", text: "a\nb", want: []string{"a", "b"}},
		{name: "empty document", text: "", want: []string{""}},
		{name: "blank lines kept", text: "a\n\nb", want: []string{"a", "", "b"}},
		{name: "crlf excluded", text: "a\r\nb\r\n", want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newContext(tt.text, nil)
			got, err := evalIn(t, c, `EACH_LINE()`, nil)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, texts(t, c.Document, got)); diff != "" {
				t.Errorf("EACH_LINE() mismatch (-want +got):\n%s", diff)
			}
			for _, item := range got.([]any) {
				h := item.(*highlight.Highlight)
				assert.Equal(t, "current", h.SheetConfigID)
				assert.Equal(t, 0, h.Data.Len())
			}
		})
	}
}

func TestHighlightsOfRegex(t *testing.T) {
	t.Parallel()

	c := newContext(recipe, nil)

	got, err := evalIn(t, c, `HIGHLIGHTS_OF_REGEX("\\d+")`, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, texts(t, c.Document, got))

	got, err = evalIn(t, c, `HIGHLIGHTS_OF_REGEX("CUPS|TSP", "gi")`, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"cups", "tsp"}, texts(t, c.Document, got))

	got, err = evalIn(t, c, `HIGHLIGHTS_OF_REGEX("^\\w+$", "m")`, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHighlightsOfRegex_EmptyMatchFailsFast(t *testing.T) {
	t.Parallel()

	for _, pattern := range []string{`"x*"`, `"^"`, `"\\b"`} {
		t.Run(pattern, func(t *testing.T) {
			t.Parallel()

			_, err := evalIn(t, newContext(recipe, nil), `HIGHLIGHTS_OF_REGEX(`+pattern+`)`, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, formula.ErrRegexProgress)
		})
	}
}

func TestHighlightsOfRegex_BadInput(t *testing.T) {
	t.Parallel()

	c := newContext(recipe, nil)

	for _, source := range []string{
		`HIGHLIGHTS_OF_REGEX("(")`,
		`HIGHLIGHTS_OF_REGEX("a", "y")`,
		`HIGHLIGHTS_OF_REGEX(1)`,
	} {
		_, err := evalIn(t, c, source, nil)
		require.Error(t, err, source)
		assert.ErrorIs(t, err, formula.ErrArgument, source)
	}
}

func TestHighlightsOf(t *testing.T) {
	t.Parallel()

	c := newContext("a.b A.B a+b", nil)

	got, err := evalIn(t, c, `HIGHLIGHTS_OF("a.b")`, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.b"}, texts(t, c.Document, got))

	got, err = evalIn(t, c, `HIGHLIGHTS_OF(["a.b", 3, "a+b"], true)`, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.b", "A.B", "a+b"}, texts(t, c.Document, got))
}

func TestValuesOfType(t *testing.T) {
	t.Parallel()

	words := wordHighlights()
	c := newContext(recipe, words)

	got, err := evalIn(t, c, `VALUES_OF_TYPE("word")`, nil)
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = evalIn(t, c, `VALUES_OF_TYPE("nonexistent")`, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{}, got)
}

func TestNextPrev(t *testing.T) {
	t.Parallel()

	words := wordHighlights()
	c := newContext(recipe, words)
	quantity := highlight.New("doc", "q", document.Span{From: 13, To: 14}) // "1"
	row := scope.Of("quantity", quantity)

	tests := []struct {
		source string
		want   any
	}{
		{source: `NEXT(quantity, HAS_TYPE("word"))`, want: words[2]},
		{source: `NEXT(quantity)(true)`, want: words[2]},
		{source: `NEXT(quantity, w => HAS_TEXT_ON_LEFT("tsp", w))`, want: words[3]},
		{source: `NEXT(quantity, false)`, want: nil},
		{source: `PREV(quantity, true)`, want: words[1]},
		{source: `PREV(quantity, HAS_TYPE("nonexistent"))`, want: nil},
		{source: `NEXT("not a highlight", true)`, want: nil},
		{source: `NEXT(NEXT(quantity, true), true)`, want: words[3]},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			got, err := evalIn(t, c, tt.source, row)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.Same(t, tt.want, got)
		})
	}

	assert.Len(t, c.Highlights, 4)
	assert.Same(t, words[0], c.Highlights[0], "PREV must not reorder the highlight list")
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	words := wordHighlights()
	c := newContext(recipe, words)
	row := scope.New()
	row.Set("cups", words[0])
	row.Set("flour", words[1])
	row.Set("tsp", words[2])

	tests := []struct {
		source string
		want   any
	}{
		{source: `HAS_TYPE("word", cups)`, want: true},
		{source: `HAS_TYPE("current")(cups)`, want: false},
		{source: `HAS_TEXT_ON_LEFT("2", cups)`, want: true},
		{source: `HAS_TEXT_ON_RIGHT("flour", cups)`, want: true},
		{source: `HAS_TEXT_ON_RIGHT("1", flour)`, want: true},
		{source: `IS_ON_SAME_LINE_AS(cups, flour)`, want: true},
		{source: `IS_ON_SAME_LINE_AS(cups)(tsp)`, want: false},
		{source: `FIRST(FILTER(VALUES_OF_TYPE("word"), IS_ON_SAME_LINE_AS(tsp))) === tsp`, want: true},
		{source: `SECOND([1])`, want: nil},
		{source: `FILTER([1, 0, 2], x => x).length`, want: 2.0},
		{source: `FILTER([1, 2], false).length`, want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			got, err := evalIn(t, c, tt.source, row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListFunctions_RejectNonLists(t *testing.T) {
	t.Parallel()

	c := newContext(recipe, nil)
	for _, source := range []string{`FIRST("abc")`, `SECOND(1)`, `FILTER(null, true)`} {
		_, err := evalIn(t, c, source, nil)
		require.Error(t, err, source)
		assert.ErrorIs(t, err, formula.ErrArgument, source)
	}
}

func TestDataFromDoc(t *testing.T) {
	t.Parallel()

	c := newContext(recipe, nil)

	got, err := evalIn(t, c, `DATA_FROM_DOC("other", "sheet", "col")`, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{}, got, "no lookup configured")

	var calls [][]string
	c.Lookup = func(_ context.Context, doc, sheet, column string) []any {
		calls = append(calls, []string{doc, sheet, column})
		return []any{"x"}
	}

	got, err = evalIn(t, c, `DATA_FROM_DOC("other", "sheet", "col")`, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"x"}, got)
	assert.Equal(t, [][]string{{"other", "sheet", "col"}}, calls)

	got, err = evalIn(t, c, `DATA_FROM_DOC("other", 1, "col")`, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{}, got)
}

func TestReferences(t *testing.T) {
	t.Parallel()

	api := formula.API(newContext("", nil))
	refs := formula.References()

	require.Len(t, refs, api.Len())
	for _, ref := range refs {
		value, ok := api.Get(ref.Name)
		require.True(t, ok, ref.Name)
		fn, ok := value.(*formula.Func)
		require.True(t, ok, ref.Name)
		assert.Equal(t, ref.Curried, fn.Curried, ref.Name)
	}

	_, ok := formula.LookupReference("NEXT")
	assert.True(t, ok)
}
