package analysis

import (
	"math"

	"github.com/yaklabco/textsheets/pkg/document"
	"github.com/yaklabco/textsheets/pkg/formula"
	"github.com/yaklabco/textsheets/pkg/highlight"
	"github.com/yaklabco/textsheets/pkg/scope"
)

// maxEncodeDepth bounds nesting; deeper values are reported as display text.
const maxEncodeDepth = 8

// ErrorEntry is how an error value appears in reports.
type ErrorEntry struct {
	Error string `json:"error"`
}

// Encode converts a formula value into a JSON-safe value. Highlights become
// their sheet, span and text. Non-finite numbers and functions become text.
func Encode(value any, doc *document.Document) any {
	return encode(value, doc, 0)
}

func encode(value any, doc *document.Document, depth int) any {
	if depth >= maxEncodeDepth {
		return formula.Display(value, doc)
	}

	switch typed := value.(type) {
	case nil, string, bool:
		return typed
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return formula.FormatNumber(typed)
		}
		return typed
	case []any:
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			out = append(out, encode(item, doc, depth+1))
		}
		return out
	case *scope.Scope:
		out := scope.New()
		typed.Each(func(name string, item any) {
			out.Set(name, encode(item, doc, depth+1))
		})
		return out
	case *highlight.Highlight:
		return newHighlightEntry(typed, doc, nil)
	case *formula.ErrorValue:
		return ErrorEntry{Error: typed.Error()}
	default:
		return formula.Display(typed, doc)
	}
}

// newHighlightEntry resolves a highlight. The text is only known for
// highlights of doc.
func newHighlightEntry(h *highlight.Highlight, doc *document.Document, data *scope.Scope) HighlightEntry {
	entry := HighlightEntry{
		Sheet: h.SheetConfigID,
		Span:  [2]int{h.Span.From, h.Span.To},
		Data:  data,
	}
	if doc != nil && doc.ID == h.DocumentID {
		entry.Text = h.Text(doc)
	}
	return entry
}

// Highlights resolves a list of highlights against doc. With data set, each
// entry carries its row's encoded values.
func Highlights(hs []*highlight.Highlight, doc *document.Document, data bool) []HighlightEntry {
	out := make([]HighlightEntry, 0, len(hs))
	for _, h := range hs {
		var encoded *scope.Scope
		if data && h.Data != nil {
			encoded, _ = Encode(h.Data, doc).(*scope.Scope)
		}
		out = append(out, newHighlightEntry(h, doc, encoded))
	}
	return out
}
