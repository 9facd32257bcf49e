package highlight

import (
	"cmp"
	"slices"

	"github.com/yaklabco/textsheets/pkg/document"
)

// Sort orders highlights ascending by span start. The sort is stable, so
// ties keep their existing order.
func Sort(highlights []*Highlight) {
	slices.SortStableFunc(highlights, func(a, b *Highlight) int {
		return cmp.Compare(a.Span.From, b.Span.From)
	})
}

// OfSheet returns the highlights produced by the given sheet, in order.
func OfSheet(highlights []*Highlight, sheetConfigID string) []*Highlight {
	var out []*Highlight
	for _, h := range highlights {
		if h.SheetConfigID == sheetConfigID {
			out = append(out, h)
		}
	}
	return out
}

// Overlapping returns the highlights whose span overlaps span, in order.
// Editors use this to find the rows under the current selection.
func Overlapping(highlights []*Highlight, span document.Span) []*Highlight {
	var out []*Highlight
	for _, h := range highlights {
		if h.Span.Overlaps(span) {
			out = append(out, h)
		}
	}
	return out
}
