// Package highlight defines the span-anchored record produced by sheet
// evaluation and consumed by the editor decoration layer and by later
// formulas.
package highlight

import (
	"github.com/yaklabco/textsheets/pkg/document"
	"github.com/yaklabco/textsheets/pkg/scope"
)

// Field names a highlight exposes in addition to its data fields.
const (
	FieldSpan          = "span"
	FieldData          = "data"
	FieldDocumentID    = "documentId"
	FieldSheetConfigID = "sheetConfigId"
)

// Highlight is one evaluated row, or one match, anchored to a span of a
// document.
type Highlight struct {
	// DocumentID identifies the document the span refers to.
	DocumentID string `json:"documentId"`

	// SheetConfigID identifies the sheet that produced the highlight.
	SheetConfigID string `json:"sheetConfigId"`

	// Span is the covered byte range.
	Span document.Span `json:"span"`

	// Data holds the row's named values. Matches carry an empty mapping.
	Data *scope.Scope `json:"data"`
}

// New creates a highlight with empty data.
func New(documentID, sheetConfigID string, span document.Span) *Highlight {
	return &Highlight{
		DocumentID:    documentID,
		SheetConfigID: sheetConfigID,
		Span:          span,
		Data:          scope.New(),
	}
}

// Field implements scope.Fielder. The record's own attributes take
// precedence over data fields of the same name.
func (h *Highlight) Field(name string) (any, bool) {
	switch name {
	case FieldSpan:
		return []any{float64(h.Span.From), float64(h.Span.To)}, true
	case FieldData:
		return h.Data, true
	case FieldDocumentID:
		return h.DocumentID, true
	case FieldSheetConfigID:
		return h.SheetConfigID, true
	default:
		return h.Data.Get(name)
	}
}

// Text resolves the highlight to the text it covers in doc.
func (h *Highlight) Text(doc *document.Document) string {
	return doc.SpanText(h.Span)
}

// Equal reports whether two highlights are anchored identically: same
// document, same sheet, same span. Data is not compared.
func Equal(a, b *Highlight) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.DocumentID == b.DocumentID &&
		a.SheetConfigID == b.SheetConfigID &&
		a.Span == b.Span
}
