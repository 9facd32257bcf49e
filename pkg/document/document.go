// Package document provides a read-only view over document text.
//
// A Document is an immutable snapshot: after every edit the host builds a
// fresh Document from the new text. Offsets are byte offsets into the UTF-8
// text.
package document

import "fmt"

// Document is an identified, immutable text buffer with a line index.
type Document struct {
	// ID is the stable identifier of the document.
	ID string

	// Name is the human-readable name used for cross-document lookups.
	Name string

	text  string
	lines []LineInfo
}

// New creates a Document snapshot and builds its line index.
func New(id, name, text string) *Document {
	return &Document{
		ID:    id,
		Name:  name,
		text:  text,
		lines: BuildLines(text),
	}
}

// WithText returns a new snapshot of the same document holding text.
func (d *Document) WithText(text string) *Document {
	return New(d.ID, d.Name, text)
}

// FullText returns the complete document text.
func (d *Document) FullText() string {
	return d.text
}

// Len returns the length of the text in bytes.
func (d *Document) Len() int {
	return len(d.text)
}

// RangeError reports a substring request outside the document bounds.
type RangeError struct {
	From int
	To   int
	Len  int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range [%d, %d) out of bounds for document of length %d", e.From, e.To, e.Len)
}

// Substring returns the text in [from, to).
// It fails with a *RangeError when the range is inverted or out of bounds.
func (d *Document) Substring(from, to int) (string, error) {
	if from < 0 || to > len(d.text) || from > to {
		return "", &RangeError{From: from, To: to, Len: len(d.text)}
	}
	return d.text[from:to], nil
}

// SpanText returns the text covered by span, clamped to the document bounds.
func (d *Document) SpanText(span Span) string {
	clamped := span.Clamp(len(d.text))
	return d.text[clamped.From:clamped.To]
}

// Before returns the text preceding offset, clamped.
func (d *Document) Before(offset int) string {
	return d.text[:clamp(offset, 0, len(d.text))]
}

// After returns the text following offset, clamped.
func (d *Document) After(offset int) string {
	return d.text[clamp(offset, 0, len(d.text)):]
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
