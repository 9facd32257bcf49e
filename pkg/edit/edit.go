// Package edit provides text edits, their application to document text, and
// the position mapping used to carry highlights across an edit.
package edit

// TextEdit replaces the bytes [Start, End) of a text with NewText.
type TextEdit struct {
	// Start is the byte index where the edit begins (inclusive).
	Start int `json:"start" yaml:"start"`

	// End is the byte index where the edit ends (exclusive).
	End int `json:"end" yaml:"end"`

	// NewText is the replacement text.
	NewText string `json:"text" yaml:"text"`
}

// Insert returns an edit that inserts text at offset.
func Insert(offset int, text string) TextEdit {
	return TextEdit{Start: offset, End: offset, NewText: text}
}

// Delete returns an edit that deletes bytes [start, end).
func Delete(start, end int) TextEdit {
	return TextEdit{Start: start, End: end}
}

// Replace returns an edit that replaces bytes [start, end) with text.
func Replace(start, end int, text string) TextEdit {
	return TextEdit{Start: start, End: end, NewText: text}
}

// Delta is the change in text length caused by the edit.
func (e TextEdit) Delta() int {
	return len(e.NewText) - (e.End - e.Start)
}
