package edit

import "strings"

// Apply applies a prepared slice of edits to text.
// Edits must come from Prepare.
func Apply(text string, edits []TextEdit) string {
	if len(edits) == 0 {
		return text
	}

	delta := 0
	for _, e := range edits {
		delta += e.Delta()
	}

	var out strings.Builder
	out.Grow(max(len(text)+delta, 0))

	cursor := 0
	for _, e := range edits {
		out.WriteString(text[cursor:e.Start])
		out.WriteString(e.NewText)
		cursor = e.End
	}
	out.WriteString(text[cursor:])

	return out.String()
}

// ApplyText prepares edits against text, applies them, and returns the new
// text along with the change set describing the transformation.
func ApplyText(text string, edits []TextEdit) (string, *ChangeSet, error) {
	prepared, err := Prepare(edits, len(text))
	if err != nil {
		return "", nil, err
	}
	return Apply(text, prepared), NewChangeSet(prepared), nil
}
