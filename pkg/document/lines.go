package document

import (
	"sort"
	"strings"
)

// LineInfo holds the byte offsets of one line.
type LineInfo struct {
	// StartOffset is the byte index of the line start.
	StartOffset int

	// NewlineStart is the byte index where newline characters begin.
	// For a line without a trailing newline this equals EndOffset.
	NewlineStart int

	// EndOffset is the byte index just after the newline (or end of text).
	EndOffset int
}

// Line is a 1-based line number together with the span of its body,
// excluding the line terminator.
type Line struct {
	Number int
	From   int
	To     int
}

// Span returns the line body as a Span.
func (l Line) Span() Span {
	return Span{From: l.From, To: l.To}
}

// BuildLines constructs line metadata from text.
// It handles both LF and CRLF line endings. The result always holds at least
// one line; a trailing newline opens a final empty line.
func BuildLines(text string) []LineInfo {
	lines := make([]LineInfo, 0, strings.Count(text, "\n")+1)
	lineStart := 0

	for idx := range len(text) {
		if text[idx] != '\n' {
			continue
		}

		newlineStart := idx
		if idx > 0 && text[idx-1] == '\r' {
			newlineStart = idx - 1
		}

		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: newlineStart,
			EndOffset:    idx + 1,
		})
		lineStart = idx + 1
	}

	// Last line (may be empty).
	lines = append(lines, LineInfo{
		StartOffset:  lineStart,
		NewlineStart: len(text),
		EndOffset:    len(text),
	})

	return lines
}

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// LineAt returns the line containing offset.
// Offsets before the start resolve to the first line, offsets at or past the
// end resolve to the last line.
func (d *Document) LineAt(offset int) Line {
	if offset <= 0 {
		return d.line(0)
	}
	if offset >= len(d.text) {
		return d.line(len(d.lines) - 1)
	}

	// Binary search for the first line ending after offset.
	lineIdx := sort.Search(len(d.lines), func(i int) bool {
		return d.lines[i].EndOffset > offset
	})
	if lineIdx >= len(d.lines) {
		lineIdx = len(d.lines) - 1
	}

	return d.line(lineIdx)
}

// Line returns the 1-based line n, or false if out of range.
func (d *Document) Line(n int) (Line, bool) {
	if n < 1 || n > len(d.lines) {
		return Line{}, false
	}
	return d.line(n - 1), true
}

func (d *Document) line(idx int) Line {
	info := d.lines[idx]
	return Line{
		Number: idx + 1,
		From:   info.StartOffset,
		To:     info.NewlineStart,
	}
}
