package document

import "fmt"

// Span is a [From, To) byte range in a document.
type Span struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

// Len returns the length of the span in bytes.
func (s Span) Len() int {
	return s.To - s.From
}

// IsEmpty reports whether the span is degenerate.
func (s Span) IsEmpty() bool {
	return s.From == s.To
}

// Contains reports whether offset is within the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.From && offset < s.To
}

// Overlaps reports whether two spans share a position; touching spans overlap.
func (s Span) Overlaps(other Span) bool {
	return s.From <= other.To && other.From <= s.To
}

// Union returns the smallest span covering both spans.
func (s Span) Union(other Span) Span {
	return Span{From: min(s.From, other.From), To: max(s.To, other.To)}
}

// Clamp restricts the span to [0, length].
func (s Span) Clamp(length int) Span {
	from := clamp(s.From, 0, length)
	to := clamp(s.To, from, length)
	return Span{From: from, To: to}
}

func (s Span) String() string {
	return fmt.Sprintf("[%d, %d)", s.From, s.To)
}
