package highlight

import "github.com/yaklabco/textsheets/pkg/document"

// Mapper maps an offset in the text before an edit to the corresponding
// offset after it. Offsets inside deleted text map to a nearby position.
type Mapper func(pos int) int

// Identity is the Mapper for an edit that changes nothing.
func Identity(pos int) int {
	return pos
}

// AssocMapper maps offsets with a bias for positions inside a replaced
// range or at an insertion point: assoc < 0 sticks to the start of the
// replacement, otherwise to its end.
type AssocMapper interface {
	MapPos(pos, assoc int) int
}

type plainMapper Mapper

func (m plainMapper) MapPos(pos, _ int) int {
	return m(pos)
}

// Remap maps both endpoints of every highlight through mapper and drops the
// highlights whose span collapses to zero width. The input is not modified;
// surviving highlights are shallow copies sharing Data.
//
// Remapping is an approximation used between full evaluations.
func Remap(highlights []*Highlight, mapper Mapper) []*Highlight {
	if mapper == nil {
		mapper = Identity
	}
	return RemapAssoc(highlights, plainMapper(mapper))
}

// RemapAssoc is Remap for a bias-aware mapper. Both endpoints map with
// assoc -1: text typed at a highlight's start joins it, text typed at its end
// stays outside, and a replacement of the whole span keeps the highlight over
// the new text.
func RemapAssoc(highlights []*Highlight, mapper AssocMapper) []*Highlight {
	out := make([]*Highlight, 0, len(highlights))
	for _, h := range highlights {
		span := document.Span{
			From: mapper.MapPos(h.Span.From, -1),
			To:   mapper.MapPos(h.Span.To, -1),
		}
		if span.To <= span.From {
			continue
		}

		remapped := *h
		remapped.Span = span
		out = append(out, &remapped)
	}

	return out
}
