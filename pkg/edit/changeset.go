package edit

import "github.com/yaklabco/textsheets/pkg/highlight"

// ChangeSet maps offsets in the text before a set of edits to offsets in the
// text after them.
type ChangeSet struct {
	edits []TextEdit
}

// NewChangeSet creates a change set from prepared edits.
func NewChangeSet(prepared []TextEdit) *ChangeSet {
	return &ChangeSet{edits: prepared}
}

// Edits returns the edits of the change set in application order.
func (c *ChangeSet) Edits() []TextEdit {
	return c.edits
}

// Empty reports whether the change set changes nothing.
func (c *ChangeSet) Empty() bool {
	for _, e := range c.edits {
		if e.Start != e.End || e.NewText != "" {
			return false
		}
	}
	return true
}

// MapPos maps pos through the change set. Positions before an edit are
// unchanged by it and positions after it shift by its delta. The start of a
// replaced range stays at the start of the replacement and its end moves to
// the end of the replacement. Inside the range, assoc < 0 sticks to the
// start and anything else to the end. Only a pure insertion at pos depends
// on assoc at the boundary: assoc < 0 keeps pos before the inserted text.
func (c *ChangeSet) MapPos(pos, assoc int) int {
	delta := 0
	for _, e := range c.edits {
		if pos < e.Start {
			break
		}
		if e.Start == e.End {
			if pos == e.Start {
				if assoc < 0 {
					return pos + delta
				}
				return pos + delta + len(e.NewText)
			}
			delta += e.Delta()
			continue
		}
		if pos >= e.End {
			delta += e.Delta()
			continue
		}
		if pos == e.Start || assoc < 0 {
			return e.Start + delta
		}
		return e.Start + delta + len(e.NewText)
	}
	return pos + delta
}

// Mapper adapts the change set to highlight.Mapper with assoc -1 on both
// endpoints, the default an editor uses when carrying marks through a
// transaction.
func (c *ChangeSet) Mapper() highlight.Mapper {
	return func(pos int) int {
		return c.MapPos(pos, -1)
	}
}
