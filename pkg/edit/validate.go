package edit

import (
	"errors"
	"fmt"
	"slices"
)

// Sentinel errors for categorizing invalid edit sets.
var (
	ErrOutOfBounds = errors.New("edit out of bounds")
	ErrOverlap     = errors.New("overlapping edits")
)

// ValidationError describes an edit whose range is invalid for the text.
type ValidationError struct {
	Edit    TextEdit
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit [%d:%d]: %s", e.Edit.Start, e.Edit.End, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrOutOfBounds
}

// ConflictError describes two overlapping edits.
type ConflictError struct {
	First  TextEdit
	Second TextEdit
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("overlapping edits: [%d:%d] and [%d:%d]",
		e.First.Start, e.First.End,
		e.Second.Start, e.Second.End)
}

func (e *ConflictError) Unwrap() error {
	return ErrOverlap
}

// Validate checks that all edits have valid ranges for a text of length
// textLen. It returns the first validation error encountered.
func Validate(edits []TextEdit, textLen int) error {
	for _, e := range edits {
		if e.Start < 0 {
			return &ValidationError{Edit: e, Message: "start offset is negative"}
		}
		if e.End < e.Start {
			return &ValidationError{Edit: e, Message: "end offset is before start offset"}
		}
		if e.End > textLen {
			return &ValidationError{
				Edit:    e,
				Message: fmt.Sprintf("end offset %d exceeds text length %d", e.End, textLen),
			}
		}
	}
	return nil
}

// Sort orders edits by start offset, then by end offset. Insertions at the
// same offset keep their given order.
func Sort(edits []TextEdit) {
	slices.SortStableFunc(edits, func(a, b TextEdit) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return a.End - b.End
	})
}

// DetectConflicts checks a sorted slice for overlapping edits.
func DetectConflicts(edits []TextEdit) error {
	for i := 1; i < len(edits); i++ {
		prev := edits[i-1]
		curr := edits[i]
		if curr.Start < prev.End {
			return &ConflictError{First: prev, Second: curr}
		}
	}
	return nil
}

// Prepare validates edits against a text of length textLen, returns them
// sorted in a new slice, and rejects overlaps.
func Prepare(edits []TextEdit, textLen int) ([]TextEdit, error) {
	if len(edits) == 0 {
		return nil, nil
	}

	if err := Validate(edits, textLen); err != nil {
		return nil, err
	}

	result := slices.Clone(edits)
	Sort(result)

	if err := DetectConflicts(result); err != nil {
		return nil, err
	}

	return result, nil
}
