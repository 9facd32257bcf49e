package formula

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for categorizing formula failures.
var (
	// ErrRegexProgress is returned when a regular expression matches the
	// empty string and the search cursor would not advance.
	ErrRegexProgress = errors.New("regex matches the empty string and would not advance")

	ErrUnknownIdentifier = errors.New("unknown identifier")
	ErrNotCallable       = errors.New("value is not a function")
	ErrNilMember         = errors.New("cannot read property of undefined")
	ErrArgument          = errors.New("invalid argument")
	ErrCallDepth         = errors.New("maximum call depth exceeded")
)

// SyntaxError reports a malformed formula.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}

// RuntimeError reports a failure while evaluating one formula.
// Formula is filled in once the error leaves the evaluator.
type RuntimeError struct {
	Formula string
	Pos     int
	Err     error
}

func (e *RuntimeError) Error() string {
	if e.Formula == "" {
		return fmt.Sprintf("at %d: %v", e.Pos, e.Err)
	}
	return fmt.Sprintf("%s (at %d): %v", e.Formula, e.Pos, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// atPos wraps err in a RuntimeError at pos unless it already is one.
func atPos(pos int, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*RuntimeError); ok {
		return err
	}
	return &RuntimeError{Pos: pos, Err: err}
}

// UnknownIdentifierError names an identifier that no scope layer defines.
type UnknownIdentifierError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownIdentifierError) Error() string {
	msg := fmt.Sprintf("%s is not defined", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *UnknownIdentifierError) Unwrap() error {
	return ErrUnknownIdentifier
}

// argError reports a bad argument to a built-in function.
func argError(fn string, index int, want string, got any) error {
	return fmt.Errorf("%w: %s argument %d must be %s, got %s", ErrArgument, fn, index+1, want, TypeName(got))
}
