package formula

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/textsheets/pkg/document"
	"github.com/yaklabco/textsheets/pkg/highlight"
	"github.com/yaklabco/textsheets/pkg/scope"
)

// ErrorMarker is how an error value is displayed in a cell.
const ErrorMarker = "#Err"

// ErrorValue marks a cell whose formula failed. It wraps the cause.
type ErrorValue struct {
	Err error
}

// NewErrorValue wraps err as a cell value.
func NewErrorValue(err error) *ErrorValue {
	return &ErrorValue{Err: err}
}

func (e *ErrorValue) Error() string {
	return e.Err.Error()
}

func (e *ErrorValue) Unwrap() error {
	return e.Err
}

func (e *ErrorValue) String() string {
	return ErrorMarker
}

// MarshalJSON encodes the error as {"error": message}.
func (e *ErrorValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"error": e.Err.Error()})
}

// Func is a callable value: a built-in, a partially applied built-in, or a
// lambda written in a formula.
type Func struct {
	// Name is the built-in name, or empty for lambdas.
	Name string

	// Params names the parameters still expected.
	Params []string

	// Curried functions called with fewer arguments than Params return a
	// function expecting the rest.
	Curried bool

	call func(args []any) (any, error)
}

// NewFunc creates a function. Missing arguments are passed as nil.
func NewFunc(name string, params []string, call func(args []any) (any, error)) *Func {
	return &Func{Name: name, Params: params, call: call}
}

// Call invokes the function with args.
func (f *Func) Call(args []any) (any, error) {
	if len(args) >= len(f.Params) {
		return f.call(args)
	}

	if !f.Curried {
		padded := make([]any, len(f.Params))
		copy(padded, args)
		return f.call(padded)
	}

	if len(args) == 0 {
		return f, nil
	}

	bound := slices.Clone(args)
	return &Func{
		Name:    f.Name,
		Params:  f.Params[len(bound):],
		Curried: true,
		call: func(rest []any) (any, error) {
			return f.call(append(slices.Clone(bound), rest...))
		},
	}, nil
}

func (f *Func) String() string {
	name := f.Name
	if name == "" {
		name = "lambda"
	}
	return name + "(" + strings.Join(f.Params, ", ") + ")"
}

// MarshalJSON encodes the function as its signature.
func (f *Func) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// TypeName names the type of v as formulas see it.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "undefined"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "list"
	case *scope.Scope:
		return "row"
	case *highlight.Highlight:
		return "highlight"
	case *ErrorValue:
		return "error"
	case *Func:
		return "function"
	default:
		return "unknown"
	}
}

// Truthy reports whether v counts as true in a condition.
// Undefined, false, 0, NaN, the empty string and errors are false.
func Truthy(v any) bool {
	switch typed := v.(type) {
	case nil:
		return false
	case bool:
		return typed
	case float64:
		return typed != 0 && !math.IsNaN(typed)
	case string:
		return typed != ""
	case *ErrorValue:
		return false
	default:
		return true
	}
}

// ToNumber converts v to a number. Values without a numeric reading are NaN.
func ToNumber(v any) float64 {
	switch typed := v.(type) {
	case float64:
		return typed
	case bool:
		if typed {
			return 1
		}
		return 0
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return 0
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return n
	default:
		return math.NaN()
	}
}

// StrictEqual compares without coercion. Lists, rows, highlights and
// functions compare by identity.
func StrictEqual(a, b any) bool {
	switch typed := a.(type) {
	case nil:
		return b == nil
	case string:
		other, ok := b.(string)
		return ok && typed == other
	case float64:
		other, ok := b.(float64)
		return ok && typed == other
	case bool:
		other, ok := b.(bool)
		return ok && typed == other
	case []any:
		other, ok := b.([]any)
		return ok && len(typed) > 0 && len(typed) == len(other) && &typed[0] == &other[0]
	default:
		return a == b
	}
}

// LooseEqual compares like StrictEqual, except that numbers, strings and
// booleans of different types are compared numerically.
func LooseEqual(a, b any) bool {
	if isPrimitive(a) && isPrimitive(b) && TypeName(a) != TypeName(b) {
		return ToNumber(a) == ToNumber(b)
	}
	return StrictEqual(a, b)
}

func isPrimitive(v any) bool {
	switch v.(type) {
	case string, float64, bool:
		return true
	default:
		return false
	}
}

// FormatNumber formats n without trailing zeros.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	default:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
}

// Display renders v as text. Highlights resolve to the text they cover when
// doc is non-nil and to their span otherwise.
func Display(v any, doc *document.Document) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return FormatNumber(typed)
	case bool:
		return strconv.FormatBool(typed)
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			parts = append(parts, Display(item, doc))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *scope.Scope:
		parts := make([]string, 0, typed.Len())
		typed.Each(func(name string, value any) {
			parts = append(parts, name+": "+Display(value, doc))
		})
		return "{" + strings.Join(parts, ", ") + "}"
	case *highlight.Highlight:
		if doc != nil && doc.ID == typed.DocumentID {
			return typed.Text(doc)
		}
		return typed.Span.String()
	case *ErrorValue:
		return ErrorMarker
	case *Func:
		return typed.String()
	default:
		return ""
	}
}

// length returns the length property of strings and lists.
func length(v any) (float64, bool) {
	switch typed := v.(type) {
	case string:
		return float64(utf8.RuneCountInString(typed)), true
	case []any:
		return float64(len(typed)), true
	default:
		return 0, false
	}
}
