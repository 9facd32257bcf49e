package formula

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/yaklabco/textsheets/pkg/document"
	"github.com/yaklabco/textsheets/pkg/highlight"
	"github.com/yaklabco/textsheets/pkg/scope"
)

// Lookup evaluates another document's sheets and returns the text of one
// column for every row. It returns an empty list when the document, sheet
// or column cannot be resolved.
type Lookup func(ctx context.Context, docName, sheetName, columnName string) []any

// Context is the state the built-in functions read during one sheet's
// evaluation. None of it is modified.
type Context struct {
	// Ctx is carried into cross-document lookups.
	Ctx context.Context

	// Document is the document under evaluation.
	Document *document.Document

	// SheetConfigID identifies the sheet being evaluated.
	SheetConfigID string

	// Highlights are the highlights accumulated from earlier sheets in this
	// pass, sorted by start.
	Highlights []*highlight.Highlight

	// SheetIDs maps the names of this pass's sheets to their ids.
	SheetIDs map[string]string

	// Lookup serves DATA_FROM_DOC. A nil Lookup resolves nothing.
	Lookup Lookup
}

// API returns the built-in functions bound to c as a scope layer.
func API(c *Context) *scope.Scope {
	b := &builtins{ctx: c}

	impls := map[string]func(args []any) (any, error){
		FnEachLine:         b.eachLine,
		FnHighlightsOfRe:   b.highlightsOfRegex,
		FnHighlightsOf:     b.highlightsOf,
		FnValuesOfType:     b.valuesOfType,
		FnNext:             b.next,
		FnPrev:             b.prev,
		FnHasType:          b.hasType,
		FnHasTextOnLeft:    b.hasTextOnLeft,
		FnHasTextOnRight:   b.hasTextOnRight,
		FnIsOnSameLineAs:   b.isOnSameLineAs,
		FnFilter:           b.filter,
		FnFirst:            b.first,
		FnSecond:           b.second,
		FnDataFromDocument: b.dataFromDoc,
	}

	api := scope.New()
	for _, ref := range references {
		fn := &Func{Name: ref.Name, Params: ref.Params, Curried: ref.Curried, call: impls[ref.Name]}
		api.Set(ref.Name, fn)
	}
	return api
}

type builtins struct {
	ctx *Context
}

func (b *builtins) newHighlight(span document.Span) *highlight.Highlight {
	return highlight.New(b.ctx.Document.ID, b.ctx.SheetConfigID, span)
}

func (b *builtins) eachLine([]any) (any, error) {
	doc := b.ctx.Document
	count := doc.LineCount()
	if count > 1 {
		if last, _ := doc.Line(count); last.From == last.To {
			count--
		}
	}

	out := make([]any, 0, count)
	for n := 1; n <= count; n++ {
		line, _ := doc.Line(n)
		out = append(out, b.newHighlight(line.Span()))
	}
	return out, nil
}

func (b *builtins) highlightsOfRegex(args []any) (any, error) {
	pattern, ok := args[0].(string)
	if !ok {
		return nil, argError(FnHighlightsOfRe, 0, "a string", args[0])
	}

	var flags string
	if args[1] != nil {
		flags, ok = args[1].(string)
		if !ok {
			return nil, argError(FnHighlightsOfRe, 1, "a string", args[1])
		}
	}

	matches, err := b.matchRegex(pattern, flags)
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (b *builtins) matchRegex(pattern, flags string) ([]any, error) {
	re, err := compileRegex(pattern, flags)
	if err != nil {
		return nil, err
	}

	text := b.ctx.Document.FullText()
	locs := re.FindAllStringIndex(text, -1)

	out := make([]any, 0, len(locs))
	for _, loc := range locs {
		if loc[0] == loc[1] {
			return nil, fmt.Errorf("%w: /%s/ at offset %d", ErrRegexProgress, pattern, loc[0])
		}
		out = append(out, b.newHighlight(document.Span{From: loc[0], To: loc[1]}))
	}
	return out, nil
}

// compileRegex compiles pattern with flags in the formula convention.
// g and u are implied.
func compileRegex(pattern, flags string) (*regexp.Regexp, error) {
	var inline strings.Builder
	for _, flag := range flags {
		switch flag {
		case 'i', 'm', 's':
			if !strings.ContainsRune(inline.String(), flag) {
				inline.WriteRune(flag)
			}
		case 'g', 'u':
		default:
			return nil, fmt.Errorf("%w: unsupported regex flag %q", ErrArgument, flag)
		}
	}

	source := pattern
	if inline.Len() > 0 {
		source = "(?" + inline.String() + ")" + pattern
	}

	re, err := regexp.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid regex: %w", ErrArgument, err)
	}
	return re, nil
}

func (b *builtins) highlightsOf(args []any) (any, error) {
	values, isList := args[0].([]any)
	if !isList {
		values = []any{args[0]}
	}

	var flags string
	if Truthy(args[1]) {
		flags = "i"
	}

	out := make([]any, 0)
	for _, value := range values {
		text, isString := value.(string)
		if !isString {
			continue
		}
		matches, err := b.matchRegex(regexp.QuoteMeta(text), flags)
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	return out, nil
}

func (b *builtins) sheetID(name any) (string, bool) {
	sheetName, ok := name.(string)
	if !ok {
		return "", false
	}
	id, ok := b.ctx.SheetIDs[sheetName]
	return id, ok
}

func (b *builtins) valuesOfType(args []any) (any, error) {
	out := make([]any, 0)
	id, ok := b.sheetID(args[0])
	if !ok {
		return out, nil
	}
	for _, h := range b.ctx.Highlights {
		if h.SheetConfigID == id {
			out = append(out, h)
		}
	}
	return out, nil
}

// matches applies a condition: functions are called with the candidate,
// anything else is a static filter.
func matches(condition, candidate any) (bool, error) {
	fn, isFunc := condition.(*Func)
	if !isFunc {
		return Truthy(condition), nil
	}
	result, err := fn.Call([]any{candidate})
	if err != nil {
		return false, err
	}
	return Truthy(result), nil
}

func (b *builtins) next(args []any) (any, error) {
	target, ok := args[0].(*highlight.Highlight)
	if !ok {
		return nil, nil
	}
	for _, candidate := range b.ctx.Highlights {
		if candidate == target || candidate.Span.To <= target.Span.To {
			continue
		}
		ok, err := matches(args[1], candidate)
		if err != nil {
			return nil, err
		}
		if ok {
			return candidate, nil
		}
	}
	return nil, nil
}

func (b *builtins) prev(args []any) (any, error) {
	target, ok := args[0].(*highlight.Highlight)
	if !ok {
		return nil, nil
	}
	hs := b.ctx.Highlights
	for idx := len(hs) - 1; idx >= 0; idx-- {
		candidate := hs[idx]
		if candidate == target || candidate.Span.To > target.Span.From {
			continue
		}
		ok, err := matches(args[1], candidate)
		if err != nil {
			return nil, err
		}
		if ok {
			return candidate, nil
		}
	}
	return nil, nil
}

func (b *builtins) hasType(args []any) (any, error) {
	target, ok := args[1].(*highlight.Highlight)
	if !ok {
		return false, nil
	}
	id, ok := b.sheetID(args[0])
	return ok && target.SheetConfigID == id, nil
}

func (b *builtins) hasTextOnLeft(args []any) (any, error) {
	target, ok := args[1].(*highlight.Highlight)
	if !ok {
		return false, nil
	}
	before := strings.TrimSpace(b.ctx.Document.Before(target.Span.From))
	return strings.HasSuffix(before, Display(args[0], nil)), nil
}

func (b *builtins) hasTextOnRight(args []any) (any, error) {
	target, ok := args[1].(*highlight.Highlight)
	if !ok {
		return false, nil
	}
	after := strings.TrimSpace(b.ctx.Document.After(target.Span.To))
	return strings.HasPrefix(after, Display(args[0], nil)), nil
}

func (b *builtins) isOnSameLineAs(args []any) (any, error) {
	first, ok := args[0].(*highlight.Highlight)
	if !ok {
		return false, nil
	}
	second, ok := args[1].(*highlight.Highlight)
	if !ok {
		return false, nil
	}

	doc := b.ctx.Document
	startA, endA := doc.LineAt(first.Span.From).Number, doc.LineAt(first.Span.To).Number
	startB, endB := doc.LineAt(second.Span.From).Number, doc.LineAt(second.Span.To).Number
	return startA == endA && startB == endB && startA == startB, nil
}

func (b *builtins) filter(args []any) (any, error) {
	list, ok := args[0].([]any)
	if !ok {
		return nil, argError(FnFilter, 0, "a list", args[0])
	}
	out := make([]any, 0, len(list))
	for _, item := range list {
		ok, err := matches(args[1], item)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (b *builtins) first(args []any) (any, error) {
	return nth(FnFirst, args[0], 0)
}

func (b *builtins) second(args []any) (any, error) {
	return nth(FnSecond, args[0], 1)
}

func nth(fn string, value any, idx int) (any, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, argError(fn, 0, "a list", value)
	}
	if idx >= len(list) {
		return nil, nil
	}
	return list[idx], nil
}

func (b *builtins) dataFromDoc(args []any) (any, error) {
	if b.ctx.Lookup == nil {
		return []any{}, nil
	}
	names := make([]string, len(args[:3]))
	for idx, arg := range args[:3] {
		name, ok := arg.(string)
		if !ok {
			return []any{}, nil
		}
		names[idx] = name
	}

	ctx := b.ctx.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	out := b.ctx.Lookup(ctx, names[0], names[1], names[2])
	if out == nil {
		out = []any{}
	}
	return out, nil
}
