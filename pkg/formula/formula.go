// Package formula implements the expression language of sheet columns: a
// lexer and recursive-descent parser producing an AST, an evaluator over
// ordered scope layers, and the built-in functions formulas call.
package formula

import "sync"

// Formula is a parsed formula.
type Formula struct {
	Source string
	Root   Node
}

// Parse parses source into a Formula.
func Parse(source string) (*Formula, error) {
	root, err := ParseExpression(source)
	if err != nil {
		return nil, err
	}
	return &Formula{Source: source, Root: root}, nil
}

// Eval evaluates the formula in env. Failures are *RuntimeError values
// naming the formula source.
func (f *Formula) Eval(env *Env) (any, error) {
	value, err := f.Root.Eval(env)
	if err != nil {
		rt, ok := err.(*RuntimeError)
		if !ok {
			rt = &RuntimeError{Pos: f.Root.Position().Start, Err: err}
		}
		if rt.Formula == "" {
			rt.Formula = f.Source
		}
		return nil, rt
	}
	return value, nil
}

// String returns the normalized form of the formula.
func (f *Formula) String() string {
	return f.Root.String()
}

type tableEntry struct {
	formula *Formula
	err     error
}

// Table caches parsed formulas by source text, so a formula shared by many
// cells and passes is parsed once. It is safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	entries map[string]tableEntry
}

// NewTable creates an empty formula table.
func NewTable() *Table {
	return &Table{entries: make(map[string]tableEntry)}
}

// Parse returns the cached parse of source, parsing it on first use.
// Syntax errors are cached too.
func (t *Table) Parse(source string) (*Formula, error) {
	t.mu.RLock()
	entry, ok := t.entries[source]
	t.mu.RUnlock()
	if ok {
		return entry.formula, entry.err
	}

	f, err := Parse(source)

	t.mu.Lock()
	t.entries[source] = tableEntry{formula: f, err: err}
	t.mu.Unlock()

	return f, err
}

// Len returns the number of cached sources.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
