package sheets

import (
	"fmt"

	"github.com/yaklabco/textsheets/pkg/config"
	"github.com/yaklabco/textsheets/pkg/document"
	"github.com/yaklabco/textsheets/pkg/formula"
	"github.com/yaklabco/textsheets/pkg/highlight"
	"github.com/yaklabco/textsheets/pkg/scope"
)

// CellError records a formula that failed for one cell.
type CellError struct {
	SheetID   string
	SheetName string
	Column    string
	Row       int
	Err       error
}

// Error implements the error interface.
func (c CellError) Error() string {
	return fmt.Sprintf("%s.%s row %d: %v", c.SheetName, c.Column, c.Row, c.Err)
}

// Unwrap returns the formula error.
func (c CellError) Unwrap() error {
	return c.Err
}

// Result is the outcome of one pipeline run.
type Result struct {
	// DocumentID identifies the evaluated document.
	DocumentID string

	// Document is the snapshot the run read.
	Document *document.Document

	// Configs are the sheets in evaluation order.
	Configs []config.SheetConfig

	// Highlights are the derived highlights of every sheet, sorted by start.
	// Ties keep sheet order, then row order.
	Highlights []*highlight.Highlight

	// Sheets maps each sheet name to its rows, as formulas see them.
	Sheets *scope.Scope

	// Rows maps each sheet id to its rows.
	Rows map[string][]*scope.Scope

	// CellErrors lists failed cells in evaluation order.
	CellErrors []CellError
}

func newResult(doc *document.Document, configs []config.SheetConfig) *Result {
	return &Result{
		DocumentID: doc.ID,
		Document:   doc,
		Configs:    configs,
		Highlights: []*highlight.Highlight{},
		Sheets:     scope.New(),
		Rows:       make(map[string][]*scope.Scope, len(configs)),
	}
}

// HighlightsOf returns the highlights derived from one sheet.
func (r *Result) HighlightsOf(sheetID string) []*highlight.Highlight {
	return highlight.OfSheet(r.Highlights, sheetID)
}

// HighlightsOverlapping returns the highlights touching span, in order.
func (r *Result) HighlightsOverlapping(span document.Span) []*highlight.Highlight {
	return highlight.Overlapping(r.Highlights, span)
}

// Text renders a cell value for display against the evaluated document.
func (r *Result) Text(value any) string {
	return formula.Display(value, r.Document)
}

// ErrorCount returns the number of failed cells.
func (r *Result) ErrorCount() int {
	return len(r.CellErrors)
}

// RemapHighlights maps every highlight through mapper and drops those that
// collapse. It is the cheap approximation used between full runs.
func RemapHighlights(highlights []*highlight.Highlight, mapper highlight.Mapper) []*highlight.Highlight {
	return highlight.Remap(highlights, mapper)
}
