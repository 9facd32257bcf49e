// Package sheets runs the sheet pipeline: it evaluates each sheet's column
// formulas over a document, derives one highlight per row and feeds the
// accumulated highlights to later sheets.
package sheets

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/textsheets/internal/logging"
	"github.com/yaklabco/textsheets/pkg/config"
	"github.com/yaklabco/textsheets/pkg/document"
	"github.com/yaklabco/textsheets/pkg/formula"
	"github.com/yaklabco/textsheets/pkg/highlight"
	"github.com/yaklabco/textsheets/pkg/scope"
)

// Resolver finds documents by name together with the sheets attached to
// them. It serves cross-document lookups.
type Resolver interface {
	ResolveDocument(name string) (*document.Document, []config.SheetConfig, bool)
}

// Options configures an Engine.
type Options struct {
	// MaxLookupDepth bounds nested DATA_FROM_DOC lookups. Zero means
	// config.DefaultMaxLookupDepth.
	MaxLookupDepth int

	// Formulas is the parse cache. Nil means a private cache.
	Formulas *formula.Table
}

// Engine evaluates sheets. It keeps no per-pass state and is safe for
// concurrent use.
type Engine struct {
	resolver Resolver
	formulas *formula.Table
	opts     Options
}

// NewEngine creates an engine. A nil resolver resolves no documents.
func NewEngine(resolver Resolver, opts Options) *Engine {
	if opts.MaxLookupDepth <= 0 {
		opts.MaxLookupDepth = config.DefaultMaxLookupDepth
	}
	formulas := opts.Formulas
	if formulas == nil {
		formulas = formula.NewTable()
	}
	return &Engine{resolver: resolver, formulas: formulas, opts: opts}
}

// EvaluateSheets runs the full pipeline over doc. Sheets are evaluated in
// the given order; formula failures are captured per cell and never abort
// the pass. The only error is cancellation of ctx, checked between sheets.
func (e *Engine) EvaluateSheets(
	ctx context.Context,
	doc *document.Document,
	configs []config.SheetConfig,
) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = withLookup(ctx, doc.ID)
	logger := logging.FromContext(ctx).With(logging.FieldDocument, doc.Name)

	result := newResult(doc, configs)

	sheetIDs := make(map[string]string, len(configs))
	for _, sheet := range configs {
		if _, seen := sheetIDs[sheet.Name]; !seen {
			sheetIDs[sheet.Name] = sheet.ID
		}
	}

	for _, sheet := range configs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("evaluation cancelled: %w", err)
		}

		api := formula.API(&formula.Context{
			Ctx:           ctx,
			Document:      doc,
			SheetConfigID: sheet.ID,
			Highlights:    result.Highlights,
			SheetIDs:      sheetIDs,
			Lookup:        e.lookup,
		})
		base := formula.NewEnv(result.Sheets, api)

		sheetLogger := logger.With(logging.FieldSheet, sheet.Name)
		rows := e.evaluateColumns(sheetLogger, sheet, base, result)

		values := make([]any, len(rows))
		for idx, row := range rows {
			values[idx] = row
		}
		result.Sheets.Set(sheet.Name, values)
		result.Rows[sheet.ID] = rows

		derived := deriveHighlights(doc, sheet.ID, rows)
		merged := slices.Concat(result.Highlights, derived)
		highlight.Sort(merged)
		result.Highlights = merged

		sheetLogger.Debug("evaluated sheet",
			logging.FieldRows, len(rows),
			logging.FieldHighlightsTotal, len(derived))
	}

	return result, nil
}

// evaluateColumns builds the rows of one sheet. The first column fans a
// list result out into one row per element; later columns are evaluated
// once per existing row with that row as the innermost scope.
func (e *Engine) evaluateColumns(
	logger *log.Logger,
	sheet config.SheetConfig,
	base *formula.Env,
	result *Result,
) []*scope.Scope {
	var rows []*scope.Scope

	for colIdx, prop := range sheet.Properties {
		if colIdx == 0 {
			value := e.evalCell(logger, base.Push(scope.New()), sheet, prop, 0, result)
			if list, ok := value.([]any); ok {
				rows = make([]*scope.Scope, 0, len(list))
				for _, item := range list {
					rows = append(rows, scope.Of(prop.Name, item))
				}
			} else {
				rows = []*scope.Scope{scope.Of(prop.Name, value)}
			}
			continue
		}

		for rowIdx, row := range rows {
			row.Set(prop.Name, e.evalCell(logger, base.Push(row), sheet, prop, rowIdx, result))
		}
	}

	return rows
}

// evalCell evaluates one cell. A failure becomes an error value in the
// cell and is recorded on the result.
func (e *Engine) evalCell(
	logger *log.Logger,
	env *formula.Env,
	sheet config.SheetConfig,
	prop config.Property,
	row int,
	result *Result,
) any {
	f, err := e.formulas.Parse(prop.Formula)
	if err == nil {
		var value any
		value, err = f.Eval(env)
		if err == nil {
			return value
		}
	}

	result.CellErrors = append(result.CellErrors, CellError{
		SheetID:   sheet.ID,
		SheetName: sheet.Name,
		Column:    prop.Name,
		Row:       row,
		Err:       err,
	})
	logger.Debug("cell failed",
		logging.FieldColumn, prop.Name,
		logging.FieldRow, row,
		logging.FieldError, err)

	return formula.NewErrorValue(err)
}

// deriveHighlights returns one highlight per row that holds at least one
// highlight of doc. Its span runs from the smallest start to the largest end
// of those highlights and its data is the row.
func deriveHighlights(doc *document.Document, sheetID string, rows []*scope.Scope) []*highlight.Highlight {
	out := make([]*highlight.Highlight, 0, len(rows))
	for _, row := range rows {
		var (
			span  document.Span
			found bool
		)
		row.Each(func(_ string, value any) {
			h, ok := value.(*highlight.Highlight)
			if !ok || h.DocumentID != doc.ID {
				return
			}
			if !found {
				span, found = h.Span, true
				return
			}
			span = span.Union(h.Span)
		})
		if !found {
			continue
		}

		h := highlight.New(doc.ID, sheetID, span)
		h.Data = row
		out = append(out, h)
	}
	return out
}
