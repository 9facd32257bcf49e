package sheets

import (
	"context"
	"slices"
	"strings"

	"github.com/yaklabco/textsheets/internal/logging"
	"github.com/yaklabco/textsheets/pkg/config"
	"github.com/yaklabco/textsheets/pkg/formula"
	"github.com/yaklabco/textsheets/pkg/highlight"
)

type lookupKey struct{}

// lookupChain returns the ids of the documents being evaluated, outermost
// first.
func lookupChain(ctx context.Context) []string {
	chain, _ := ctx.Value(lookupKey{}).([]string)
	return chain
}

func withLookup(ctx context.Context, docID string) context.Context {
	chain := lookupChain(ctx)
	return context.WithValue(ctx, lookupKey{}, append(slices.Clip(chain), docID))
}

// lookup serves DATA_FROM_DOC. It evaluates the named document and returns
// the text of one column for each row of one of its sheets. Unknown names,
// cycles and lookups nested deeper than MaxLookupDepth yield an empty list.
func (e *Engine) lookup(ctx context.Context, docName, sheetName, columnName string) []any {
	logger := logging.FromContext(ctx).With(
		logging.FieldDocument, docName,
		logging.FieldSheet, sheetName,
		logging.FieldColumn, columnName)

	if e.resolver == nil {
		logger.Warn("lookup: no documents to resolve")
		return []any{}
	}
	doc, configs, ok := e.resolver.ResolveDocument(docName)
	if !ok {
		logger.Warn("lookup: unknown document")
		return []any{}
	}
	idx := slices.IndexFunc(configs, func(c config.SheetConfig) bool { return c.Name == sheetName })
	if idx < 0 {
		logger.Warn("lookup: unknown sheet")
		return []any{}
	}

	chain := lookupChain(ctx)
	if slices.Contains(chain, doc.ID) {
		logger.Warn("lookup: cycle cut", logging.FieldChain, strings.Join(append(slices.Clip(chain), doc.ID), " -> "))
		return []any{}
	}
	if len(chain) > e.opts.MaxLookupDepth {
		logger.Warn("lookup: too deep", logging.FieldDepth, len(chain))
		return []any{}
	}

	result, err := e.EvaluateSheets(ctx, doc, configs)
	if err != nil {
		logger.Warn("lookup: evaluation failed", logging.FieldError, err)
		return []any{}
	}

	rows := result.Rows[configs[idx].ID]
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		value, ok := row.Get(columnName)
		if !ok {
			continue
		}
		if h, isHighlight := value.(*highlight.Highlight); isHighlight {
			out = append(out, doc.SpanText(h.Span))
			continue
		}
		out = append(out, formula.Display(value, doc))
	}
	return out
}
