package reporter

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/yaklabco/textsheets/internal/ui/pretty"
	"github.com/yaklabco/textsheets/pkg/analysis"
	"github.com/yaklabco/textsheets/pkg/runner"
)

// TextReporter lists each document's highlights as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Documents) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No documents to evaluate."))
		}
		return 0, nil
	}

	opts := r.opts.analysisOptions()
	opts.IncludeRows = false
	opts.IncludeBySheet = false
	report := analysis.Analyze(result, opts)

	errorsByDoc := make(map[string][]analysis.CellErrorEntry)
	for _, cellErr := range report.CellErrors {
		errorsByDoc[cellErr.Document] = append(errorsByDoc[cellErr.Document], cellErr)
	}

	for idx, doc := range report.Documents {
		if idx > 0 {
			fmt.Fprintln(r.bw)
		}
		r.writeDocument(doc, errorsByDoc[doc.Name])
	}

	if r.opts.ShowSummary {
		fmt.Fprintln(r.bw)
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return report.Totals.CellErrors, nil
}

func (r *TextReporter) writeDocument(doc analysis.DocumentReport, cellErrors []analysis.CellErrorEntry) {
	header := r.styles.DocumentName.Render(doc.Name)
	if doc.Path != "" && doc.Path != doc.Name {
		header += r.styles.Dim.Render(" (" + doc.Path + ")")
	}
	fmt.Fprintln(r.bw, header)

	if doc.Error != "" {
		fmt.Fprintf(r.bw, "  %s %s\n", r.styles.Error.Render("error:"), doc.Error)
		return
	}

	if len(doc.Highlights) == 0 {
		fmt.Fprintln(r.bw, r.styles.Dim.Render("  no highlights"))
	}

	spanWidth := 0
	sheetWidth := 0
	for _, h := range doc.Highlights {
		spanWidth = max(spanWidth, len(formatSpan(h.Span)))
		sheetWidth = max(sheetWidth, len(h.Sheet))
	}

	for _, h := range doc.Highlights {
		fmt.Fprintf(r.bw, "  %s  %s  %s\n",
			r.styles.Span.Render(padRight(formatSpan(h.Span), spanWidth)),
			r.styles.SheetName.Render(padRight(h.Sheet, sheetWidth)),
			r.styles.Value.Render(strings.ReplaceAll(h.Text, "\n", `\n`)),
		)
	}

	for _, cellErr := range cellErrors {
		fmt.Fprintf(r.bw, "  %s %s.%s row %d: %s\n",
			r.styles.CellError.Render("cell error:"),
			cellErr.Sheet, cellErr.Column, cellErr.Row, cellErr.Message)
	}
}

func formatSpan(span [2]int) string {
	return fmt.Sprintf("[%d, %d)", span[0], span[1])
}
