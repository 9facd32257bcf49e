package reporter

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yaklabco/textsheets/internal/ui/pretty"
	"github.com/yaklabco/textsheets/pkg/analysis"
)

// Table layout constants for summary output.
// Both tables use the same width for visual consistency.
const (
	tableWidth        = 80
	nameColWidth      = 40
	numColWidth       = 11
	maxNameLength     = 38
	totalPartCapacity = 4
)

// padRight pads a string to the given width with spaces on the right.
// This must be called BEFORE applying ANSI styles.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// padLeft pads a string to the given width with spaces on the left.
// This must be called BEFORE applying ANSI styles.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// truncateName shortens long names, keeping the end.
func truncateName(name string) string {
	if len(name) <= maxNameLength {
		return name
	}
	return "…" + name[len(name)-(maxNameLength-1):]
}

// SummaryRenderer formats results as aggregated summary tables.
type SummaryRenderer struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewSummaryRenderer creates a new summary renderer.
func NewSummaryRenderer(opts Options) *SummaryRenderer {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &SummaryRenderer{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
	}
}

// Render implements Renderer.
func (r *SummaryRenderer) Render(_ context.Context, report *analysis.Report) error {
	if report.Totals.Documents == 0 {
		fmt.Fprintln(r.out, r.styles.Success.Render("No documents to evaluate."))
		return nil
	}

	r.renderSheetTable(report.BySheet)
	fmt.Fprintln(r.out)
	r.renderDocumentTable(report.Documents)
	fmt.Fprintln(r.out)
	r.renderTotals(report.Totals)

	return nil
}

func (r *SummaryRenderer) renderHeader(title, first string) {
	fmt.Fprintln(r.out, r.styles.Bold.Render(title))
	fmt.Fprintln(r.out, r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)))

	// Header - pad first, then style
	fmt.Fprintf(r.out, "%s %s %s %s\n",
		r.styles.TableHeader.Render(padRight(first, nameColWidth)),
		r.styles.TableHeader.Render(padLeft("Rows", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Highlights", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Errors", numColWidth)),
	)
	fmt.Fprintln(r.out, r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)))
}

func (r *SummaryRenderer) renderLine(name string, rows, highlights, cellErrors int) {
	paddedName := padRight(truncateName(name), nameColWidth)
	if cellErrors > 0 {
		paddedName = r.styles.CellError.Render(paddedName)
	}

	fmt.Fprintf(r.out, "%s %s %s %s\n",
		paddedName,
		padLeft(strconv.Itoa(rows), numColWidth),
		padLeft(strconv.Itoa(highlights), numColWidth),
		padLeft(strconv.Itoa(cellErrors), numColWidth),
	)
}

func (r *SummaryRenderer) renderSheetTable(sheetList []analysis.SheetAnalysis) {
	if len(sheetList) == 0 {
		return
	}

	r.renderHeader("Sheets Summary", "Sheet")
	for _, sheet := range sheetList {
		r.renderLine(sheet.Name, sheet.Rows, sheet.Highlights, sheet.CellErrors)
	}
}

func (r *SummaryRenderer) renderDocumentTable(docs []analysis.DocumentReport) {
	r.renderHeader("Documents Summary", "Document")
	for _, doc := range docs {
		if doc.Error != "" {
			fmt.Fprintf(r.out, "%s %s\n",
				r.styles.Failure.Render(padRight(truncateName(doc.Name), nameColWidth)),
				r.styles.Error.Render(doc.Error))
			continue
		}

		rows, highlights := 0, 0
		for _, sheet := range doc.Sheets {
			rows += sheet.RowCount
			highlights += sheet.Highlights
		}
		r.renderLine(doc.Name, rows, highlights, doc.CellErrors)
	}
}

func (r *SummaryRenderer) renderTotals(totals analysis.Totals) {
	parts := make([]string, 0, totalPartCapacity)

	parts = append(parts,
		fmt.Sprintf("%d rows", totals.Rows),
		fmt.Sprintf("%d highlights", totals.Highlights),
	)

	if totals.CellErrors > 0 {
		parts = append(parts, r.styles.Error.Render(fmt.Sprintf("%d cell errors", totals.CellErrors)))
	}
	if totals.DocumentsFailed > 0 {
		parts = append(parts, r.styles.Failure.Render(fmt.Sprintf("%d failed", totals.DocumentsFailed)))
	}

	docWord := "documents"
	if totals.Documents == 1 {
		docWord = "document"
	}

	fmt.Fprintln(r.out, r.styles.Bold.Render("Total: ")+
		strings.Join(parts, ", ")+fmt.Sprintf(" in %d %s", totals.Documents, docWord))
}
