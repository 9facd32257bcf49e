package reporter

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"golang.org/x/term"

	"github.com/yaklabco/textsheets/internal/ui/pretty"
	"github.com/yaklabco/textsheets/pkg/analysis"
	"github.com/yaklabco/textsheets/pkg/runner"
)

// defaultTermWidth is used when terminal width cannot be determined.
const defaultTermWidth = 100

// TableReporter prints every sheet of every document as a table.
type TableReporter struct {
	opts      Options
	styles    *pretty.Styles
	formatter *pretty.TableFormatter
	bw        *bufio.Writer
}

// NewTableReporter creates a new table reporter.
func NewTableReporter(opts Options) *TableReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	styles := pretty.NewStyles(colorEnabled)

	return &TableReporter{
		opts:      opts,
		styles:    styles,
		formatter: pretty.NewTableFormatter(styles, getTerminalWidth(opts.Writer)),
		bw:        bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TableReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
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
	opts.IncludeHighlights = false
	opts.IncludeBySheet = false
	report := analysis.Analyze(result, opts)

	first := true
	for _, doc := range report.Documents {
		if doc.Error != "" {
			if !first {
				fmt.Fprintln(r.bw)
			}
			first = false
			fmt.Fprintf(r.bw, "%s %s\n", r.styles.DocumentName.Render(doc.Name), r.styles.Error.Render(doc.Error))
			continue
		}
		for _, sheet := range doc.Sheets {
			if !first {
				fmt.Fprintln(r.bw)
			}
			first = false
			fmt.Fprint(r.bw, r.formatter.FormatTable(sheetTable(doc.Name, sheet)))
		}
	}

	if r.opts.ShowSummary {
		fmt.Fprintln(r.bw)
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return report.Totals.CellErrors, nil
}

// sheetTable converts an analyzed sheet into the pretty table model.
func sheetTable(docName string, sheet analysis.SheetReport) pretty.SheetTable {
	table := pretty.SheetTable{
		Title:   docName + " / " + sheet.Name,
		Headers: sheet.Columns,
		Rows:    make([][]pretty.Cell, 0, len(sheet.Rows)),
	}
	for _, row := range sheet.Rows {
		cells := make([]pretty.Cell, len(row.Text))
		for idx, text := range row.Text {
			cells[idx] = pretty.Cell{Text: text, Failed: row.Failed[idx]}
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

// getTerminalWidth attempts to get the terminal width from the writer.
func getTerminalWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}
