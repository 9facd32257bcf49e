package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/textsheets/pkg/runner"
)

const summaryDividerWidth = 40

// plural picks the singular or plural form of word for n.
func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "14 highlights, 9 rows in 3 documents, 2 cell errors in 1 document".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	parts := []string{
		fmt.Sprintf("%d %s", stats.HighlightsTotal, plural(stats.HighlightsTotal, "highlight", "highlights")),
		fmt.Sprintf("%d %s in %d %s",
			stats.RowsTotal, plural(stats.RowsTotal, "row", "rows"),
			stats.DocumentsEvaluated, plural(stats.DocumentsEvaluated, "document", "documents")),
	}

	if stats.CellErrorsTotal > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d %s in %d %s",
			stats.CellErrorsTotal, plural(stats.CellErrorsTotal, "cell error", "cell errors"),
			stats.DocumentsWithCellErrors, plural(stats.DocumentsWithCellErrors, "document", "documents"))))
	}

	if stats.DocumentsErrored > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d %s failed",
			stats.DocumentsErrored, plural(stats.DocumentsErrored, "document", "documents"))))
	}

	if stats.CellErrorsTotal == 0 && stats.DocumentsErrored == 0 {
		return s.Success.Render("OK") + " " + strings.Join(parts, ", ") + "\n"
	}
	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Documents found:     " +
		s.SummaryValue.Render(strconv.Itoa(stats.DocumentsDiscovered)) + "\n")
	builder.WriteString("  Documents evaluated: " +
		s.SummaryValue.Render(strconv.Itoa(stats.DocumentsEvaluated)) + "\n")

	if stats.DocumentsErrored > 0 {
		builder.WriteString("  Documents failed:    " +
			s.Failure.Render(strconv.Itoa(stats.DocumentsErrored)) + "\n")
	}

	builder.WriteString("\n")

	builder.WriteString("  Rows:                " +
		s.SummaryValue.Render(strconv.Itoa(stats.RowsTotal)) + "\n")
	builder.WriteString("  Highlights:          " +
		s.SummaryValue.Render(strconv.Itoa(stats.HighlightsTotal)) + "\n")

	if stats.CellErrorsTotal > 0 {
		builder.WriteString("  Cell errors:         " +
			s.Error.Render(strconv.Itoa(stats.CellErrorsTotal)) + "\n")
	}

	builder.WriteString("\n")

	switch {
	case stats.DocumentsErrored > 0:
		builder.WriteString(s.Failure.Render("Evaluation failed"))
	case stats.CellErrorsTotal > 0:
		builder.WriteString(s.Warning.Render("Evaluation completed with cell errors"))
	default:
		builder.WriteString(s.Success.Render("Evaluation succeeded"))
	}
	builder.WriteString("\n")

	return builder.String()
}
