package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table formatting constants.
const (
	tablePadding     = 2
	minColumnWidth   = 8
	heavySeparator   = "="
	lightSeparator   = "-"
	defaultTermWidth = 100
	ellipsis         = "..."
)

// Cell is one rendered value of a sheet table.
type Cell struct {
	Text string

	// Failed marks a cell whose formula produced an error value.
	Failed bool
}

// SheetTable is a sheet's rows ready for display.
type SheetTable struct {
	Title   string
	Headers []string
	Rows    [][]Cell
}

// TableFormatter formats sheet rows as a styled table.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:    styles,
		termWidth: termWidth,
	}
}

// FormatTable renders one sheet. A sheet with no columns renders as its
// title alone.
func (t *TableFormatter) FormatTable(table SheetTable) string {
	var builder strings.Builder

	builder.WriteString(t.styles.TableTitle.Render(table.Title))
	builder.WriteString("\n")

	if len(table.Headers) == 0 {
		return builder.String()
	}

	widths := t.columnWidths(table)
	total := totalWidth(widths)

	builder.WriteString(t.formatHeader(table.Headers, widths))
	builder.WriteString("\n")
	builder.WriteString(t.styles.TableSeparator.Render(strings.Repeat(heavySeparator, total)))
	builder.WriteString("\n")

	failed := 0
	for _, row := range table.Rows {
		builder.WriteString(t.formatRow(row, widths))
		builder.WriteString("\n")
		for _, cell := range row {
			if cell.Failed {
				failed++
			}
		}
	}

	builder.WriteString(t.styles.TableSeparator.Render(strings.Repeat(lightSeparator, total)))
	builder.WriteString("\n")
	builder.WriteString(t.formatFooter(len(table.Rows), failed))
	builder.WriteString("\n")

	return builder.String()
}

// columnWidths sizes each column to its widest cell, then shrinks the widest
// columns until the table fits the terminal.
func (t *TableFormatter) columnWidths(table SheetTable) []int {
	widths := make([]int, len(table.Headers))
	for idx, header := range table.Headers {
		widths[idx] = lipgloss.Width(header)
	}
	for _, row := range table.Rows {
		for idx, cell := range row {
			if idx < len(widths) {
				widths[idx] = max(widths[idx], lipgloss.Width(flatten(cell.Text)))
			}
		}
	}

	for totalWidth(widths) > t.termWidth {
		widest := 0
		for idx, width := range widths {
			if width > widths[widest] {
				widest = idx
			}
		}
		if widths[widest] <= minColumnWidth {
			break
		}
		widths[widest]--
	}

	return widths
}

func totalWidth(widths []int) int {
	total := 1
	for _, width := range widths {
		total += width + tablePadding
	}
	return total
}

func (t *TableFormatter) formatHeader(headers []string, widths []int) string {
	parts := make([]string, 0, len(headers))
	for idx, header := range headers {
		parts = append(parts, padRight(truncateString(strings.ToUpper(header), widths[idx]), widths[idx]))
	}
	return t.styles.TableHeader.Render(" " + strings.Join(parts, "  "))
}

func (t *TableFormatter) formatRow(row []Cell, widths []int) string {
	parts := make([]string, 0, len(widths))
	for idx, width := range widths {
		var cell Cell
		if idx < len(row) {
			cell = row[idx]
		}
		text := padRight(truncateString(flatten(cell.Text), width), width)
		if cell.Failed {
			parts = append(parts, t.styles.ErrorValue.Render(text))
			continue
		}
		parts = append(parts, t.styles.Value.Render(text))
	}
	return " " + strings.Join(parts, "  ")
}

func (t *TableFormatter) formatFooter(rows, failed int) string {
	footer := t.styles.Dim.Render(fmt.Sprintf(" %d %s", rows, plural(rows, "row", "rows")))
	if failed > 0 {
		footer += " | " + t.styles.CellError.Render(fmt.Sprintf("%d %s", failed, plural(failed, "cell error", "cell errors")))
	}
	return footer
}

// flatten keeps multi-line values on one table line.
func flatten(str string) string {
	return strings.ReplaceAll(str, "\n", " ")
}

// truncateString truncates a string to maxLen display columns, adding "..."
// if truncated.
func truncateString(str string, maxLen int) string {
	if lipgloss.Width(str) <= maxLen {
		return str
	}
	runes := []rune(str)
	if maxLen <= len(ellipsis) {
		return string(runes[:min(maxLen, len(runes))])
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+len(ellipsis) > maxLen {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + ellipsis
}

func padRight(str string, width int) string {
	if pad := width - lipgloss.Width(str); pad > 0 {
		return str + strings.Repeat(" ", pad)
	}
	return str
}
