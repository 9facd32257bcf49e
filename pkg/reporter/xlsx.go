package reporter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yaklabco/textsheets/pkg/analysis"
)

// Workbook layout constants.
const (
	summarySheetName   = "Summary"
	defaultSheetName   = "Sheet1"
	maxSheetNameLength = 31
	nameColumnWidth    = 30
)

// XLSXRenderer writes one worksheet per evaluated sheet and a summary
// worksheet listing them.
type XLSXRenderer struct {
	opts Options
}

// NewXLSXRenderer creates a new spreadsheet renderer.
func NewXLSXRenderer(opts Options) *XLSXRenderer {
	return &XLSXRenderer{opts: opts}
}

// Render implements Renderer.
func (r *XLSXRenderer) Render(_ context.Context, report *analysis.Report) (err error) {
	file := excelize.NewFile()
	defer func() {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close workbook: %w", closeErr)
		}
	}()

	if err := file.SetSheetName(defaultSheetName, summarySheetName); err != nil {
		return fmt.Errorf("name summary sheet: %w", err)
	}

	styles, err := newWorkbookStyles(file)
	if err != nil {
		return err
	}

	if err := writeSummarySheet(file, styles, report); err != nil {
		return err
	}

	names := map[string]bool{strings.ToLower(summarySheetName): true}
	for _, doc := range report.Documents {
		for _, sheet := range doc.Sheets {
			name := uniqueSheetName(doc.Name+"-"+sheet.Name, names)
			if err := writeRowsSheet(file, styles, name, sheet); err != nil {
				return err
			}
		}
	}

	file.SetActiveSheet(0)
	if err := file.Write(r.opts.Writer); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

type workbookStyles struct {
	header int
	failed int
}

func newWorkbookStyles(file *excelize.File) (workbookStyles, error) {
	header, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDDDDD"}, Pattern: 1},
	})
	if err != nil {
		return workbookStyles{}, fmt.Errorf("create header style: %w", err)
	}

	failed, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "C00000"},
	})
	if err != nil {
		return workbookStyles{}, fmt.Errorf("create error style: %w", err)
	}

	return workbookStyles{header: header, failed: failed}, nil
}

func writeSummarySheet(file *excelize.File, styles workbookStyles, report *analysis.Report) error {
	header := []any{"Document", "Path", "Sheet", "Rows", "Highlights", "Cell errors", "Error"}
	if err := writeHeader(file, styles, summarySheetName, header); err != nil {
		return err
	}

	row := 2
	for _, doc := range report.Documents {
		lines := make([][]any, 0, len(doc.Sheets))
		for _, sheet := range doc.Sheets {
			lines = append(lines, []any{doc.Name, doc.Path, sheet.Name, sheet.RowCount, sheet.Highlights, sheet.CellErrors, ""})
		}
		if doc.Error != "" || len(lines) == 0 {
			lines = append(lines, []any{doc.Name, doc.Path, "", 0, 0, 0, doc.Error})
		}

		for _, line := range lines {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return fmt.Errorf("summary row %d: %w", row, err)
			}
			if err := file.SetSheetRow(summarySheetName, cell, &line); err != nil {
				return fmt.Errorf("write summary row %d: %w", row, err)
			}
			row++
		}
	}

	if err := file.SetColWidth(summarySheetName, "A", "C", nameColumnWidth); err != nil {
		return fmt.Errorf("size summary columns: %w", err)
	}
	return nil
}

func writeRowsSheet(file *excelize.File, styles workbookStyles, name string, sheet analysis.SheetReport) error {
	if _, err := file.NewSheet(name); err != nil {
		return fmt.Errorf("create worksheet %q: %w", name, err)
	}

	header := make([]any, 0, len(sheet.Columns))
	for _, column := range sheet.Columns {
		header = append(header, column)
	}
	if err := writeHeader(file, styles, name, header); err != nil {
		return err
	}

	for idx, row := range sheet.Rows {
		for col, column := range sheet.Columns {
			cell, err := excelize.CoordinatesToCellName(col+1, idx+2)
			if err != nil {
				return fmt.Errorf("worksheet %q: %w", name, err)
			}

			value, _ := row.Values.Get(column)
			if err := file.SetCellValue(name, cell, cellValue(value, row.Text[col])); err != nil {
				return fmt.Errorf("worksheet %q cell %s: %w", name, cell, err)
			}
			if row.Failed[col] {
				if err := file.SetCellStyle(name, cell, cell, styles.failed); err != nil {
					return fmt.Errorf("worksheet %q cell %s: %w", name, cell, err)
				}
			}
		}
	}
	return nil
}

func writeHeader(file *excelize.File, styles workbookStyles, name string, header []any) error {
	if err := file.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("worksheet %q header: %w", name, err)
	}
	if len(header) == 0 {
		return nil
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("worksheet %q header: %w", name, err)
	}
	if err := file.SetCellStyle(name, "A1", last, styles.header); err != nil {
		return fmt.Errorf("worksheet %q header style: %w", name, err)
	}
	return nil
}

// cellValue keeps numbers and booleans typed; everything else is display text.
func cellValue(encoded any, text string) any {
	switch typed := encoded.(type) {
	case float64, bool:
		return typed
	default:
		return text
	}
}

// uniqueSheetName makes a valid worksheet name not yet in taken and
// records it.
func uniqueSheetName(name string, taken map[string]bool) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, "'")
	if name == "" {
		name = "sheet"
	}

	candidate := truncateRunes(name, maxSheetNameLength)
	for n := 2; taken[strings.ToLower(candidate)] || taken[candidate]; n++ {
		suffix := " (" + strconv.Itoa(n) + ")"
		candidate = truncateRunes(name, maxSheetNameLength-len(suffix)) + suffix
	}
	taken[candidate] = true
	taken[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
