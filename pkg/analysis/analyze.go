package analysis

import (
	"cmp"
	"path/filepath"
	"slices"
	"time"

	"github.com/yaklabco/textsheets/pkg/config"
	"github.com/yaklabco/textsheets/pkg/formula"
	"github.com/yaklabco/textsheets/pkg/runner"
	"github.com/yaklabco/textsheets/pkg/scope"
	"github.com/yaklabco/textsheets/pkg/sheets"
)

// ReportVersion is the current report format version.
const ReportVersion = "1.0.0"

// makeRelativePath converts an absolute path to a relative path from workDir.
// If workDir is empty or conversion fails, returns the original path.
func makeRelativePath(absPath, workDir string) string {
	if workDir == "" || absPath == "" {
		return absPath
	}
	relPath, err := filepath.Rel(workDir, absPath)
	if err != nil {
		return absPath
	}
	return relPath
}

// analysisContext holds temporary state during analysis.
type analysisContext struct {
	sheetMap  map[string]*SheetAnalysis
	sheetDocs map[string]map[string]bool
	order     []string
}

func newAnalysisContext() *analysisContext {
	return &analysisContext{
		sheetMap:  make(map[string]*SheetAnalysis),
		sheetDocs: make(map[string]map[string]bool),
	}
}

// getOrCreateSheetAnalysis returns existing or creates new SheetAnalysis.
func (ctx *analysisContext) getOrCreateSheetAnalysis(cfg config.SheetConfig) *SheetAnalysis {
	if _, ok := ctx.sheetMap[cfg.ID]; !ok {
		ctx.sheetMap[cfg.ID] = &SheetAnalysis{ID: cfg.ID, Name: cfg.Name}
		ctx.sheetDocs[cfg.ID] = make(map[string]bool)
		ctx.order = append(ctx.order, cfg.ID)
	}
	return ctx.sheetMap[cfg.ID]
}

// buildBySheet constructs the BySheet slice from accumulated data.
func (ctx *analysisContext) buildBySheet(opts Options) []SheetAnalysis {
	result := make([]SheetAnalysis, 0, len(ctx.order))
	for _, id := range ctx.order {
		sa := ctx.sheetMap[id]
		for doc := range ctx.sheetDocs[id] {
			sa.Documents = append(sa.Documents, doc)
		}
		slices.Sort(sa.Documents)
		result = append(result, *sa)
	}
	sortSheetAnalysis(result, opts.SheetSortBy, opts.SheetSortDesc)
	return result
}

// Analyze transforms a runner.Result into a Report.
func Analyze(result *runner.Result, opts Options) *Report {
	report := &Report{
		Documents: []DocumentReport{},
		Version:   ReportVersion,
		Timestamp: time.Now(),
	}

	if result == nil {
		return report
	}

	ctx := newAnalysisContext()

	for _, outcome := range result.Documents {
		report.Totals.Documents++

		docReport := DocumentReport{
			Name:   outcome.Name,
			Path:   makeRelativePath(outcome.Path, opts.WorkingDir),
			Sheets: []SheetReport{},
		}

		if outcome.Error != nil {
			docReport.Error = outcome.Error.Error()
			report.Totals.DocumentsFailed++
			report.Documents = append(report.Documents, docReport)
			continue
		}
		if outcome.Result == nil {
			report.Documents = append(report.Documents, docReport)
			continue
		}

		analyzeDocument(ctx, report, &docReport, outcome.Result, opts)
		report.Documents = append(report.Documents, docReport)
	}

	if opts.IncludeBySheet {
		report.BySheet = ctx.buildBySheet(opts)
	}

	return report
}

func analyzeDocument(
	ctx *analysisContext,
	report *Report,
	docReport *DocumentReport,
	res *sheets.Result,
	opts Options,
) {
	docReport.CellErrors = res.ErrorCount()
	report.Totals.Highlights += len(res.Highlights)
	report.Totals.CellErrors += docReport.CellErrors
	if docReport.CellErrors > 0 {
		report.Totals.DocumentsWithCellErrors++
	}

	if opts.IncludeHighlights {
		docReport.Highlights = Highlights(res.Highlights, res.Document, true)
	}

	errorsBySheet := make(map[string]int)
	for _, cellErr := range res.CellErrors {
		errorsBySheet[cellErr.SheetID]++
		report.CellErrors = append(report.CellErrors, CellErrorEntry{
			Document: docReport.Name,
			Sheet:    cellErr.SheetName,
			Column:   cellErr.Column,
			Row:      cellErr.Row,
			Message:  cellErr.Err.Error(),
		})
	}

	for _, cfg := range res.Configs {
		rows := res.Rows[cfg.ID]
		sheetReport := SheetReport{
			ID:         cfg.ID,
			Name:       cfg.Name,
			Columns:    columns(cfg, opts.ShowHidden),
			RowCount:   len(rows),
			Highlights: len(res.HighlightsOf(cfg.ID)),
			CellErrors: errorsBySheet[cfg.ID],
		}
		report.Totals.Rows += len(rows)

		if opts.IncludeRows {
			if opts.SortColumn != "" && slices.Contains(sheetReport.Columns, opts.SortColumn) {
				rows = sheets.SortRows(rows, opts.SortColumn, opts.SortDesc, res.Document)
			}
			sheetReport.Rows = make([]Row, 0, len(rows))
			for _, row := range rows {
				sheetReport.Rows = append(sheetReport.Rows, newRow(row, sheetReport.Columns, res))
			}
		}
		docReport.Sheets = append(docReport.Sheets, sheetReport)

		sa := ctx.getOrCreateSheetAnalysis(cfg)
		sa.Rows += sheetReport.RowCount
		sa.Highlights += sheetReport.Highlights
		sa.CellErrors += sheetReport.CellErrors
		ctx.sheetDocs[cfg.ID][docReport.Name] = true
	}
}

func columns(cfg config.SheetConfig, showHidden bool) []string {
	props := cfg.Properties
	if !showHidden {
		props = cfg.VisibleProperties()
	}
	out := make([]string, 0, len(props))
	for _, prop := range props {
		out = append(out, prop.Name)
	}
	return out
}

func newRow(row *scope.Scope, columns []string, res *sheets.Result) Row {
	out := Row{
		Values: scope.New(),
		Text:   make([]string, len(columns)),
		Failed: make([]bool, len(columns)),
	}
	for idx, column := range columns {
		value, ok := row.Get(column)
		if !ok {
			continue
		}
		out.Values.Set(column, Encode(value, res.Document))
		out.Text[idx] = res.Text(value)
		_, out.Failed[idx] = value.(*formula.ErrorValue)
	}
	return out
}

func sortSheetAnalysis(sheetList []SheetAnalysis, sortBy SortField, desc bool) {
	slices.SortStableFunc(sheetList, func(left, right SheetAnalysis) int {
		switch sortBy {
		case SortByAlpha:
			// Alphabetical sorting is always ascending (A-Z)
			return cmp.Compare(left.Name, right.Name)
		case SortByErrors:
			result := cmp.Compare(right.CellErrors, left.CellErrors)
			if result == 0 {
				result = cmp.Compare(right.Rows, left.Rows)
			}
			return result
		default: // SortByRows
			result := cmp.Compare(left.Rows, right.Rows)
			if desc {
				result = -result
			}
			return result
		}
	})
}
