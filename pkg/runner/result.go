package runner

import (
	"github.com/yaklabco/textsheets/pkg/sheets"
	"github.com/yaklabco/textsheets/pkg/workspace"
)

// DocumentOutcome is the evaluation of one document.
type DocumentOutcome struct {
	// Name is the document name used by lookups.
	Name string

	// Path is the file the document was read from.
	Path string

	// Result is nil when Error is set.
	Result *sheets.Result

	// Error is set if the document could not be evaluated.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	DocumentsDiscovered int
	DocumentsEvaluated  int
	DocumentsErrored    int

	// DocumentsWithCellErrors counts documents with at least one failed cell.
	DocumentsWithCellErrors int

	HighlightsTotal int
	RowsTotal       int
	CellErrorsTotal int
}

// Result is the overall runner result.
type Result struct {
	// Documents are ordered as the workspace opened them: configured
	// documents first, then discovered files by path.
	Documents []DocumentOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats

	// Workspace holds the opened documents.
	Workspace *workspace.Workspace
}

// HasFailures reports whether any document failed to evaluate.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.DocumentsErrored > 0
}

// HasCellErrors reports whether any cell failed.
func (r *Result) HasCellErrors() bool {
	if r == nil {
		return false
	}
	return r.Stats.CellErrorsTotal > 0
}

func (r *Result) accumulate(outcome DocumentOutcome) {
	r.Documents = append(r.Documents, outcome)

	if outcome.Error != nil {
		r.Stats.DocumentsErrored++
		return
	}
	if outcome.Result == nil {
		return
	}

	r.Stats.DocumentsEvaluated++
	r.Stats.HighlightsTotal += len(outcome.Result.Highlights)
	for _, rows := range outcome.Result.Rows {
		r.Stats.RowsTotal += len(rows)
	}

	if n := outcome.Result.ErrorCount(); n > 0 {
		r.Stats.CellErrorsTotal += n
		r.Stats.DocumentsWithCellErrors++
	}
}
