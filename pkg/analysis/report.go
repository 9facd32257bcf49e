package analysis

import (
	"encoding/json"
	"time"

	"github.com/yaklabco/textsheets/pkg/scope"
)

// Report contains pre-computed views of evaluation results.
// Computed once by Analyze(), used by all renderers.
type Report struct {
	// Documents holds one entry per evaluated document, in run order.
	Documents []DocumentReport `json:"documents"`

	// BySheet aggregates each sheet across documents.
	BySheet []SheetAnalysis `json:"bySheet,omitempty"`

	// CellErrors is the flat list of failed cells.
	CellErrors []CellErrorEntry `json:"cellErrors,omitempty"`

	// Totals contains aggregate statistics.
	Totals Totals `json:"summary"`

	// Version is the report format version.
	Version string `json:"version"`

	// Timestamp is when the analysis was performed.
	Timestamp time.Time `json:"timestamp"`
}

// DocumentReport is one document's evaluation.
type DocumentReport struct {
	Name       string           `json:"name"`
	Path       string           `json:"path,omitempty"`
	Error      string           `json:"error,omitempty"`
	Highlights []HighlightEntry `json:"highlights,omitempty"`
	Sheets     []SheetReport    `json:"sheets"`
	CellErrors int              `json:"cellErrors"`
}

// SheetReport is one sheet of one document.
type SheetReport struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Columns    []string `json:"columns"`
	Rows       []Row    `json:"rows,omitempty"`
	RowCount   int      `json:"rowCount"`
	Highlights int      `json:"highlights"`
	CellErrors int      `json:"cellErrors"`
}

// Row is one sheet row restricted to the reported columns.
type Row struct {
	// Values are JSON-safe renderings of the cells, keyed by column.
	Values *scope.Scope

	// Text is each column's display text.
	Text []string

	// Failed marks columns whose value is an error.
	Failed []bool
}

// MarshalJSON encodes the row as an object in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Values)
}

// HighlightEntry is a highlight with its covered text resolved.
type HighlightEntry struct {
	Sheet string       `json:"sheet"`
	Span  [2]int       `json:"span"`
	Text  string       `json:"text"`
	Data  *scope.Scope `json:"data,omitempty"`
}

// CellErrorEntry describes one failed cell.
type CellErrorEntry struct {
	Document string `json:"document"`
	Sheet    string `json:"sheet"`
	Column   string `json:"column"`
	Row      int    `json:"row"`
	Message  string `json:"message"`
}

// Totals contains aggregate statistics for the report.
type Totals struct {
	Documents               int `json:"documents"`
	DocumentsFailed         int `json:"documentsFailed"`
	DocumentsWithCellErrors int `json:"documentsWithCellErrors"`
	Rows                    int `json:"rows"`
	Highlights              int `json:"highlights"`
	CellErrors              int `json:"cellErrors"`
}

// HasCellErrors returns true if any cell failed.
func (t Totals) HasCellErrors() bool {
	return t.CellErrors > 0
}

// HasFailures returns true if any document could not be evaluated.
func (t Totals) HasFailures() bool {
	return t.DocumentsFailed > 0
}

// SheetAnalysis aggregates one sheet over every document it ran on.
type SheetAnalysis struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Rows       int      `json:"rows"`
	Highlights int      `json:"highlights"`
	CellErrors int      `json:"cellErrors"`
	Documents  []string `json:"documents,omitempty"`
}
