package reporter

import (
	"io"
	"os"

	"github.com/yaklabco/textsheets/pkg/analysis"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for output (typically os.Stdout).
	Writer io.Writer

	// ErrorWriter is the destination for errors (typically os.Stderr).
	ErrorWriter io.Writer

	// Format specifies the output format.
	Format Format

	// Color controls colorized output.
	// Values: "auto" (default), "always", "never"
	Color string

	// ShowSummary displays aggregate statistics after results.
	ShowSummary bool

	// ShowHidden includes hidden properties as columns.
	ShowHidden bool

	// Compact uses compact/minified output where applicable.
	Compact bool

	// SortColumn orders sheet rows by this column where a sheet has it.
	SortColumn string

	// SortDesc reverses the SortColumn order.
	SortDesc bool

	// SheetSortBy orders the per-sheet summary.
	SheetSortBy analysis.SortField

	// WorkingDir is the directory to make paths relative to.
	// If empty, paths are kept as-is (typically absolute).
	WorkingDir string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
		Format:      FormatText,
		Color:       "auto",
		ShowSummary: true,
		Compact:     false,
		SheetSortBy: analysis.SortByRows,
	}
}

// analysisOptions maps reporter options onto the analysis pass.
func (o Options) analysisOptions() analysis.Options {
	sortBy := o.SheetSortBy
	if sortBy == "" {
		sortBy = analysis.SortByRows
	}
	return analysis.Options{
		IncludeRows:       true,
		IncludeHighlights: true,
		IncludeBySheet:    true,
		ShowHidden:        o.ShowHidden,
		SortColumn:        o.SortColumn,
		SortDesc:          o.SortDesc,
		SheetSortBy:       sortBy,
		SheetSortDesc:     sortBy == analysis.SortByRows,
		WorkingDir:        o.WorkingDir,
	}
}
