package analysis

// SortField specifies how to sort the per-sheet analysis.
type SortField string

const (
	// SortByRows sorts by row count (descending by default).
	SortByRows SortField = "rows"
	// SortByAlpha sorts alphabetically by sheet name.
	SortByAlpha SortField = "alpha"
	// SortByErrors sorts by cell error count, most first.
	SortByErrors SortField = "errors"
)

// IsValid returns true if the sort field is valid.
func (s SortField) IsValid() bool {
	switch s {
	case SortByRows, SortByAlpha, SortByErrors:
		return true
	default:
		return false
	}
}

// Options configures the Analyze function.
type Options struct {
	// IncludeRows includes each sheet's rows.
	IncludeRows bool

	// IncludeHighlights includes each document's highlights.
	IncludeHighlights bool

	// IncludeBySheet includes the per-sheet analysis across documents.
	IncludeBySheet bool

	// ShowHidden includes hidden properties as columns.
	ShowHidden bool

	// SortColumn orders each sheet's rows by this column when the sheet has it.
	SortColumn string

	// SortDesc reverses SortColumn ordering.
	SortDesc bool

	// SheetSortBy specifies how to sort BySheet.
	SheetSortBy SortField

	// SheetSortDesc sorts BySheet in descending order (highest first).
	SheetSortDesc bool

	// WorkingDir is the directory to make paths relative to.
	// If empty, paths are kept as-is (typically absolute).
	WorkingDir string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		IncludeRows:       true,
		IncludeHighlights: true,
		IncludeBySheet:    true,
		SheetSortBy:       SortByRows,
		SheetSortDesc:     true,
	}
}
