package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldInput      = "input"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"

	// Configuration fields.
	FieldFormat = "format"
	FieldWrite  = "write"
	FieldJobs   = "jobs"
	FieldAddr   = "addr"

	// Evaluation fields.
	FieldDocument = "document"
	FieldRoot     = "root"
	FieldSheet    = "sheet"
	FieldColumn   = "column"
	FieldRow      = "row"
	FieldDepth    = "depth"
	FieldChain    = "chain"
	FieldRows     = "rows"
	FieldEdits    = "edits"
	FieldConn     = "conn"

	// Statistics fields.
	FieldDocumentsDiscovered = "documents_discovered"
	FieldDocumentsEvaluated  = "documents_evaluated"
	FieldHighlightsTotal     = "highlights_total"
	FieldCellErrors          = "cell_errors"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"

	// Function reference fields.
	FieldName        = "name"
	FieldReturns     = "returns"
	FieldDescription = "description"
)
