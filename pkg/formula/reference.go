package formula

// Reference describes one built-in function.
type Reference struct {
	Name        string
	Params      []string
	Returns     string
	Curried     bool
	Description string
}

// Built-in function names.
const (
	FnEachLine         = "EACH_LINE"
	FnHighlightsOfRe   = "HIGHLIGHTS_OF_REGEX"
	FnHighlightsOf     = "HIGHLIGHTS_OF"
	FnValuesOfType     = "VALUES_OF_TYPE"
	FnNext             = "NEXT"
	FnPrev             = "PREV"
	FnHasType          = "HAS_TYPE"
	FnHasTextOnLeft    = "HAS_TEXT_ON_LEFT"
	FnHasTextOnRight   = "HAS_TEXT_ON_RIGHT"
	FnIsOnSameLineAs   = "IS_ON_SAME_LINE_AS"
	FnFilter           = "FILTER"
	FnFirst            = "FIRST"
	FnSecond           = "SECOND"
	FnDataFromDocument = "DATA_FROM_DOC"
)

var references = []Reference{
	{
		Name:        FnEachLine,
		Returns:     "highlight[]",
		Description: "One highlight per line of the document, excluding the line terminator.",
	},
	{
		Name:        FnHighlightsOfRe,
		Params:      []string{"regex", "flags"},
		Returns:     "highlight[]",
		Description: "Every match of regex in the document. Flags i, m and s are supported.",
	},
	{
		Name:        FnHighlightsOf,
		Params:      []string{"values", "caseInsensitive"},
		Returns:     "highlight[]",
		Description: "Every occurrence of the given literal text or texts.",
	},
	{
		Name:        FnValuesOfType,
		Params:      []string{"type"},
		Returns:     "highlight[]",
		Description: "Highlights produced by the named sheet earlier in this pass.",
	},
	{
		Name:        FnNext,
		Params:      []string{"highlight", "condition"},
		Returns:     "highlight",
		Curried:     true,
		Description: "The first highlight ending after highlight that satisfies condition.",
	},
	{
		Name:        FnPrev,
		Params:      []string{"highlight", "condition"},
		Returns:     "highlight",
		Curried:     true,
		Description: "The closest highlight ending before highlight starts that satisfies condition.",
	},
	{
		Name:        FnHasType,
		Params:      []string{"type", "highlight"},
		Returns:     "boolean",
		Curried:     true,
		Description: "Whether highlight was produced by the named sheet.",
	},
	{
		Name:        FnHasTextOnLeft,
		Params:      []string{"text", "highlight"},
		Returns:     "boolean",
		Curried:     true,
		Description: "Whether the trimmed text before highlight ends with text.",
	},
	{
		Name:        FnHasTextOnRight,
		Params:      []string{"text", "highlight"},
		Returns:     "boolean",
		Curried:     true,
		Description: "Whether the trimmed text after highlight starts with text.",
	},
	{
		Name:        FnIsOnSameLineAs,
		Params:      []string{"a", "b"},
		Returns:     "boolean",
		Curried:     true,
		Description: "Whether both highlights sit on the same single line.",
	},
	{
		Name:        FnFilter,
		Params:      []string{"list", "condition"},
		Returns:     "any[]",
		Curried:     true,
		Description: "The items of list that satisfy condition.",
	},
	{
		Name:        FnFirst,
		Params:      []string{"list"},
		Returns:     "any",
		Description: "The first item of list.",
	},
	{
		Name:        FnSecond,
		Params:      []string{"list"},
		Returns:     "any",
		Description: "The second item of list.",
	},
	{
		Name:        FnDataFromDocument,
		Params:      []string{"docName", "sheetName", "columnName"},
		Returns:     "string[]",
		Description: "The text of a column of a sheet evaluated over another document.",
	},
}

// References returns the built-in function table in declaration order.
func References() []Reference {
	out := make([]Reference, len(references))
	copy(out, references)
	return out
}

// LookupReference finds a built-in by name.
func LookupReference(name string) (Reference, bool) {
	for _, ref := range references {
		if ref.Name == name {
			return ref, true
		}
	}
	return Reference{}, false
}
