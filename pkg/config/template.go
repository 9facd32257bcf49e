package config

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full includes a worked example of documents and sheets.
	// If false, generates a minimal commented template.
	Full bool
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) []byte {
	if opts.Full {
		return []byte(DefaultTemplateHeader() + "\n" + fullTemplate)
	}
	return []byte(DefaultTemplateHeader() + "\n" + minimalTemplate)
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# textsheets configuration
# See: https://github.com/yaklabco/textsheets
`
}

const minimalTemplate = `
# Log level: debug, info, warn, error
log_level: info

# Output format: text, table, json, xlsx, or summary
format: text

# Maximum nesting of DATA_FROM_DOC lookups across documents
# max_lookup_depth: 4

# Documents and the sheets evaluated over them
# documents:
#   - name: notes
#     path: notes.txt

# Sheets, evaluated in order; each property is a column computed by a formula
# sheets:
#   - id: number
#     name: number
#     properties:
#       - name: value
#         formula: HIGHLIGHTS_OF_REGEX("\\d+")
`

const fullTemplate = `
# Log level: debug, info, warn, error
log_level: info

# Output format: text, table, json, xlsx, or summary
format: text

# Maximum nesting of DATA_FROM_DOC lookups across documents
max_lookup_depth: 4

# Documents and the sheets evaluated over them. Without a sheets list a
# document uses every sheet in declared order.
documents:
  - name: recipe
    path: recipe.txt
    sheets: [word, ingredient]

# Sheets are evaluated in order. The first property may produce a list, one
# row per element; later properties are computed once per row and can refer
# to earlier properties of the same row by name, and to earlier sheets by
# sheet name.
sheets:
  - id: word
    name: word
    properties:
      - name: word
        formula: HIGHLIGHTS_OF_REGEX("[a-z]+")
        visibility: hidden

  - id: ingredient
    name: ingredient
    properties:
      - name: quantity
        formula: HIGHLIGHTS_OF_REGEX("\\d+")
      - name: unit
        formula: NEXT(quantity, HAS_TYPE("word"))
      - name: name
        formula: NEXT(unit, HAS_TYPE("word"))
`
