// Package config defines core configuration types for textsheets.
// These types are pure data structures; loading and validation live in
// internal/configloader.
package config

import "fmt"

// OutputFormat specifies the output format for evaluation results.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatXLSX    OutputFormat = "xlsx"
	FormatSummary OutputFormat = "summary"
)

// IsValid returns true if the format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatTable, FormatJSON, FormatXLSX, FormatSummary:
		return true
	default:
		return false
	}
}

// Visibility controls whether a property is shown by renderers.
type Visibility string

const (
	VisibilityVisible Visibility = "visible"
	VisibilityHidden  Visibility = "hidden"
)

// IsValid returns true if the visibility is known. Empty means visible.
func (v Visibility) IsValid() bool {
	switch v {
	case "", VisibilityVisible, VisibilityHidden:
		return true
	default:
		return false
	}
}

// DefaultMaxLookupDepth bounds nested cross-document lookups.
const DefaultMaxLookupDepth = 4

// Property is one column of a sheet: a name and the formula computing it.
type Property struct {
	Name       string     `yaml:"name"`
	Formula    string     `yaml:"formula"`
	Visibility Visibility `yaml:"visibility,omitempty"`
}

// Hidden reports whether renderers should omit the property. Hidden
// properties are still evaluated and visible to formulas.
func (p Property) Hidden() bool {
	return p.Visibility == VisibilityHidden
}

// SheetConfig is a named table whose rows are derived from document text.
type SheetConfig struct {
	// ID is the stable identifier stored on highlights.
	ID string `yaml:"id"`

	// Name is how formulas refer to the sheet.
	Name string `yaml:"name"`

	// Properties are the columns, evaluated in order.
	Properties []Property `yaml:"properties"`
}

// VisibleProperties returns the properties renderers should show.
func (s SheetConfig) VisibleProperties() []Property {
	out := make([]Property, 0, len(s.Properties))
	for _, p := range s.Properties {
		if !p.Hidden() {
			out = append(out, p)
		}
	}
	return out
}

// DocumentConfig names a document and the sheets evaluated over it.
type DocumentConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`

	// Sheets lists sheet names or ids in evaluation order. Empty means every
	// sheet in declared order.
	Sheets []string `yaml:"sheets,omitempty"`
}

// Config is the root configuration structure for textsheets.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is one of text, json, logfmt.
	LogFormat string `yaml:"log_format,omitempty"`

	// MaxLookupDepth bounds nested DATA_FROM_DOC lookups.
	MaxLookupDepth int `yaml:"max_lookup_depth"`

	// Format specifies the output format.
	Format OutputFormat `yaml:"format"`

	// Documents are the documents known to the workspace.
	Documents []DocumentConfig `yaml:"documents,omitempty"`

	// Sheets are the sheet configurations in declared order.
	Sheets []SheetConfig `yaml:"sheets,omitempty"`

	// CLI-level options (not persisted to config files).

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-"`

	// ShowHidden makes renderers include hidden properties.
	ShowHidden bool `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		MaxLookupDepth: DefaultMaxLookupDepth,
		Format:         FormatText,
		Jobs:           0, // 0 means use GOMAXPROCS
	}
}

// Sheet finds a sheet by name, falling back to id.
func (c *Config) Sheet(nameOrID string) (SheetConfig, bool) {
	for _, s := range c.Sheets {
		if s.Name == nameOrID {
			return s, true
		}
	}
	for _, s := range c.Sheets {
		if s.ID == nameOrID {
			return s, true
		}
	}
	return SheetConfig{}, false
}

// Document finds a document entry by name.
func (c *Config) Document(name string) (DocumentConfig, bool) {
	for _, d := range c.Documents {
		if d.Name == name {
			return d, true
		}
	}
	return DocumentConfig{}, false
}

// SheetsFor resolves the sheets attached to a document, in order.
func (c *Config) SheetsFor(doc DocumentConfig) ([]SheetConfig, error) {
	if len(doc.Sheets) == 0 {
		out := make([]SheetConfig, len(c.Sheets))
		copy(out, c.Sheets)
		return out, nil
	}

	out := make([]SheetConfig, 0, len(doc.Sheets))
	for _, ref := range doc.Sheets {
		sheet, ok := c.Sheet(ref)
		if !ok {
			return nil, fmt.Errorf("document %q: unknown sheet %q", doc.Name, ref)
		}
		out = append(out, sheet)
	}
	return out, nil
}
