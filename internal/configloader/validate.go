package configloader

import (
	"fmt"
	"strings"

	"github.com/yaklabco/textsheets/internal/logging"
	"github.com/yaklabco/textsheets/pkg/config"
	"github.com/yaklabco/textsheets/pkg/formula"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "sheets[1].properties[0].name").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues, such as formulas that will fail per cell.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

func (r *ValidationResult) errorf(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warnf(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.LogLevel != "" && !logging.ValidLevel(cfg.LogLevel) {
		result.errorf("log_level", cfg.LogLevel,
			"invalid log level %q; must be one of: debug, info, warn, error", cfg.LogLevel)
	}
	if cfg.LogFormat != "" && !logging.ValidFormat(cfg.LogFormat) {
		result.errorf("log_format", cfg.LogFormat,
			"invalid log format %q; must be one of: text, json, logfmt", cfg.LogFormat)
	}
	if cfg.Format != "" && !cfg.Format.IsValid() {
		result.errorf("format", cfg.Format,
			"invalid format %q; must be one of: text, table, json, xlsx, summary", cfg.Format)
	}
	if cfg.Jobs < 0 {
		result.errorf("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}
	if cfg.MaxLookupDepth < 0 {
		result.errorf("max_lookup_depth", cfg.MaxLookupDepth, "max_lookup_depth must be >= 0")
	}

	validateSheets(cfg, result)
	validateDocuments(cfg, result)

	return result
}

func validateSheets(cfg *config.Config, result *ValidationResult) {
	ids := make(map[string]bool, len(cfg.Sheets))
	names := make(map[string]bool, len(cfg.Sheets))

	for idx, sheet := range cfg.Sheets {
		field := fmt.Sprintf("sheets[%d]", idx)

		switch {
		case sheet.ID == "":
			result.errorf(field+".id", sheet.ID, "sheet id must not be empty")
		case ids[sheet.ID]:
			result.errorf(field+".id", sheet.ID, "duplicate sheet id %q", sheet.ID)
		}
		ids[sheet.ID] = true

		switch {
		case sheet.Name == "":
			result.errorf(field+".name", sheet.Name, "sheet name must not be empty")
		case names[sheet.Name]:
			result.errorf(field+".name", sheet.Name, "duplicate sheet name %q", sheet.Name)
		}
		names[sheet.Name] = true

		if len(sheet.Properties) == 0 {
			result.warnf(field, sheet.Name, "sheet %q has no properties and produces no rows", sheet.Name)
		}

		columns := make(map[string]bool, len(sheet.Properties))
		for propIdx, prop := range sheet.Properties {
			propField := fmt.Sprintf("%s.properties[%d]", field, propIdx)

			switch {
			case prop.Name == "":
				result.errorf(propField+".name", prop.Name, "column name must not be empty")
			case columns[prop.Name]:
				result.errorf(propField+".name", prop.Name, "duplicate column %q in sheet %q", prop.Name, sheet.Name)
			}
			columns[prop.Name] = true

			if !prop.Visibility.IsValid() {
				result.errorf(propField+".visibility", prop.Visibility,
					"invalid visibility %q; must be one of: visible, hidden", prop.Visibility)
			}

			if _, err := formula.Parse(prop.Formula); err != nil {
				result.warnf(propField+".formula", prop.Formula, "%s.%s: %v", sheet.Name, prop.Name, err)
			}
		}
	}
}

func validateDocuments(cfg *config.Config, result *ValidationResult) {
	names := make(map[string]bool, len(cfg.Documents))

	for idx, doc := range cfg.Documents {
		field := fmt.Sprintf("documents[%d]", idx)

		switch {
		case doc.Name == "":
			result.errorf(field+".name", doc.Name, "document name must not be empty")
		case names[doc.Name]:
			result.errorf(field+".name", doc.Name, "duplicate document name %q", doc.Name)
		}
		names[doc.Name] = true

		if doc.Path == "" {
			result.errorf(field+".path", doc.Path, "document %q has no path", doc.Name)
		}

		for refIdx, ref := range doc.Sheets {
			if _, ok := cfg.Sheet(ref); !ok {
				result.errorf(fmt.Sprintf("%s.sheets[%d]", field, refIdx), ref,
					"document %q: unknown sheet %q", doc.Name, ref)
			}
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}
