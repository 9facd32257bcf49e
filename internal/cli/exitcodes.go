package cli

import (
	"errors"

	"github.com/yaklabco/textsheets/internal/configloader"
	"github.com/yaklabco/textsheets/pkg/runner"
)

// Exit codes for textsheets.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitCellErrors indicates evaluation completed but cells failed (with --strict).
	ExitCellErrors = 1

	// ExitDocumentErrors indicates at least one document could not be evaluated.
	ExitDocumentErrors = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// Sentinel errors that only carry an exit code; main does not log them.
var (
	// ErrCellErrors is returned by eval --strict when any cell failed.
	ErrCellErrors = errors.New("cell errors found")

	// ErrDocumentsFailed is returned when a document could not be evaluated.
	ErrDocumentsFailed = errors.New("documents failed")

	// ErrInvalidUsage marks flag combinations that cannot work together.
	ErrInvalidUsage = errors.New("invalid usage")
)

// ExitCodeFromResult determines the exit code based on result and strict mode.
func ExitCodeFromResult(result *runner.Result, strict bool) int {
	if result == nil {
		return ExitSuccess
	}
	if result.HasFailures() {
		return ExitDocumentErrors
	}
	if strict && result.HasCellErrors() {
		return ExitCellErrors
	}
	return ExitSuccess
}

// errorForExitCode maps an exit code back to its sentinel error.
func errorForExitCode(code int) error {
	switch code {
	case ExitCellErrors:
		return ErrCellErrors
	case ExitDocumentErrors:
		return ErrDocumentsFailed
	default:
		return nil
	}
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	var validation *configloader.ValidationError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrCellErrors):
		return ExitCellErrors
	case errors.Is(err, ErrDocumentsFailed):
		return ExitDocumentErrors
	case errors.Is(err, ErrInvalidUsage):
		return ExitInvalidUsage
	case errors.As(err, &validation), errors.Is(err, errConfig), errors.Is(err, ErrCheckFailed):
		return ExitConfigError
	default:
		return ExitInternalError
	}
}

// Silent reports whether err only signals an exit code and needs no log line.
func Silent(err error) bool {
	return errors.Is(err, ErrCellErrors) || errors.Is(err, ErrDocumentsFailed) || errors.Is(err, ErrCheckFailed)
}
