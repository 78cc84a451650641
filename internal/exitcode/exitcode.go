// Package exitcode maps error categories onto stable CLI exit codes so
// scripts and CI can branch on the kind of failure.
package exitcode

import (
	"os"

	"github.com/Caspar241/releasehub/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// NotFound indicates a template, anchor, or task instance lookup missed
	NotFound = 3

	// ValidationError indicates a command was rejected before any write
	// (missing anchor date, bad offset, disallowed snooze duration)
	ValidationError = 4

	// Conflict indicates a version mismatch or an invalid state
	// transition; the caller can re-fetch and retry
	Conflict = 5

	// StoreError indicates the task store was unreachable or corrupt
	StoreError = 6

	// Interrupted indicates the user cancelled the operation
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode derives the exit code from the error taxonomy
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	switch {
	case errors.IsCode(err, errors.ErrCodeTemplateNotFound),
		errors.IsCode(err, errors.ErrCodeAnchorNotFound),
		errors.IsCode(err, errors.ErrCodeInstanceNotFound):
		return NotFound
	case errors.IsCode(err, errors.ErrCodeMissingAnchorDate),
		errors.IsCode(err, errors.ErrCodeInvalidOffset),
		errors.IsCode(err, errors.ErrCodeInvalidSnoozeDuration),
		errors.IsCode(err, errors.ErrCodeTemplateInvalid):
		return ValidationError
	case errors.IsCode(err, errors.ErrCodeInvalidStateTransition),
		errors.IsCode(err, errors.ErrCodeConcurrentModification),
		errors.IsCode(err, errors.ErrCodeInstanceExists):
		return Conflict
	case errors.IsCode(err, errors.ErrCodeStoreUnavailable),
		errors.IsCode(err, errors.ErrCodeStoreCorrupt):
		return StoreError
	}

	return GeneralError
}

// Description returns a human-readable description of an exit code
func Description(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case NotFound:
		return "Template, anchor, or task not found"
	case ValidationError:
		return "Validation error"
	case Conflict:
		return "Conflict (retry with the current version)"
	case StoreError:
		return "Task store error"
	default:
		return "Unknown error"
	}
}
