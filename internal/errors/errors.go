package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Template errors (TEMPLATE-001 to TEMPLATE-099)
	ErrCodeTemplateNotFound ErrorCode = "TEMPLATE-001"
	ErrCodeTemplateInvalid  ErrorCode = "TEMPLATE-002"
	ErrCodeInvalidOffset    ErrorCode = "TEMPLATE-003"
	ErrCodeCatalogUnmarshal ErrorCode = "TEMPLATE-004"

	// Anchor errors (ANCHOR-001 to ANCHOR-099)
	ErrCodeAnchorNotFound    ErrorCode = "ANCHOR-001"
	ErrCodeMissingAnchorDate ErrorCode = "ANCHOR-002"

	// Task instance errors (TASK-001 to TASK-099)
	ErrCodeInstanceNotFound       ErrorCode = "TASK-001"
	ErrCodeInvalidSnoozeDuration  ErrorCode = "TASK-002"
	ErrCodeInvalidStateTransition ErrorCode = "TASK-003"
	ErrCodeConcurrentModification ErrorCode = "TASK-004"
	ErrCodeInstanceExists         ErrorCode = "TASK-005"

	// Store errors (STORE-001 to STORE-099)
	ErrCodeStoreUnavailable ErrorCode = "STORE-001"
	ErrCodeStoreCorrupt     ErrorCode = "STORE-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound   ErrorCode = "IO-001"
	ErrCodeFileReadFailed ErrorCode = "IO-002"
	ErrCodeFileUnmarshal  ErrorCode = "IO-003"
)

// ReleaseHubError represents an enhanced error with code, suggestions, and documentation
type ReleaseHubError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *ReleaseHubError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *ReleaseHubError) Unwrap() error {
	return e.Cause
}

// New creates a new ReleaseHubError
func New(code ErrorCode, message string) *ReleaseHubError {
	return &ReleaseHubError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new ReleaseHubError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *ReleaseHubError {
	return &ReleaseHubError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *ReleaseHubError) WithSuggestion(suggestion string) *ReleaseHubError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *ReleaseHubError) WithSuggestions(suggestions ...string) *ReleaseHubError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *ReleaseHubError) WithDocs(url string) *ReleaseHubError {
	e.DocsURL = url
	return e
}

// IsCode reports whether err (or any error it wraps) is a ReleaseHubError
// with the given code
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		if rhErr, ok := err.(*ReleaseHubError); ok && rhErr.Code == code {
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// Common error constructors for frequently used errors

// NewTemplateNotFoundError creates a template not found error
func NewTemplateNotFoundError(templateID string) *ReleaseHubError {
	return New(ErrCodeTemplateNotFound, fmt.Sprintf("template not found: %s", templateID)).
		WithSuggestion("Run 'releasehub templates list' to see available templates").
		WithSuggestion("Check if the template ID is spelled correctly")
}

// NewMissingAnchorDateError creates a missing anchor date error.
// Release-type templates cannot be applied without a release date.
func NewMissingAnchorDateError(templateID, anchorID string) *ReleaseHubError {
	return New(ErrCodeMissingAnchorDate, fmt.Sprintf("template %s requires an anchor date for %s", templateID, anchorID)).
		WithSuggestion("Set a release date on the release before applying the template").
		WithSuggestion("Artist routines do not need a date; use an artist-type template instead")
}

// NewInvalidOffsetError creates an invalid offset configuration error
func NewInvalidOffsetError(templateID, taskID string) *ReleaseHubError {
	return New(ErrCodeInvalidOffset, fmt.Sprintf("template %s task %s has no day offset", templateID, taskID)).
		WithSuggestion("Release-type templates must define offsetDays on every task").
		WithSuggestion("Only artist-type templates may omit offsets")
}

// NewInvalidSnoozeDurationError creates an invalid snooze duration error
func NewInvalidSnoozeDurationError(hours int, allowed []int) *ReleaseHubError {
	parts := make([]string, len(allowed))
	for i, h := range allowed {
		parts[i] = fmt.Sprintf("%d", h)
	}
	return New(ErrCodeInvalidSnoozeDuration, fmt.Sprintf("snooze duration %dh is not allowed", hours)).
		WithSuggestion(fmt.Sprintf("Use one of the allowed durations: %s hours", strings.Join(parts, ", ")))
}

// NewInvalidStateTransitionError creates an invalid state transition error
func NewInvalidStateTransitionError(instanceID, from, command string) *ReleaseHubError {
	return New(ErrCodeInvalidStateTransition, fmt.Sprintf("cannot %s task %s in state %s", command, instanceID, from)).
		WithSuggestion("Completed and dismissed tasks accept no further commands")
}

// NewConcurrentModificationError creates a version conflict error.
// The caller should re-fetch the instance and retry with the current version.
func NewConcurrentModificationError(instanceID string, expected, actual int64) *ReleaseHubError {
	return New(ErrCodeConcurrentModification, fmt.Sprintf("task %s was modified concurrently (expected version %d, have %d)", instanceID, expected, actual)).
		WithSuggestion("Re-fetch the task and retry the command with the current version")
}

// NewAnchorNotFoundError creates an anchor not found error
func NewAnchorNotFoundError(anchorID string) *ReleaseHubError {
	return New(ErrCodeAnchorNotFound, fmt.Sprintf("anchor not found: %s", anchorID)).
		WithSuggestion("Check if the release or routine ID is correct")
}

// NewInstanceNotFoundError creates a task instance not found error
func NewInstanceNotFoundError(instanceID string) *ReleaseHubError {
	return New(ErrCodeInstanceNotFound, fmt.Sprintf("task instance not found: %s", instanceID))
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *ReleaseHubError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
