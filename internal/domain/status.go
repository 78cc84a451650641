package domain

import "fmt"

// Status represents the lifecycle state of a task instance.
type Status string

// Valid task instance states
const (
	// StatusPending is the initial state; the task is open and actionable.
	StatusPending Status = "pending"
	// StatusCompleted means the task was finished. Terminal; reopening is
	// not supported.
	StatusCompleted Status = "completed"
	// StatusSnoozed means the task is hidden until snoozedUntil passes,
	// after which it automatically reverts to pending.
	StatusSnoozed Status = "snoozed"
	// StatusDismissed is the terminal soft-delete state. Dismissed tasks
	// are excluded from active groupings but retained for audit.
	StatusDismissed Status = "dismissed"
)

// NewStatus creates a new Status value object with validation
func NewStatus(value string) (Status, error) {
	s := Status(value)
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

// Validate checks if the status is valid
func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusCompleted, StatusSnoozed, StatusDismissed:
		return nil
	default:
		return fmt.Errorf("invalid status %q: must be pending, completed, snoozed, or dismissed", string(s))
	}
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the status accepts no further commands
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusDismissed
}

// IsActive reports whether the status counts toward active groupings.
// Dismissed instances are retained but excluded from the active set.
func (s Status) IsActive() bool {
	return s != StatusDismissed
}
