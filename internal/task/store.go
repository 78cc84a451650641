package task

import (
	"context"
	"time"

	"github.com/Caspar241/releasehub/internal/domain"
)

// Store is the task instance persistence interface. It is the only
// shared mutable resource in the engine; implementations must be safe
// for concurrent use and must implement Update as a compare-and-swap on
// the version counter.
type Store interface {
	// Create inserts a new instance. The instance ID is deterministic,
	// so a duplicate insert signals a retry of an already-applied
	// template; callers check Get first and treat duplicates as skips.
	Create(ctx context.Context, inst *Instance) error

	// Get retrieves an instance by ID.
	// Returns ErrCodeInstanceNotFound if no such instance exists.
	Get(ctx context.Context, id domain.InstanceID) (*Instance, error)

	// Update persists a mutated instance if and only if the stored
	// version still equals expectedVersion; the stored version becomes
	// expectedVersion+1. A mismatch fails with
	// ErrCodeConcurrentModification and leaves the row unchanged.
	Update(ctx context.Context, inst *Instance, expectedVersion int64) error

	// ListByAnchor returns all instances for an anchor, dismissed ones
	// included, ordered by due date then creation time.
	ListByAnchor(ctx context.Context, anchorID string) ([]*Instance, error)

	// ListByAnchorCycle returns the instances of one routine cycle.
	ListByAnchorCycle(ctx context.Context, anchorID string, cycleKey domain.CycleKey) ([]*Instance, error)

	// ListExpiredSnoozes returns snoozed instances whose snooze window
	// ended at or before now. Used by the periodic sweep.
	ListExpiredSnoozes(ctx context.Context, now time.Time) ([]*Instance, error)

	// ListDueBefore returns non-dismissed, non-completed instances due
	// strictly before t. Used for "due soon" notification queries.
	ListDueBefore(ctx context.Context, t time.Time) ([]*Instance, error)
}
