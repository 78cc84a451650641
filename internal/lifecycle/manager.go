// Package lifecycle owns task instance state transitions. Every command
// is a compare-and-swap against the instance's version counter, so
// concurrent callers can never silently overwrite each other.
package lifecycle

import (
	"context"
	"time"

	"github.com/Caspar241/releasehub/internal/domain"
	"github.com/Caspar241/releasehub/internal/errors"
	"github.com/Caspar241/releasehub/internal/log"
	"github.com/Caspar241/releasehub/internal/task"
)

// AllowedSnoozeHours are the only snooze durations a caller may request:
// two hours, one day, one week.
var AllowedSnoozeHours = []int{2, 24, 168}

// Manager executes lifecycle commands on task instances.
type Manager struct {
	store  task.Store
	logger *log.Logger
	now    func() time.Time
}

// NewManager creates a lifecycle manager.
func NewManager(store task.Store, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Manager{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Complete transitions a pending or snoozed instance to completed.
// expectedVersion is the version the caller last observed.
func (m *Manager) Complete(ctx context.Context, id domain.InstanceID, expectedVersion int64) (*task.Instance, error) {
	return m.transition(ctx, id, expectedVersion, "complete", func(inst *task.Instance, now time.Time) error {
		if inst.Status.IsTerminal() {
			return errors.NewInvalidStateTransitionError(string(id), string(inst.Status), "complete")
		}
		inst.Status = domain.StatusCompleted
		completedAt := now
		inst.CompletedAt = &completedAt
		inst.SnoozedUntil = nil
		return nil
	})
}

// Snooze hides a pending or snoozed instance for the given number of
// hours. Only the durations in AllowedSnoozeHours are accepted.
// Re-snoozing replaces the previous window rather than stacking on it.
func (m *Manager) Snooze(ctx context.Context, id domain.InstanceID, hours int, expectedVersion int64) (*task.Instance, error) {
	if !snoozeAllowed(hours) {
		return nil, errors.NewInvalidSnoozeDurationError(hours, AllowedSnoozeHours)
	}

	return m.transition(ctx, id, expectedVersion, "snooze", func(inst *task.Instance, now time.Time) error {
		if inst.Status.IsTerminal() {
			return errors.NewInvalidStateTransitionError(string(id), string(inst.Status), "snooze")
		}
		until := now.Add(time.Duration(hours) * time.Hour)
		inst.Status = domain.StatusSnoozed
		inst.SnoozedUntil = &until
		return nil
	})
}

// Dismiss removes a pending or snoozed instance from view permanently.
// The instance is retained as a terminal record, never deleted.
func (m *Manager) Dismiss(ctx context.Context, id domain.InstanceID, expectedVersion int64) (*task.Instance, error) {
	return m.transition(ctx, id, expectedVersion, "dismiss", func(inst *task.Instance, now time.Time) error {
		if inst.Status.IsTerminal() {
			return errors.NewInvalidStateTransitionError(string(id), string(inst.Status), "dismiss")
		}
		inst.Status = domain.StatusDismissed
		inst.SnoozedUntil = nil
		return nil
	})
}

// transition runs one read-mutate-CAS cycle. The version comparison
// happens before the state check: a caller holding a stale version gets
// ConcurrentModification (re-fetch and retry), never a state rejection
// based on another caller's interleaved write. Expired snoozes are
// normalized to pending before the mutation sees the instance, so a
// command against a lapsed snooze behaves as if the reversion had
// already been persisted.
func (m *Manager) transition(ctx context.Context, id domain.InstanceID, expectedVersion int64, command string, mutate func(*task.Instance, time.Time) error) (*task.Instance, error) {
	inst, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inst.Version != expectedVersion {
		return nil, errors.NewConcurrentModificationError(string(id), expectedVersion, inst.Version)
	}

	now := m.now().UTC()
	if inst.SnoozeExpired(now) {
		inst.Status = domain.StatusPending
		inst.SnoozedUntil = nil
	}

	if err := mutate(inst, now); err != nil {
		return nil, err
	}

	if err := m.store.Update(ctx, inst, expectedVersion); err != nil {
		return nil, err
	}
	inst.Version = expectedVersion + 1

	m.logger.InfoContext(ctx, "task transitioned",
		"instance_id", string(id),
		"command", command,
		"status", string(inst.Status),
		"version", inst.Version,
	)
	return inst, nil
}

// SweepExpiredSnoozes persists the pending reversion for every snoozed
// instance whose window has lapsed. Races with concurrent commands are
// benign: a version conflict means someone else already moved the
// instance on, so the sweep skips it.
func (m *Manager) SweepExpiredSnoozes(ctx context.Context) (int, error) {
	now := m.now().UTC()
	expired, err := m.store.ListExpiredSnoozes(ctx, now)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, inst := range expired {
		version := inst.Version
		inst.Status = domain.StatusPending
		inst.SnoozedUntil = nil
		if err := m.store.Update(ctx, inst, version); err != nil {
			if errors.IsCode(err, errors.ErrCodeConcurrentModification) || errors.IsCode(err, errors.ErrCodeInstanceNotFound) {
				continue
			}
			return swept, err
		}
		swept++
	}

	if swept > 0 {
		m.logger.InfoContext(ctx, "expired snoozes swept", "count", swept)
	}
	return swept, nil
}

func snoozeAllowed(hours int) bool {
	for _, h := range AllowedSnoozeHours {
		if h == hours {
			return true
		}
	}
	return false
}
