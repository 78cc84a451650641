package task

import (
	"time"

	"github.com/Caspar241/releasehub/internal/domain"
)

// Instance is a concrete, stateful task produced by applying a template
// against an anchor. Instances are created only by the instantiation
// engine, mutated only through the lifecycle manager, and never deleted;
// dismissal is a terminal soft-delete retained for audit.
type Instance struct {
	InstanceID     domain.InstanceID   `json:"instance_id"`
	TemplateID     string              `json:"template_id"`
	TemplateTaskID string              `json:"template_task_id"`

	// AnchorID is the release or artist routine this instance belongs to.
	AnchorID string `json:"anchor_id"`

	// CycleKey is set only for recurring routine instances and scopes
	// them to one ISO week batch.
	CycleKey domain.CycleKey `json:"cycle_key,omitempty"`

	Title    string              `json:"title"`
	Category domain.TaskCategory `json:"category"`

	// DueDate is anchor date + offset for release templates and the
	// cycle end for artist templates.
	DueDate *time.Time `json:"due_date,omitempty"`

	Status       domain.Status `json:"status"`
	SnoozedUntil *time.Time    `json:"snoozed_until,omitempty"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`

	// Version is the optimistic concurrency counter. Every accepted
	// lifecycle command increments it by exactly 1.
	Version int64 `json:"version"`
}

// Clone returns a deep copy so store internals never alias caller state
func (i *Instance) Clone() *Instance {
	out := *i
	if i.DueDate != nil {
		due := *i.DueDate
		out.DueDate = &due
	}
	if i.SnoozedUntil != nil {
		until := *i.SnoozedUntil
		out.SnoozedUntil = &until
	}
	if i.CompletedAt != nil {
		at := *i.CompletedAt
		out.CompletedAt = &at
	}
	return &out
}

// SnoozeExpired reports whether the instance is snoozed with the snooze
// window already over. Readers treat such instances as pending again; a
// periodic sweep persists the reversion eventually.
func (i *Instance) SnoozeExpired(now time.Time) bool {
	return i.Status == domain.StatusSnoozed && i.SnoozedUntil != nil && !i.SnoozedUntil.After(now)
}

// EffectiveStatus is the status a reader observes at time now, with
// expired snoozes lazily reverted to pending.
func (i *Instance) EffectiveStatus(now time.Time) domain.Status {
	if i.SnoozeExpired(now) {
		return domain.StatusPending
	}
	return i.Status
}

// Overdue reports whether the instance has a due date in the past
// relative to the calendar day of now (due today is not overdue).
func (i *Instance) Overdue(now time.Time) bool {
	if i.DueDate == nil {
		return false
	}
	due := i.DueDate.Truncate(24 * time.Hour)
	today := now.UTC().Truncate(24 * time.Hour)
	return due.Before(today)
}
