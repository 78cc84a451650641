package task

import (
	"context"
	"testing"
	"time"

	"github.com/Caspar241/releasehub/internal/domain"
	"github.com/Caspar241/releasehub/internal/errors"
)

// newTestInstance builds a pending instance for store tests
func newTestInstance(taskID, anchorID string, due *time.Time) *Instance {
	return &Instance{
		InstanceID:     domain.NewInstanceID("single-8w", taskID, anchorID, ""),
		TemplateID:     "single-8w",
		TemplateTaskID: taskID,
		AnchorID:       anchorID,
		Title:          "Test task " + taskID,
		Category:       domain.CategoryMarketing,
		DueDate:        due,
		Status:         domain.StatusPending,
		CreatedAt:      time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC),
		Version:        0,
	}
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestMemoryStoreCreateGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	inst := newTestInstance("p1-t1", "rel-1", datePtr(2025, 10, 6))
	if err := store.Create(ctx, inst); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(ctx, inst.InstanceID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != inst.Title || got.Version != 0 {
		t.Errorf("unexpected instance: %+v", got)
	}
}

func TestMemoryStoreCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	inst := newTestInstance("p1-t1", "rel-1", nil)
	if err := store.Create(ctx, inst); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := store.Create(ctx, inst)
	if !errors.IsCode(err, errors.ErrCodeInstanceExists) {
		t.Errorf("expected TASK-005 on duplicate create, got %v", err)
	}
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	if !errors.IsCode(err, errors.ErrCodeInstanceNotFound) {
		t.Errorf("expected TASK-001, got %v", err)
	}
}

func TestMemoryStoreUpdateCAS(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	inst := newTestInstance("p1-t1", "rel-1", nil)
	if err := store.Create(ctx, inst); err != nil {
		t.Fatalf("Create: %v", err)
	}

	inst.Status = domain.StatusCompleted
	if err := store.Update(ctx, inst, 0); err != nil {
		t.Fatalf("Update with matching version: %v", err)
	}

	got, _ := store.Get(ctx, inst.InstanceID)
	if got.Version != 1 {
		t.Errorf("version should be bumped to 1, got %d", got.Version)
	}
	if got.Status != domain.StatusCompleted {
		t.Errorf("status should be completed, got %s", got.Status)
	}

	// A second write with the stale version must fail and leave the row alone.
	err := store.Update(ctx, inst, 0)
	if !errors.IsCode(err, errors.ErrCodeConcurrentModification) {
		t.Errorf("expected TASK-004 on stale version, got %v", err)
	}

	got, _ = store.Get(ctx, inst.InstanceID)
	if got.Version != 1 {
		t.Errorf("failed CAS must not change the version, got %d", got.Version)
	}
}

func TestMemoryStoreCloneIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	inst := newTestInstance("p1-t1", "rel-1", datePtr(2025, 10, 6))
	if err := store.Create(ctx, inst); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Mutating the caller's copy after Create must not leak into the store.
	inst.Title = "mutated"
	*inst.DueDate = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	got, _ := store.Get(ctx, inst.InstanceID)
	if got.Title == "mutated" {
		t.Error("store must clone on write")
	}
	if got.DueDate.Year() == 2030 {
		t.Error("store must deep-copy pointer fields")
	}
}

func TestMemoryStoreListByAnchorOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	late := newTestInstance("p4-t3", "rel-1", datePtr(2025, 12, 8))
	early := newTestInstance("p1-t1", "rel-1", datePtr(2025, 10, 6))
	undated := newTestInstance("p1-t2", "rel-1", nil)
	other := newTestInstance("p1-t1", "rel-2", datePtr(2025, 1, 1))

	for _, inst := range []*Instance{late, early, undated, other} {
		if err := store.Create(ctx, inst); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := store.ListByAnchor(ctx, "rel-1")
	if err != nil {
		t.Fatalf("ListByAnchor: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 instances for rel-1, got %d", len(got))
	}
	if got[0].TemplateTaskID != "p1-t1" || got[1].TemplateTaskID != "p4-t3" {
		t.Errorf("expected due-date order, got %s then %s", got[0].TemplateTaskID, got[1].TemplateTaskID)
	}
	if got[2].DueDate != nil {
		t.Error("undated instances must sort last")
	}
}

func TestMemoryStoreListExpiredSnoozes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

	expired := newTestInstance("p1-t1", "rel-1", nil)
	expired.Status = domain.StatusSnoozed
	until := now.Add(-time.Hour)
	expired.SnoozedUntil = &until

	active := newTestInstance("p1-t2", "rel-1", nil)
	active.Status = domain.StatusSnoozed
	future := now.Add(time.Hour)
	active.SnoozedUntil = &future

	pending := newTestInstance("p1-t3", "rel-1", nil)

	for _, inst := range []*Instance{expired, active, pending} {
		if err := store.Create(ctx, inst); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := store.ListExpiredSnoozes(ctx, now)
	if err != nil {
		t.Fatalf("ListExpiredSnoozes: %v", err)
	}
	if len(got) != 1 || got[0].TemplateTaskID != "p1-t1" {
		t.Errorf("expected only the expired snooze, got %d instances", len(got))
	}
}

func TestMemoryStoreListDueBefore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	cutoff := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)

	overdue := newTestInstance("p1-t1", "rel-1", datePtr(2025, 10, 6))
	done := newTestInstance("p1-t2", "rel-1", datePtr(2025, 10, 7))
	done.Status = domain.StatusCompleted
	future := newTestInstance("p1-t3", "rel-1", datePtr(2025, 12, 1))

	for _, inst := range []*Instance{overdue, done, future} {
		if err := store.Create(ctx, inst); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := store.ListDueBefore(ctx, cutoff)
	if err != nil {
		t.Fatalf("ListDueBefore: %v", err)
	}
	if len(got) != 1 || got[0].TemplateTaskID != "p1-t1" {
		t.Errorf("expected only the open overdue instance, got %d", len(got))
	}
}
