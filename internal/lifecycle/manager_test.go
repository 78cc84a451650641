package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/Caspar241/releasehub/internal/domain"
	"github.com/Caspar241/releasehub/internal/errors"
	"github.com/Caspar241/releasehub/internal/task"
)

var testNow = time.Date(2025, 12, 3, 10, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T) (*Manager, *task.MemoryStore) {
	t.Helper()
	store := task.NewMemoryStore()
	mgr := NewManager(store, nil)
	mgr.SetClock(func() time.Time { return testNow })
	return mgr, store
}

func seedInstance(t *testing.T, store *task.MemoryStore, id string, status domain.Status) *task.Instance {
	t.Helper()
	inst := &task.Instance{
		InstanceID:     domain.InstanceID(id),
		TemplateID:     "single-8w",
		TemplateTaskID: "p1-t1",
		AnchorID:       "rel-1",
		Title:          "Release-Strategie festlegen",
		Category:       domain.CategoryStrategy,
		Status:         status,
		CreatedAt:      testNow.Add(-24 * time.Hour),
		Version:        0,
	}
	if err := store.Create(context.Background(), inst); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return inst
}

func TestComplete(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()
	seedInstance(t, store, "inst-1", domain.StatusPending)

	inst, err := mgr.Complete(ctx, "inst-1", 0)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if inst.Status != domain.StatusCompleted {
		t.Errorf("Expected completed, got %s", inst.Status)
	}
	if inst.CompletedAt == nil || !inst.CompletedAt.Equal(testNow) {
		t.Errorf("Expected CompletedAt %v, got %v", testNow, inst.CompletedAt)
	}
	if inst.Version != 1 {
		t.Errorf("Expected version 1, got %d", inst.Version)
	}

	stored, _ := store.Get(ctx, "inst-1")
	if stored.Status != domain.StatusCompleted || stored.Version != 1 {
		t.Errorf("Stored instance not updated: status=%s version=%d", stored.Status, stored.Version)
	}
}

func TestCompleteTerminalRejected(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()
	seedInstance(t, store, "inst-1", domain.StatusPending)

	if _, err := mgr.Complete(ctx, "inst-1", 0); err != nil {
		t.Fatalf("First complete failed: %v", err)
	}

	_, err := mgr.Complete(ctx, "inst-1", 1)
	if !errors.IsCode(err, errors.ErrCodeInvalidStateTransition) {
		t.Errorf("Expected TASK-003, got %v", err)
	}

	// A rejected command must not bump the version.
	stored, _ := store.Get(ctx, "inst-1")
	if stored.Version != 1 {
		t.Errorf("Expected version 1 after rejection, got %d", stored.Version)
	}
}

func TestCompleteVersionConflict(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()
	seedInstance(t, store, "inst-1", domain.StatusPending)

	if _, err := mgr.Snooze(ctx, "inst-1", 24, 0); err != nil {
		t.Fatalf("Snooze failed: %v", err)
	}

	// Second caller still holds version 0.
	_, err := mgr.Complete(ctx, "inst-1", 0)
	if !errors.IsCode(err, errors.ErrCodeConcurrentModification) {
		t.Errorf("Expected TASK-004, got %v", err)
	}
}

func TestStaleVersionOnTerminalInstanceIsConflict(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()
	seedInstance(t, store, "inst-1", domain.StatusPending)

	// Two callers read version 0; the first one completes the task.
	if _, err := mgr.Complete(ctx, "inst-1", 0); err != nil {
		t.Fatalf("First complete failed: %v", err)
	}

	// The loser still holds version 0. It must learn about the lost
	// race (re-fetch and retry), not get a state rejection derived from
	// the winner's write.
	_, err := mgr.Complete(ctx, "inst-1", 0)
	if !errors.IsCode(err, errors.ErrCodeConcurrentModification) {
		t.Errorf("Expected TASK-004 for stale version, got %v", err)
	}

	// Same for the other commands against the now-terminal instance.
	if _, err := mgr.Snooze(ctx, "inst-1", 24, 0); !errors.IsCode(err, errors.ErrCodeConcurrentModification) {
		t.Errorf("Snooze: expected TASK-004 for stale version, got %v", err)
	}
	if _, err := mgr.Dismiss(ctx, "inst-1", 0); !errors.IsCode(err, errors.ErrCodeConcurrentModification) {
		t.Errorf("Dismiss: expected TASK-004 for stale version, got %v", err)
	}
}

func TestSnooze(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()
	seedInstance(t, store, "inst-1", domain.StatusPending)

	inst, err := mgr.Snooze(ctx, "inst-1", 2, 0)
	if err != nil {
		t.Fatalf("Snooze failed: %v", err)
	}
	if inst.Status != domain.StatusSnoozed {
		t.Errorf("Expected snoozed, got %s", inst.Status)
	}
	want := testNow.Add(2 * time.Hour)
	if inst.SnoozedUntil == nil || !inst.SnoozedUntil.Equal(want) {
		t.Errorf("Expected SnoozedUntil %v, got %v", want, inst.SnoozedUntil)
	}

	// Re-snoozing replaces the window.
	inst, err = mgr.Snooze(ctx, "inst-1", 168, 1)
	if err != nil {
		t.Fatalf("Re-snooze failed: %v", err)
	}
	want = testNow.Add(168 * time.Hour)
	if inst.SnoozedUntil == nil || !inst.SnoozedUntil.Equal(want) {
		t.Errorf("Expected replaced SnoozedUntil %v, got %v", want, inst.SnoozedUntil)
	}

	stored, _ := store.Get(ctx, "inst-1")
	if stored.Version != 2 {
		t.Errorf("Expected version 2, got %d", stored.Version)
	}
}

func TestSnoozeInvalidDuration(t *testing.T) {
	mgr, store := newTestManager(t)
	seedInstance(t, store, "inst-1", domain.StatusPending)

	for _, hours := range []int{0, 1, 3, 48, -24} {
		_, err := mgr.Snooze(context.Background(), "inst-1", hours, 0)
		if !errors.IsCode(err, errors.ErrCodeInvalidSnoozeDuration) {
			t.Errorf("Snooze(%d): expected TASK-002, got %v", hours, err)
		}
	}
}

func TestDismiss(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()
	seedInstance(t, store, "inst-1", domain.StatusPending)

	inst, err := mgr.Dismiss(ctx, "inst-1", 0)
	if err != nil {
		t.Fatalf("Dismiss failed: %v", err)
	}
	if inst.Status != domain.StatusDismissed {
		t.Errorf("Expected dismissed, got %s", inst.Status)
	}

	// Dismissed is terminal.
	_, err = mgr.Complete(ctx, "inst-1", 1)
	if !errors.IsCode(err, errors.ErrCodeInvalidStateTransition) {
		t.Errorf("Expected TASK-003, got %v", err)
	}
}

func TestCommandOnExpiredSnoozeActsOnPending(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()
	seedInstance(t, store, "inst-1", domain.StatusPending)

	if _, err := mgr.Snooze(ctx, "inst-1", 2, 0); err != nil {
		t.Fatalf("Snooze failed: %v", err)
	}

	// Jump past the snooze window; completing the lapsed snooze works
	// exactly like completing a pending task.
	mgr.SetClock(func() time.Time { return testNow.Add(3 * time.Hour) })
	inst, err := mgr.Complete(ctx, "inst-1", 1)
	if err != nil {
		t.Fatalf("Complete after lapse failed: %v", err)
	}
	if inst.Status != domain.StatusCompleted {
		t.Errorf("Expected completed, got %s", inst.Status)
	}
	if inst.SnoozedUntil != nil {
		t.Error("Expected SnoozedUntil cleared")
	}
}

func TestUnknownInstance(t *testing.T) {
	mgr, _ := newTestManager(t)

	_, err := mgr.Complete(context.Background(), "missing", 0)
	if !errors.IsCode(err, errors.ErrCodeInstanceNotFound) {
		t.Errorf("Expected TASK-001, got %v", err)
	}
}

func TestSweepExpiredSnoozes(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	seedInstance(t, store, "inst-1", domain.StatusPending)
	seedInstance(t, store, "inst-2", domain.StatusPending)
	seedInstance(t, store, "inst-3", domain.StatusPending)

	if _, err := mgr.Snooze(ctx, "inst-1", 2, 0); err != nil {
		t.Fatalf("Snooze inst-1 failed: %v", err)
	}
	if _, err := mgr.Snooze(ctx, "inst-2", 168, 0); err != nil {
		t.Fatalf("Snooze inst-2 failed: %v", err)
	}

	mgr.SetClock(func() time.Time { return testNow.Add(3 * time.Hour) })
	swept, err := mgr.SweepExpiredSnoozes(ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if swept != 1 {
		t.Errorf("Expected 1 swept, got %d", swept)
	}

	one, _ := store.Get(ctx, "inst-1")
	if one.Status != domain.StatusPending || one.SnoozedUntil != nil {
		t.Errorf("inst-1 not reverted: status=%s until=%v", one.Status, one.SnoozedUntil)
	}
	if one.Version != 2 {
		t.Errorf("Expected inst-1 version 2, got %d", one.Version)
	}

	two, _ := store.Get(ctx, "inst-2")
	if two.Status != domain.StatusSnoozed {
		t.Errorf("inst-2 should still be snoozed, got %s", two.Status)
	}
}

func TestSweeperRunsAndStops(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()
	seedInstance(t, store, "inst-1", domain.StatusPending)
	if _, err := mgr.Snooze(ctx, "inst-1", 2, 0); err != nil {
		t.Fatalf("Snooze failed: %v", err)
	}
	mgr.SetClock(func() time.Time { return testNow.Add(3 * time.Hour) })

	sweeper := NewSweeper(SweeperConfig{Manager: mgr, Interval: time.Hour})
	go sweeper.Start(ctx)
	// The first sweep runs immediately on start.
	deadline := time.Now().Add(2 * time.Second)
	for {
		inst, _ := store.Get(ctx, "inst-1")
		if inst.Status == domain.StatusPending {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Sweeper did not revert the expired snooze in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
	sweeper.Stop()
}
