package task

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Caspar241/releasehub/internal/domain"
	"github.com/Caspar241/releasehub/internal/errors"
)

// createTestSQLiteStore creates a SQLite store in a temp directory
func createTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "tasks.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create SQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := createTestSQLiteStore(t)

	inst := newTestInstance("p1-t1", "rel-1", datePtr(2025, 10, 6))
	if err := store.Create(ctx, inst); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(ctx, inst.InstanceID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got.InstanceID != inst.InstanceID {
		t.Errorf("instance ID mismatch: %s != %s", got.InstanceID, inst.InstanceID)
	}
	if got.Category != domain.CategoryMarketing {
		t.Errorf("category mismatch: %s", got.Category)
	}
	if got.DueDate == nil || !got.DueDate.Equal(*inst.DueDate) {
		t.Errorf("due date mismatch: %v != %v", got.DueDate, inst.DueDate)
	}
	if got.SnoozedUntil != nil || got.CompletedAt != nil {
		t.Error("nullable times should round-trip as nil")
	}
}

func TestSQLiteStoreCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	store := createTestSQLiteStore(t)

	inst := newTestInstance("p1-t1", "rel-1", nil)
	if err := store.Create(ctx, inst); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := store.Create(ctx, inst)
	if !errors.IsCode(err, errors.ErrCodeInstanceExists) {
		t.Errorf("expected TASK-005 on duplicate create, got %v", err)
	}
}

func TestSQLiteStoreUpdateCAS(t *testing.T) {
	ctx := context.Background()
	store := createTestSQLiteStore(t)

	inst := newTestInstance("p1-t1", "rel-1", nil)
	if err := store.Create(ctx, inst); err != nil {
		t.Fatalf("Create: %v", err)
	}

	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	inst.Status = domain.StatusCompleted
	inst.CompletedAt = &now

	if err := store.Update(ctx, inst, 0); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := store.Get(ctx, inst.InstanceID)
	if got.Version != 1 {
		t.Errorf("version should be 1, got %d", got.Version)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(now) {
		t.Errorf("completedAt should round-trip, got %v", got.CompletedAt)
	}

	err := store.Update(ctx, inst, 0)
	if !errors.IsCode(err, errors.ErrCodeConcurrentModification) {
		t.Errorf("expected TASK-004 on stale version, got %v", err)
	}
}

func TestSQLiteStoreUpdateMissing(t *testing.T) {
	ctx := context.Background()
	store := createTestSQLiteStore(t)

	inst := newTestInstance("p1-t1", "rel-1", nil)
	err := store.Update(ctx, inst, 0)
	if !errors.IsCode(err, errors.ErrCodeInstanceNotFound) {
		t.Errorf("expected TASK-001 for missing instance, got %v", err)
	}
}

func TestSQLiteStoreListByAnchorCycle(t *testing.T) {
	ctx := context.Background()
	store := createTestSQLiteStore(t)

	week48 := newTestInstance("p1-t1", "routine-1", nil)
	week48.InstanceID = domain.NewInstanceID("artist-weekly", "p1-t1", "routine-1", "2025-W48")
	week48.CycleKey = "2025-W48"

	week49 := newTestInstance("p1-t1", "routine-1", nil)
	week49.InstanceID = domain.NewInstanceID("artist-weekly", "p1-t1", "routine-1", "2025-W49")
	week49.CycleKey = "2025-W49"

	for _, inst := range []*Instance{week48, week49} {
		if err := store.Create(ctx, inst); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := store.ListByAnchorCycle(ctx, "routine-1", "2025-W49")
	if err != nil {
		t.Fatalf("ListByAnchorCycle: %v", err)
	}
	if len(got) != 1 || got[0].CycleKey != "2025-W49" {
		t.Errorf("expected only the W49 batch, got %d instances", len(got))
	}

	all, err := store.ListByAnchor(ctx, "routine-1")
	if err != nil {
		t.Fatalf("ListByAnchor: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("history must retain both cycles, got %d", len(all))
	}
}

func TestSQLiteStoreListExpiredSnoozes(t *testing.T) {
	ctx := context.Background()
	store := createTestSQLiteStore(t)
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

	expired := newTestInstance("p1-t1", "rel-1", nil)
	expired.Status = domain.StatusSnoozed
	past := now.Add(-time.Minute)
	expired.SnoozedUntil = &past

	active := newTestInstance("p1-t2", "rel-1", nil)
	active.Status = domain.StatusSnoozed
	future := now.Add(time.Hour)
	active.SnoozedUntil = &future

	for _, inst := range []*Instance{expired, active} {
		if err := store.Create(ctx, inst); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := store.ListExpiredSnoozes(ctx, now)
	if err != nil {
		t.Fatalf("ListExpiredSnoozes: %v", err)
	}
	if len(got) != 1 || got[0].TemplateTaskID != "p1-t1" {
		t.Errorf("expected only the expired snooze, got %d", len(got))
	}
}

func TestSQLiteStorePing(t *testing.T) {
	store := createTestSQLiteStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping should succeed on an open store: %v", err)
	}
}
