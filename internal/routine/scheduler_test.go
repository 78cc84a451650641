package routine

import (
	"context"
	"testing"
	"time"

	"github.com/Caspar241/releasehub/internal/catalog"
	"github.com/Caspar241/releasehub/internal/domain"
	"github.com/Caspar241/releasehub/internal/engine"
	"github.com/Caspar241/releasehub/internal/registry"
	"github.com/Caspar241/releasehub/internal/task"
)

// Monday of ISO week 2025-W49.
var week49 = time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T) (*Scheduler, *task.MemoryStore, *registry.MemoryRoutineRegistry) {
	t.Helper()
	cat := catalog.NewBuiltinCatalog()
	store := task.NewMemoryStore()
	routines := registry.NewMemoryRoutineRegistry()
	eng := engine.New(cat, store, nil, nil)
	return NewScheduler(cat, eng, store, routines, nil), store, routines
}

func routineTaskCount(t *testing.T) int {
	t.Helper()
	tpl, err := catalog.NewBuiltinCatalog().Template("artist-weekly")
	if err != nil {
		t.Fatalf("Template failed: %v", err)
	}
	return tpl.TaskCount()
}

func TestTickCreatesCurrentCycle(t *testing.T) {
	sched, store, routines := newTestScheduler(t)
	ctx := context.Background()
	routines.Add(&registry.Routine{ID: "rout-1", UserID: "user-1", ArtistName: "Nova", TemplateID: "artist-weekly"})

	result, err := sched.Tick(ctx, week49)
	if err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if result.CycleKey != "2025-W49" {
		t.Errorf("Expected cycle 2025-W49, got %s", result.CycleKey)
	}
	if result.Applied != 1 || result.UpToDate != 0 {
		t.Errorf("Expected 1 applied, got applied=%d upToDate=%d", result.Applied, result.UpToDate)
	}
	if result.Created != routineTaskCount(t) {
		t.Errorf("Expected %d created, got %d", routineTaskCount(t), result.Created)
	}

	instances, err := store.ListByAnchorCycle(ctx, "rout-1", "2025-W49")
	if err != nil {
		t.Fatalf("ListByAnchorCycle failed: %v", err)
	}
	if len(instances) != routineTaskCount(t) {
		t.Fatalf("Expected %d instances, got %d", routineTaskCount(t), len(instances))
	}

	// Weekly tasks are due on the cycle's Sunday.
	wantDue := time.Date(2025, 12, 7, 0, 0, 0, 0, time.UTC)
	for _, inst := range instances {
		if inst.DueDate == nil || !inst.DueDate.Equal(wantDue) {
			t.Errorf("Instance %s due %v, want %v", inst.InstanceID, inst.DueDate, wantDue)
		}
	}
}

func TestTickIsIdempotentWithinCycle(t *testing.T) {
	sched, store, routines := newTestScheduler(t)
	ctx := context.Background()
	routines.Add(&registry.Routine{ID: "rout-1", UserID: "user-1", ArtistName: "Nova", TemplateID: "artist-weekly"})

	if _, err := sched.Tick(ctx, week49); err != nil {
		t.Fatalf("First tick failed: %v", err)
	}

	// Same week, later day.
	again, err := sched.Tick(ctx, week49.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("Second tick failed: %v", err)
	}
	if again.Applied != 0 || again.UpToDate != 1 || again.Created != 0 {
		t.Errorf("Expected no-op tick, got %+v", again)
	}

	instances, _ := store.ListByAnchor(ctx, "rout-1")
	if len(instances) != routineTaskCount(t) {
		t.Errorf("Expected %d instances after repeated ticks, got %d", routineTaskCount(t), len(instances))
	}
}

func TestTickRollsOverWithoutCarry(t *testing.T) {
	sched, store, routines := newTestScheduler(t)
	ctx := context.Background()
	routines.Add(&registry.Routine{ID: "rout-1", UserID: "user-1", ArtistName: "Nova", TemplateID: "artist-weekly"})

	if _, err := sched.Tick(ctx, week49); err != nil {
		t.Fatalf("Week 49 tick failed: %v", err)
	}

	// Leave one task unfinished, then cross the week boundary.
	week50 := week49.AddDate(0, 0, 7)
	result, err := sched.Tick(ctx, week50)
	if err != nil {
		t.Fatalf("Week 50 tick failed: %v", err)
	}
	if result.CycleKey != "2025-W50" || result.Applied != 1 {
		t.Errorf("Expected fresh week 50 batch, got %+v", result)
	}

	// The old batch stays in history under its own cycle key, pending
	// state untouched.
	old, _ := store.ListByAnchorCycle(ctx, "rout-1", "2025-W49")
	if len(old) != routineTaskCount(t) {
		t.Errorf("Expected week 49 history retained, got %d instances", len(old))
	}
	for _, inst := range old {
		if inst.Status != domain.StatusPending {
			t.Errorf("Week 49 instance %s changed to %s", inst.InstanceID, inst.Status)
		}
	}

	fresh, _ := store.ListByAnchorCycle(ctx, "rout-1", "2025-W50")
	if len(fresh) != routineTaskCount(t) {
		t.Errorf("Expected %d week 50 instances, got %d", routineTaskCount(t), len(fresh))
	}
}

func TestTickSkipsBrokenRoutines(t *testing.T) {
	sched, _, routines := newTestScheduler(t)
	ctx := context.Background()
	routines.Add(&registry.Routine{ID: "rout-1", UserID: "user-1", ArtistName: "Nova", TemplateID: "no-such-template"})
	routines.Add(&registry.Routine{ID: "rout-2", UserID: "user-1", ArtistName: "Vex", TemplateID: "single-8w"})
	routines.Add(&registry.Routine{ID: "rout-3", UserID: "user-1", ArtistName: "Ok", TemplateID: "artist-weekly"})

	// Unknown and non-recurring templates are skipped, not fatal.
	result, err := sched.Tick(ctx, week49)
	if err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if result.Applied != 1 {
		t.Errorf("Expected only the valid routine applied, got %d", result.Applied)
	}
}

func TestTickWithNoRoutines(t *testing.T) {
	sched, _, _ := newTestScheduler(t)

	result, err := sched.Tick(context.Background(), week49)
	if err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if result.Applied != 0 || result.UpToDate != 0 || result.Created != 0 {
		t.Errorf("Expected empty result, got %+v", result)
	}
}
