package engine

import (
	"context"
	"testing"
	"time"

	"github.com/Caspar241/releasehub/internal/catalog"
	"github.com/Caspar241/releasehub/internal/domain"
	"github.com/Caspar241/releasehub/internal/errors"
	"github.com/Caspar241/releasehub/internal/task"
)

func newTestEngine(t *testing.T) (*Engine, *task.MemoryStore, *task.Broker) {
	t.Helper()
	store := task.NewMemoryStore()
	broker := task.NewBroker()
	eng := New(catalog.NewBuiltinCatalog(), store, broker, nil)
	eng.SetClock(func() time.Time {
		return time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	})
	return eng, store, broker
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestApplyReleaseTemplate(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()

	result, err := eng.Apply(ctx, "single-8w", Anchor{ID: "rel-1", Date: datePtr(2025, 12, 1)}, "")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	tpl, _ := catalog.NewBuiltinCatalog().Template("single-8w")
	if len(result.Created) != tpl.TaskCount() {
		t.Errorf("Expected %d created instances, got %d", tpl.TaskCount(), len(result.Created))
	}
	if len(result.Skipped) != 0 {
		t.Errorf("Expected no skips on first apply, got %d", len(result.Skipped))
	}

	// The strategy kickoff task is offset -56 days from the release date:
	// 2025-12-01 minus 56 days is 2025-10-06.
	id := domain.NewInstanceID("single-8w", "p1-t1", "rel-1", "")
	inst, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	wantDue := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	if inst.DueDate == nil || !inst.DueDate.Equal(wantDue) {
		t.Errorf("Expected due date %v, got %v", wantDue, inst.DueDate)
	}
	if inst.Status != domain.StatusPending {
		t.Errorf("Expected pending, got %s", inst.Status)
	}
	if inst.Version != 0 {
		t.Errorf("Expected version 0, got %d", inst.Version)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()
	anchor := Anchor{ID: "rel-1", Date: datePtr(2025, 12, 1)}

	first, err := eng.Apply(ctx, "single-8w", anchor, "")
	if err != nil {
		t.Fatalf("First apply failed: %v", err)
	}

	second, err := eng.Apply(ctx, "single-8w", anchor, "")
	if err != nil {
		t.Fatalf("Second apply failed: %v", err)
	}
	if len(second.Created) != 0 {
		t.Errorf("Expected no new instances on re-apply, got %d", len(second.Created))
	}
	if len(second.Skipped) != len(first.Created) {
		t.Errorf("Expected %d skips, got %d", len(first.Created), len(second.Skipped))
	}
}

func TestApplyDistinctAnchorsAreIndependent(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	a, err := eng.Apply(ctx, "single-8w", Anchor{ID: "rel-1", Date: datePtr(2025, 12, 1)}, "")
	if err != nil {
		t.Fatalf("Apply rel-1 failed: %v", err)
	}
	b, err := eng.Apply(ctx, "single-8w", Anchor{ID: "rel-2", Date: datePtr(2025, 12, 1)}, "")
	if err != nil {
		t.Fatalf("Apply rel-2 failed: %v", err)
	}
	if len(b.Created) != len(a.Created) {
		t.Errorf("Second anchor created %d instances, want %d", len(b.Created), len(a.Created))
	}
}

func TestApplyUnknownTemplate(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	_, err := eng.Apply(context.Background(), "no-such-template", Anchor{ID: "rel-1", Date: datePtr(2025, 12, 1)}, "")
	if !errors.IsCode(err, errors.ErrCodeTemplateNotFound) {
		t.Errorf("Expected TEMPLATE-001, got %v", err)
	}
}

func TestApplyReleaseWithoutDate(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.Apply(ctx, "single-8w", Anchor{ID: "rel-1"}, "")
	if !errors.IsCode(err, errors.ErrCodeMissingAnchorDate) {
		t.Errorf("Expected ANCHOR-002, got %v", err)
	}

	// Rejection must leave no partial state.
	instances, err := store.ListByAnchor(ctx, "rel-1")
	if err != nil {
		t.Fatalf("ListByAnchor failed: %v", err)
	}
	if len(instances) != 0 {
		t.Errorf("Expected no instances after rejected apply, got %d", len(instances))
	}
}

func TestApplyArtistTemplateUsesCycleEnd(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()

	result, err := eng.Apply(ctx, "artist-weekly", Anchor{ID: "rout-1"}, "2025-W49")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(result.Created) == 0 {
		t.Fatal("Expected created instances")
	}

	// ISO week 2025-W49 runs Mon 2025-12-01 through Sun 2025-12-07.
	wantDue := time.Date(2025, 12, 7, 0, 0, 0, 0, time.UTC)
	for _, inst := range result.Created {
		if inst.DueDate == nil || !inst.DueDate.Equal(wantDue) {
			t.Errorf("Instance %s due %v, want %v", inst.InstanceID, inst.DueDate, wantDue)
		}
		if inst.CycleKey != "2025-W49" {
			t.Errorf("Instance %s cycle %s, want 2025-W49", inst.InstanceID, inst.CycleKey)
		}
	}

	// Applying a later cycle creates a fresh batch alongside the first.
	next, err := eng.Apply(ctx, "artist-weekly", Anchor{ID: "rout-1"}, "2025-W50")
	if err != nil {
		t.Fatalf("Apply next cycle failed: %v", err)
	}
	if len(next.Created) != len(result.Created) {
		t.Errorf("Next cycle created %d, want %d", len(next.Created), len(result.Created))
	}
	if len(next.Skipped) != 0 {
		t.Errorf("Next cycle skipped %d, want 0", len(next.Skipped))
	}

	all, err := store.ListByAnchor(ctx, "rout-1")
	if err != nil {
		t.Fatalf("ListByAnchor failed: %v", err)
	}
	if len(all) != 2*len(result.Created) {
		t.Errorf("Expected %d total instances, got %d", 2*len(result.Created), len(all))
	}
}

func TestApplyArtistTemplateRequiresCycleKey(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	_, err := eng.Apply(context.Background(), "artist-weekly", Anchor{ID: "rout-1"}, "")
	if !errors.IsCode(err, errors.ErrCodeTemplateInvalid) {
		t.Errorf("Expected TEMPLATE-002, got %v", err)
	}
}

func TestApplyEmitsInstancesCreated(t *testing.T) {
	eng, _, broker := newTestEngine(t)
	ctx := context.Background()

	var events []task.InstancesCreated
	broker.SubscribeInstancesCreated(func(_ context.Context, event task.InstancesCreated) {
		events = append(events, event)
	})

	if _, err := eng.Apply(ctx, "single-8w", Anchor{ID: "rel-1", Date: datePtr(2025, 12, 1)}, ""); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].TemplateID != "single-8w" || events[0].AnchorID != "rel-1" {
		t.Errorf("Unexpected event payload: %+v", events[0])
	}

	// A fully skipped re-apply publishes nothing.
	if _, err := eng.Apply(ctx, "single-8w", Anchor{ID: "rel-1", Date: datePtr(2025, 12, 1)}, ""); err != nil {
		t.Fatalf("Re-apply failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("Expected no event on all-skip apply, got %d", len(events))
	}
}
