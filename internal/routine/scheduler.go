// Package routine drives the weekly re-instantiation of artist
// templates. Each ISO week gets its own cycle key, so every tick
// produces a fresh, independent batch of instances; unfinished tasks
// from earlier weeks stay in history under their original cycle and are
// never carried forward or deleted.
package routine

import (
	"context"
	"time"

	"github.com/Caspar241/releasehub/internal/catalog"
	"github.com/Caspar241/releasehub/internal/domain"
	"github.com/Caspar241/releasehub/internal/engine"
	"github.com/Caspar241/releasehub/internal/errors"
	"github.com/Caspar241/releasehub/internal/log"
	"github.com/Caspar241/releasehub/internal/registry"
	"github.com/Caspar241/releasehub/internal/task"
)

// TickResult summarizes one scheduler pass.
type TickResult struct {
	CycleKey domain.CycleKey `json:"cycle_key"`

	// Applied counts routines that received a fresh batch this pass.
	Applied int `json:"applied"`

	// UpToDate counts routines whose current cycle already had instances.
	UpToDate int `json:"up_to_date"`

	// Created is the total number of instances created across routines.
	Created int `json:"created"`
}

// Scheduler instantiates artist templates for every registered routine
// once per ISO week.
type Scheduler struct {
	catalog  catalog.Catalog
	engine   *engine.Engine
	store    task.Store
	routines registry.RoutineRegistry
	logger   *log.Logger
}

// NewScheduler creates a routine scheduler.
func NewScheduler(cat catalog.Catalog, eng *engine.Engine, store task.Store, routines registry.RoutineRegistry, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Scheduler{
		catalog:  cat,
		engine:   eng,
		store:    store,
		routines: routines,
		logger:   logger,
	}
}

// Tick runs one scheduler pass for the ISO week containing now. Ticking
// the same cycle twice is a no-op: the existence check and the
// deterministic instance IDs both dedupe. A routine whose template has
// gone missing is logged and skipped rather than failing the pass.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (*TickResult, error) {
	cycleKey := domain.CycleKeyFor(now)
	result := &TickResult{CycleKey: cycleKey}

	routines, err := s.routines.Routines(ctx)
	if err != nil {
		return nil, err
	}

	for _, routine := range routines {
		tpl, err := s.catalog.Template(routine.TemplateID)
		if err != nil {
			s.logger.WithError(err).Warn("routine references unknown template",
				"routine_id", routine.ID,
				"template_id", routine.TemplateID,
			)
			continue
		}
		if !tpl.IsRecurring() {
			s.logger.Warn("routine references non-recurring template",
				"routine_id", routine.ID,
				"template_id", routine.TemplateID,
			)
			continue
		}

		existing, err := s.store.ListByAnchorCycle(ctx, routine.ID, cycleKey)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			result.UpToDate++
			continue
		}

		applied, err := s.engine.Apply(ctx, routine.TemplateID, engine.Anchor{ID: routine.ID}, cycleKey)
		if err != nil {
			// A racing tick can create the batch between our existence
			// check and the apply; the engine then reports skips only.
			if errors.IsCode(err, errors.ErrCodeInstanceExists) {
				result.UpToDate++
				continue
			}
			return nil, err
		}
		result.Applied++
		result.Created += len(applied.Created)
	}

	s.logger.InfoContext(ctx, "routine tick finished",
		"cycle_key", cycleKey.String(),
		"applied", result.Applied,
		"up_to_date", result.UpToDate,
		"created", result.Created,
	)
	return result, nil
}
