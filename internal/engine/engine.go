// Package engine turns templates into task instances. Application is
// idempotent: instance IDs are derived deterministically from the
// template, task, and anchor, so re-applying a template skips the
// instances that already exist instead of duplicating them.
package engine

import (
	"context"
	"time"

	"github.com/Caspar241/releasehub/internal/catalog"
	"github.com/Caspar241/releasehub/internal/domain"
	"github.com/Caspar241/releasehub/internal/errors"
	"github.com/Caspar241/releasehub/internal/log"
	"github.com/Caspar241/releasehub/internal/task"
)

// Anchor is the target a template is applied against: a release (with a
// date) or an artist routine (no date, scoped by cycle instead).
type Anchor struct {
	ID   string
	Date *time.Time
}

// Result reports what one application did. Created and Skipped partition
// the template's tasks: skipped instances already existed from an
// earlier application of the same template to the same anchor.
type Result struct {
	TemplateID string              `json:"template_id"`
	AnchorID   string              `json:"anchor_id"`
	CycleKey   domain.CycleKey     `json:"cycle_key,omitempty"`
	Created    []*task.Instance    `json:"created"`
	Skipped    []domain.InstanceID `json:"skipped"`
}

// Engine applies templates against anchors.
type Engine struct {
	catalog   catalog.Catalog
	store     task.Store
	publisher task.Publisher
	logger    *log.Logger
	now       func() time.Time
}

// New creates an instantiation engine. The publisher may be nil if no
// consumer cares about creation events.
func New(cat catalog.Catalog, store task.Store, publisher task.Publisher, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Engine{
		catalog:   cat,
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Apply instantiates templateID against the anchor. For recurring
// (artist) templates cycleKey scopes the batch to one ISO week and due
// dates fall on the cycle's Sunday; for release templates cycleKey must
// be empty and due dates are anchor date plus each task's signed offset.
//
// All validation happens before the first write, so a rejected
// application leaves no partial state behind.
func (e *Engine) Apply(ctx context.Context, templateID string, anchor Anchor, cycleKey domain.CycleKey) (*Result, error) {
	tpl, err := e.catalog.Template(templateID)
	if err != nil {
		return nil, err
	}

	var cycleDue time.Time
	if tpl.IsRecurring() {
		if err := cycleKey.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeTemplateInvalid, "recurring template needs a cycle key", err)
		}
		cycleDue, err = cycleKey.End()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeTemplateInvalid, "recurring template needs a cycle key", err)
		}
	} else {
		cycleKey = ""
		if anchor.Date == nil {
			return nil, errors.NewMissingAnchorDateError(templateID, anchor.ID)
		}
		// Offsets are checked up front so a bad template definition
		// cannot create half a plan.
		for _, phase := range tpl.Phases {
			for _, tt := range phase.Tasks {
				if tt.OffsetDays == nil {
					return nil, errors.NewInvalidOffsetError(templateID, tt.ID)
				}
			}
		}
	}

	now := e.now().UTC()
	result := &Result{
		TemplateID: templateID,
		AnchorID:   anchor.ID,
		CycleKey:   cycleKey,
	}

	for _, phase := range tpl.Phases {
		for _, tt := range phase.Tasks {
			inst := e.buildInstance(tpl, &tt, anchor, cycleKey, cycleDue, now)

			if err := e.store.Create(ctx, inst); err != nil {
				if errors.IsCode(err, errors.ErrCodeInstanceExists) {
					result.Skipped = append(result.Skipped, inst.InstanceID)
					continue
				}
				return nil, err
			}
			result.Created = append(result.Created, inst)
		}
	}

	e.logger.InfoContext(ctx, "template applied",
		"template_id", templateID,
		"anchor_id", anchor.ID,
		"cycle_key", cycleKey.String(),
		"created", len(result.Created),
		"skipped", len(result.Skipped),
	)

	if e.publisher != nil && len(result.Created) > 0 {
		e.publisher.PublishInstancesCreated(ctx, task.NewInstancesCreated(templateID, anchor.ID, cycleKey, result.Created))
	}

	return result, nil
}

func (e *Engine) buildInstance(tpl *catalog.Template, tt *catalog.TemplateTask, anchor Anchor, cycleKey domain.CycleKey, cycleDue time.Time, now time.Time) *task.Instance {
	inst := &task.Instance{
		InstanceID:     domain.NewInstanceID(tpl.ID, tt.ID, anchor.ID, cycleKey),
		TemplateID:     tpl.ID,
		TemplateTaskID: tt.ID,
		AnchorID:       anchor.ID,
		CycleKey:       cycleKey,
		Title:          tt.Title,
		Category:       tt.Category,
		Status:         domain.StatusPending,
		CreatedAt:      now,
		Version:        0,
	}

	if tpl.IsRecurring() {
		due := cycleDue
		inst.DueDate = &due
	} else {
		// Calendar-day arithmetic: month and DST boundaries follow the
		// civil calendar, not fixed 24h spans.
		due := anchor.Date.UTC().Truncate(24 * time.Hour).AddDate(0, 0, *tt.OffsetDays)
		inst.DueDate = &due
	}

	return inst
}
