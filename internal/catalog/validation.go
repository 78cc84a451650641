package catalog

import (
	"fmt"
	"strings"

	"github.com/Caspar241/releasehub/internal/domain"
)

// Validate checks if the Template satisfies the catalog invariants:
// unique phase orders, unique (phase, task) pairs, and non-nil offsets
// on release-type templates.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("template ID cannot be empty")
	}

	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("template name cannot be empty")
	}

	if err := t.Type.Validate(); err != nil {
		return fmt.Errorf("invalid template type: %w", err)
	}

	if t.Type == domain.TypeRelease && t.DurationWeeks == nil {
		return fmt.Errorf("release template %s must define duration_weeks", t.ID)
	}
	if t.Type == domain.TypeArtist && t.DurationWeeks != nil {
		return fmt.Errorf("artist template %s must not define duration_weeks", t.ID)
	}

	if len(t.Phases) == 0 {
		return fmt.Errorf("template %s must have at least one phase", t.ID)
	}

	seenOrders := make(map[int]string, len(t.Phases))
	seenPhaseIDs := make(map[string]bool, len(t.Phases))
	// Task IDs feed the deterministic instance ID, so they must be unique
	// across the whole template, not just within a phase.
	seenTaskIDs := make(map[string]string)

	lastOrder := -1
	for i, phase := range t.Phases {
		if err := phase.validate(t, seenTaskIDs); err != nil {
			return fmt.Errorf("phase at index %d is invalid: %w", i, err)
		}

		if other, dup := seenOrders[phase.Order]; dup {
			return fmt.Errorf("phases %s and %s share order %d", other, phase.ID, phase.Order)
		}
		seenOrders[phase.Order] = phase.ID

		if seenPhaseIDs[phase.ID] {
			return fmt.Errorf("duplicate phase ID %s", phase.ID)
		}
		seenPhaseIDs[phase.ID] = true

		if phase.Order <= lastOrder {
			return fmt.Errorf("phase %s order %d is not monotonically increasing", phase.ID, phase.Order)
		}
		lastOrder = phase.Order
	}

	return nil
}

// validate checks a single phase and its tasks against the owning template
func (p *Phase) validate(owner *Template, seenTaskIDs map[string]string) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("phase ID cannot be empty")
	}

	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("phase %s title cannot be empty", p.ID)
	}

	if len(p.Tasks) == 0 {
		return fmt.Errorf("phase %s must have at least one task", p.ID)
	}

	for i, task := range p.Tasks {
		if strings.TrimSpace(task.ID) == "" {
			return fmt.Errorf("phase %s task at index %d has no ID", p.ID, i)
		}
		if other, dup := seenTaskIDs[task.ID]; dup {
			return fmt.Errorf("task ID %s appears in both phase %s and phase %s", task.ID, other, p.ID)
		}
		seenTaskIDs[task.ID] = p.ID

		if strings.TrimSpace(task.Title) == "" {
			return fmt.Errorf("task %s/%s title cannot be empty", p.ID, task.ID)
		}

		if err := task.Category.Validate(); err != nil {
			return fmt.Errorf("task %s/%s: %w", p.ID, task.ID, err)
		}

		// A nil offset is only permitted on artist templates; release
		// templates are rejected here rather than silently defaulted.
		if owner.Type == domain.TypeRelease && task.OffsetDays == nil {
			return fmt.Errorf("task %s/%s on release template %s has no offset_days", p.ID, task.ID, owner.ID)
		}
	}

	return nil
}
