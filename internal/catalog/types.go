package catalog

import (
	"github.com/Caspar241/releasehub/internal/domain"
)

// Template is a reusable, date-relative release plan: ordered phases of
// tasks whose due dates are derived from an anchor date at application
// time. Templates are immutable; authoring happens in an external flow.
type Template struct {
	ID          string              `yaml:"id" json:"id"`
	Name        string              `yaml:"name" json:"name"`
	Type        domain.TemplateType `yaml:"type" json:"type"`
	Description string              `yaml:"description,omitempty" json:"description,omitempty"`

	// DurationWeeks is nil for recurring (artist) templates.
	DurationWeeks *int `yaml:"duration_weeks,omitempty" json:"duration_weeks,omitempty"`

	Phases []Phase `yaml:"phases" json:"phases"`
}

// Phase groups template tasks; Order is unique within a template and
// defines instantiation and display order.
type Phase struct {
	ID    string         `yaml:"id" json:"id"`
	Order int            `yaml:"order" json:"order"`
	Title string         `yaml:"title" json:"title"`
	Tasks []TemplateTask `yaml:"tasks" json:"tasks"`
}

// TemplateTask is one task definition inside a phase.
type TemplateTask struct {
	ID       string              `yaml:"id" json:"id"`
	Title    string              `yaml:"title" json:"title"`
	Category domain.TaskCategory `yaml:"category" json:"category"`

	// OffsetDays is the signed day offset from the anchor date. It is
	// required on release-type templates and must be nil on artist-type
	// templates (their due dates come from the routine cycle instead).
	OffsetDays *int `yaml:"offset_days,omitempty" json:"offset_days,omitempty"`
}

// TaskCount returns the total number of tasks across all phases
func (t *Template) TaskCount() int {
	count := 0
	for _, phase := range t.Phases {
		count += len(phase.Tasks)
	}
	return count
}

// Task looks up a template task by phase and task ID
func (t *Template) Task(phaseID, taskID string) (*TemplateTask, bool) {
	for i := range t.Phases {
		if t.Phases[i].ID != phaseID {
			continue
		}
		for j := range t.Phases[i].Tasks {
			if t.Phases[i].Tasks[j].ID == taskID {
				return &t.Phases[i].Tasks[j], true
			}
		}
	}
	return nil, false
}

// IsRecurring reports whether the template is applied in weekly cycles
// rather than against a dated release
func (t *Template) IsRecurring() bool {
	return t.Type == domain.TypeArtist
}
