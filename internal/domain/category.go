package domain

import "fmt"

// TaskCategory classifies what kind of work a task represents.
// This is a closed value object; presentation concerns (icons, colors)
// are looked up outside the domain.
type TaskCategory string

// Valid task categories
const (
	CategoryStrategy     TaskCategory = "strategy"
	CategoryAudio        TaskCategory = "audio"
	CategoryVisuals      TaskCategory = "visuals"
	CategoryDistribution TaskCategory = "distribution"
	CategoryMarketing    TaskCategory = "marketing"
	CategoryContent      TaskCategory = "content"
	CategoryAdmin        TaskCategory = "admin"
	CategoryAnalytics    TaskCategory = "analytics"
	CategoryBranding     TaskCategory = "branding"
	CategoryNetworking   TaskCategory = "networking"
	CategoryOther        TaskCategory = "other"
)

// allCategories lists every valid category in display order
var allCategories = []TaskCategory{
	CategoryStrategy,
	CategoryAudio,
	CategoryVisuals,
	CategoryDistribution,
	CategoryMarketing,
	CategoryContent,
	CategoryAdmin,
	CategoryAnalytics,
	CategoryBranding,
	CategoryNetworking,
	CategoryOther,
}

// NewTaskCategory creates a new TaskCategory value object with validation
func NewTaskCategory(value string) (TaskCategory, error) {
	c := TaskCategory(value)
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

// Validate checks if the category is valid
func (c TaskCategory) Validate() error {
	for _, valid := range allCategories {
		if c == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid task category %q", string(c))
}

// String returns the string representation
func (c TaskCategory) String() string {
	return string(c)
}

// AllCategories returns every valid category in display order
func AllCategories() []TaskCategory {
	out := make([]TaskCategory, len(allCategories))
	copy(out, allCategories)
	return out
}
