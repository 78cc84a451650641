package domain

import "fmt"

// TemplateType distinguishes date-anchored release plans from
// recurring, anchor-less artist routines.
type TemplateType string

// Valid template types
const (
	// TypeRelease anchors tasks to a release date via day offsets.
	TypeRelease TemplateType = "release"
	// TypeArtist has no anchor date; instances are produced in weekly
	// cycles by the routine scheduler.
	TypeArtist TemplateType = "artist"
)

// NewTemplateType creates a new TemplateType value object with validation
func NewTemplateType(value string) (TemplateType, error) {
	t := TemplateType(value)
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

// Validate checks if the template type is valid
func (t TemplateType) Validate() error {
	switch t {
	case TypeRelease, TypeArtist:
		return nil
	default:
		return fmt.Errorf("invalid template type %q: must be release or artist", string(t))
	}
}

// String returns the string representation
func (t TemplateType) String() string {
	return string(t)
}

// RequiresAnchorDate reports whether templates of this type can only be
// applied against a dated anchor
func (t TemplateType) RequiresAnchorDate() bool {
	return t == TypeRelease
}
