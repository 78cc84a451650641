package domain

import (
	"fmt"

	"github.com/zeebo/blake3"
)

// InstanceID identifies a task instance. It is a pure function of the
// template, template task, anchor, and (for recurring templates) cycle
// key, which makes template application idempotent: re-applying the same
// template against the same anchor derives the same IDs and creates no
// duplicates.
type InstanceID string

// NewInstanceID derives the deterministic instance ID for a template task
// applied against an anchor. cycleKey is empty for release anchors and
// the ISO-week key for recurring routine cycles.
func NewInstanceID(templateID, templateTaskID, anchorID string, cycleKey CycleKey) InstanceID {
	hasher := blake3.New()

	// The separator keeps (a|bc, d) and (a, bc|d) from colliding.
	fmt.Fprintf(hasher, "%s|%s|%s", templateID, templateTaskID, anchorID)
	if cycleKey != "" {
		fmt.Fprintf(hasher, "|%s", cycleKey)
	}

	return InstanceID(fmt.Sprintf("%x", hasher.Sum(nil)[:16]))
}

// String returns the string representation
func (id InstanceID) String() string {
	return string(id)
}

// Short returns an abbreviated form for display and logging
func (id InstanceID) Short() string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}
