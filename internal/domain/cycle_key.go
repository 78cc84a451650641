package domain

import (
	"fmt"
	"regexp"
	"time"
)

// CycleKey identifies one batch of recurring routine instances. Successive
// weeks produce distinct keys, so each week gets a fresh, independent set
// of task instances and earlier batches stay in history untouched.
//
// The format is the ISO week identifier, e.g. "2025-W49".
type CycleKey string

var cycleKeyPattern = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// CycleKeyFor returns the cycle key of the ISO week containing t.
func CycleKeyFor(t time.Time) CycleKey {
	year, week := t.ISOWeek()
	return CycleKey(fmt.Sprintf("%04d-W%02d", year, week))
}

// ParseCycleKey validates and returns a CycleKey from its string form
func ParseCycleKey(value string) (CycleKey, error) {
	k := CycleKey(value)
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

// Validate checks if the cycle key is a well-formed ISO week identifier
func (k CycleKey) Validate() error {
	m := cycleKeyPattern.FindStringSubmatch(string(k))
	if m == nil {
		return fmt.Errorf("invalid cycle key %q: expected YYYY-Www", string(k))
	}
	var week int
	fmt.Sscanf(m[2], "%d", &week)
	if week < 1 || week > 53 {
		return fmt.Errorf("invalid cycle key %q: week must be 01..53", string(k))
	}
	return nil
}

// String returns the string representation
func (k CycleKey) String() string {
	return string(k)
}

// Start returns the Monday (00:00 UTC) opening the cycle's ISO week.
func (k CycleKey) Start() (time.Time, error) {
	m := cycleKeyPattern.FindStringSubmatch(string(k))
	if m == nil {
		return time.Time{}, fmt.Errorf("invalid cycle key %q", string(k))
	}

	var year, week int
	fmt.Sscanf(m[1], "%d", &year)
	fmt.Sscanf(m[2], "%d", &week)

	// January 4th is always in ISO week 1. Walk back to that week's
	// Monday, then advance whole weeks.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	monday := jan4.AddDate(0, 0, -(weekday - 1))
	return monday.AddDate(0, 0, (week-1)*7), nil
}

// End returns the Sunday (00:00 UTC) closing the cycle's ISO week.
// Artist routine tasks use this as their due date.
func (k CycleKey) End() (time.Time, error) {
	start, err := k.Start()
	if err != nil {
		return time.Time{}, err
	}
	return start.AddDate(0, 0, 6), nil
}
