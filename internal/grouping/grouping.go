// Package grouping is the read side of the task engine: it partitions
// instances by anchor, orders them into due-date buckets, and computes
// progress counters. It performs no writes; everything is recomputed
// from current instance state on each read so counters can never drift.
package grouping

import (
	"sort"
	"time"

	"github.com/Caspar241/releasehub/internal/domain"
	"github.com/Caspar241/releasehub/internal/task"
)

// Bucket is the coarse urgency band a task sorts into.
type Bucket string

const (
	// BucketToday holds overdue and due-today tasks.
	BucketToday Bucket = "today"
	// BucketThisWeek holds tasks due within the next 7 days.
	BucketThisWeek Bucket = "this_week"
	// BucketLater holds everything else, undated tasks included.
	BucketLater Bucket = "later"
)

// Progress counts completion over all non-dismissed instances of a group.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// TaskGroup is the derived, unpersisted view of one anchor's tasks.
// For routines it covers the latest cycle only; earlier cycles stay in
// history but leave the current view.
type TaskGroup struct {
	AnchorID    string           `json:"anchor_id"`
	AnchorLabel string           `json:"anchor_label"`
	AnchorType  AnchorType       `json:"anchor_type"`
	CycleKey    domain.CycleKey  `json:"cycle_key,omitempty"`
	Tasks       []*task.Instance `json:"tasks"`
	Progress    Progress         `json:"progress"`
}

// AnchorType distinguishes release groups from routine groups.
type AnchorType string

const (
	AnchorRelease AnchorType = "release"
	AnchorRoutine AnchorType = "routine"
)

// BucketFor returns the urgency band of an instance at time now.
func BucketFor(inst *task.Instance, now time.Time) Bucket {
	if inst.DueDate == nil {
		return BucketLater
	}
	due := inst.DueDate.Truncate(24 * time.Hour)
	today := now.UTC().Truncate(24 * time.Hour)
	if !due.After(today) {
		return BucketToday
	}
	if !due.After(today.AddDate(0, 0, 7)) {
		return BucketThisWeek
	}
	return BucketLater
}

func bucketRank(b Bucket) int {
	switch b {
	case BucketToday:
		return 0
	case BucketThisWeek:
		return 1
	default:
		return 2
	}
}

// project builds a group from raw instances. Dismissed instances leave
// the view but completed ones stay; expired snoozes surface as pending
// without waiting for the persistence sweep.
func project(anchorID, label string, anchorType AnchorType, cycleKey domain.CycleKey, instances []*task.Instance, now time.Time) *TaskGroup {
	group := &TaskGroup{
		AnchorID:    anchorID,
		AnchorLabel: label,
		AnchorType:  anchorType,
		CycleKey:    cycleKey,
	}

	for _, inst := range instances {
		if inst.Status == domain.StatusDismissed {
			continue
		}
		view := inst.Clone()
		if view.SnoozeExpired(now) {
			view.Status = domain.StatusPending
			view.SnoozedUntil = nil
		}
		group.Tasks = append(group.Tasks, view)
		group.Progress.Total++
		if view.Status == domain.StatusCompleted {
			group.Progress.Completed++
		}
	}

	sort.SliceStable(group.Tasks, func(i, j int) bool {
		a, b := group.Tasks[i], group.Tasks[j]
		ra, rb := bucketRank(BucketFor(a, now)), bucketRank(BucketFor(b, now))
		if ra != rb {
			return ra < rb
		}
		switch {
		case a.DueDate == nil && b.DueDate != nil:
			return false
		case a.DueDate != nil && b.DueDate == nil:
			return true
		case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.InstanceID < b.InstanceID
	})

	return group
}

// latestCycle returns the lexicographically greatest cycle key present.
// Cycle keys are zero-padded ISO week identifiers, so string order is
// chronological order.
func latestCycle(instances []*task.Instance) domain.CycleKey {
	var latest domain.CycleKey
	for _, inst := range instances {
		if inst.CycleKey > latest {
			latest = inst.CycleKey
		}
	}
	return latest
}
