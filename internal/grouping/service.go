package grouping

import (
	"context"
	"sort"
	"time"

	"github.com/Caspar241/releasehub/internal/errors"
	"github.com/Caspar241/releasehub/internal/registry"
	"github.com/Caspar241/releasehub/internal/task"
)

// Service resolves anchors through the registries and projects their
// task instances into groups.
type Service struct {
	store    task.Store
	releases registry.ReleaseRegistry
	routines registry.RoutineRegistry
	now      func() time.Time
}

// NewService creates a grouping service.
func NewService(store task.Store, releases registry.ReleaseRegistry, routines registry.RoutineRegistry) *Service {
	return &Service{
		store:    store,
		releases: releases,
		routines: routines,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// ListGroups returns one group per anchor the user owns that has at
// least one non-dismissed instance, releases first, sorted by label.
func (s *Service) ListGroups(ctx context.Context, userID string) ([]*TaskGroup, error) {
	now := s.now().UTC()
	var groups []*TaskGroup

	releases, err := s.releases.ReleasesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, release := range releases {
		group, err := s.releaseGroup(ctx, release, now)
		if err != nil {
			return nil, err
		}
		if group != nil {
			groups = append(groups, group)
		}
	}

	routines, err := s.routines.RoutinesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, routine := range routines {
		group, err := s.routineGroup(ctx, routine, now)
		if err != nil {
			return nil, err
		}
		if group != nil {
			groups = append(groups, group)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].AnchorType != groups[j].AnchorType {
			return groups[i].AnchorType == AnchorRelease
		}
		if groups[i].AnchorLabel != groups[j].AnchorLabel {
			return groups[i].AnchorLabel < groups[j].AnchorLabel
		}
		return groups[i].AnchorID < groups[j].AnchorID
	})
	return groups, nil
}

// Group returns the group of a single anchor. The anchor may be a
// release or a routine; for routines the current (latest) cycle is
// projected.
func (s *Service) Group(ctx context.Context, anchorID string) (*TaskGroup, error) {
	now := s.now().UTC()

	release, err := s.releases.Release(ctx, anchorID)
	if err == nil {
		group, err := s.releaseGroup(ctx, release, now)
		if err != nil {
			return nil, err
		}
		if group == nil {
			group = project(release.ID, release.Title, AnchorRelease, "", nil, now)
		}
		return group, nil
	}
	if !errors.IsCode(err, errors.ErrCodeAnchorNotFound) {
		return nil, err
	}

	routine, err := s.routines.Routine(ctx, anchorID)
	if err != nil {
		return nil, err
	}
	group, err := s.routineGroup(ctx, routine, now)
	if err != nil {
		return nil, err
	}
	if group == nil {
		group = project(routine.ID, routine.ArtistName, AnchorRoutine, "", nil, now)
	}
	return group, nil
}

func (s *Service) releaseGroup(ctx context.Context, release *registry.Release, now time.Time) (*TaskGroup, error) {
	instances, err := s.store.ListByAnchor(ctx, release.ID)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, nil
	}
	return project(release.ID, release.Title, AnchorRelease, "", instances, now), nil
}

func (s *Service) routineGroup(ctx context.Context, routine *registry.Routine, now time.Time) (*TaskGroup, error) {
	all, err := s.store.ListByAnchor(ctx, routine.ID)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}

	cycle := latestCycle(all)
	var current []*task.Instance
	if cycle == "" {
		current = all
	} else {
		for _, inst := range all {
			if inst.CycleKey == cycle {
				current = append(current, inst)
			}
		}
	}
	return project(routine.ID, routine.ArtistName, AnchorRoutine, cycle, current, now), nil
}
