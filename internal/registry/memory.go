package registry

import (
	"context"
	"sync"

	releaseerrors "github.com/Caspar241/releasehub/internal/errors"
)

// StaticIdentity always reports the same user. Useful for single-user
// deployments and tests.
type StaticIdentity struct {
	user User
}

// NewStaticIdentity creates an identity that resolves to the given user.
func NewStaticIdentity(user User) *StaticIdentity {
	return &StaticIdentity{user: user}
}

// CurrentUser returns the configured user.
func (s *StaticIdentity) CurrentUser(_ context.Context) (*User, error) {
	u := s.user
	return &u, nil
}

// MemoryReleaseRegistry is an in-memory ReleaseRegistry.
type MemoryReleaseRegistry struct {
	mu       sync.RWMutex
	releases map[string]*Release
}

// NewMemoryReleaseRegistry creates an empty in-memory release registry.
func NewMemoryReleaseRegistry() *MemoryReleaseRegistry {
	return &MemoryReleaseRegistry{
		releases: make(map[string]*Release),
	}
}

// Add registers a release, replacing any existing entry with the same ID.
func (r *MemoryReleaseRegistry) Add(release *Release) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *release
	r.releases[release.ID] = &clone
}

// Release resolves a release by ID.
func (r *MemoryReleaseRegistry) Release(_ context.Context, id string) (*Release, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	release, ok := r.releases[id]
	if !ok {
		return nil, releaseerrors.NewAnchorNotFoundError(id)
	}

	clone := *release
	return &clone, nil
}

// ReleasesForUser returns all releases owned by a user.
func (r *MemoryReleaseRegistry) ReleasesForUser(_ context.Context, userID string) ([]*Release, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Release
	for _, release := range r.releases {
		if release.UserID == userID {
			clone := *release
			result = append(result, &clone)
		}
	}
	return result, nil
}

// MemoryRoutineRegistry is an in-memory RoutineRegistry.
type MemoryRoutineRegistry struct {
	mu       sync.RWMutex
	routines map[string]*Routine
}

// NewMemoryRoutineRegistry creates an empty in-memory routine registry.
func NewMemoryRoutineRegistry() *MemoryRoutineRegistry {
	return &MemoryRoutineRegistry{
		routines: make(map[string]*Routine),
	}
}

// Add registers a routine, replacing any existing entry with the same ID.
func (r *MemoryRoutineRegistry) Add(routine *Routine) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *routine
	r.routines[routine.ID] = &clone
}

// Routine resolves a routine by ID.
func (r *MemoryRoutineRegistry) Routine(_ context.Context, id string) (*Routine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routine, ok := r.routines[id]
	if !ok {
		return nil, releaseerrors.NewAnchorNotFoundError(id)
	}

	clone := *routine
	return &clone, nil
}

// RoutinesForUser returns all routines owned by a user.
func (r *MemoryRoutineRegistry) RoutinesForUser(_ context.Context, userID string) ([]*Routine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Routine
	for _, routine := range r.routines {
		if routine.UserID == userID {
			clone := *routine
			result = append(result, &clone)
		}
	}
	return result, nil
}

// Routines returns every registered routine.
func (r *MemoryRoutineRegistry) Routines(_ context.Context) ([]*Routine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Routine, 0, len(r.routines))
	for _, routine := range r.routines {
		clone := *routine
		result = append(result, &clone)
	}
	return result, nil
}
