// Package registry defines the external collaborators the task engine
// depends on: identity/entitlement, the release registry, and the artist
// routine registry. The engine consumes these as interfaces only; plan
// limits, billing, and release management live elsewhere. In-memory
// implementations are provided for development and tests.
package registry

import (
	"context"
	"time"
)

// User is the authenticated caller as reported by the identity service.
// Plan entitlement is enforced by the identity collaborator, not here.
type User struct {
	ID   string `json:"id"`
	Plan string `json:"plan"`
}

// Identity resolves the current user for a request
type Identity interface {
	CurrentUser(ctx context.Context) (*User, error)
}

// Release is a dated release as known to the release registry.
// ReleaseDate is nil while the release is still unscheduled.
type Release struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
}

// ReleaseRegistry supplies anchors for release-type templates
type ReleaseRegistry interface {
	// Release resolves a release by ID.
	// Returns ErrCodeAnchorNotFound if no such release exists.
	Release(ctx context.Context, id string) (*Release, error)

	// ReleasesForUser returns all releases owned by a user.
	ReleasesForUser(ctx context.Context, userID string) ([]*Release, error)
}

// Routine is a recurring artist routine: an anchor-less subscription to
// an artist-type template, re-instantiated every ISO week.
type Routine struct {
	ID         string `json:"id" yaml:"id"`
	UserID     string `json:"user_id" yaml:"user_id"`
	ArtistName string `json:"artist_name" yaml:"artist_name"`
	TemplateID string `json:"template_id" yaml:"template_id"`
}

// RoutineRegistry supplies anchors for artist-type templates
type RoutineRegistry interface {
	// Routine resolves a routine by ID.
	// Returns ErrCodeAnchorNotFound if no such routine exists.
	Routine(ctx context.Context, id string) (*Routine, error)

	// RoutinesForUser returns all routines owned by a user.
	RoutinesForUser(ctx context.Context, userID string) ([]*Routine, error)

	// Routines returns every registered routine, for the scheduler tick.
	Routines(ctx context.Context) ([]*Routine, error)
}
