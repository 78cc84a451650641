package registry

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	releaseerrors "github.com/Caspar241/releasehub/internal/errors"
)

// File is the on-disk registry format used by single-user deployments
// and the CLI: one YAML file declaring the local user, their releases,
// and their routines. Multi-tenant deployments replace this with real
// identity and registry services behind the same interfaces.
type File struct {
	User     User           `yaml:"user"`
	Releases []*fileRelease `yaml:"releases"`
	Routines []*Routine     `yaml:"routines"`
}

// fileRelease mirrors Release with a date-only release_date field.
type fileRelease struct {
	ID          string `yaml:"id"`
	UserID      string `yaml:"user_id"`
	Title       string `yaml:"title"`
	ReleaseDate string `yaml:"release_date,omitempty"`
}

// Registries bundles the collaborators loaded from one registry file.
type Registries struct {
	Identity *StaticIdentity
	Releases *MemoryReleaseRegistry
	Routines *MemoryRoutineRegistry
}

// LoadFile reads a registry file and builds in-memory registries from
// it. A missing file yields empty registries with an anonymous user,
// not an error, so the CLI works before any setup.
func LoadFile(path string) (*Registries, error) {
	regs := &Registries{
		Identity: NewStaticIdentity(User{ID: "local", Plan: "free"}),
		Releases: NewMemoryReleaseRegistry(),
		Routines: NewMemoryRoutineRegistry(),
	}
	if path == "" {
		return regs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return regs, nil
		}
		return nil, releaseerrors.Wrap(releaseerrors.ErrCodeFileReadFailed, fmt.Sprintf("read registry file %s", path), err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, releaseerrors.NewFileUnmarshalError(path, "YAML", err)
	}

	if file.User.ID != "" {
		regs.Identity = NewStaticIdentity(file.User)
	}

	for _, fr := range file.Releases {
		release := &Release{
			ID:     fr.ID,
			UserID: fr.UserID,
			Title:  fr.Title,
		}
		if fr.UserID == "" {
			release.UserID = file.User.ID
		}
		if fr.ReleaseDate != "" {
			date, err := time.ParseInLocation("2006-01-02", fr.ReleaseDate, time.UTC)
			if err != nil {
				return nil, releaseerrors.Wrap(releaseerrors.ErrCodeFileUnmarshal,
					fmt.Sprintf("release %s has invalid release_date %q (want YYYY-MM-DD)", fr.ID, fr.ReleaseDate), err)
			}
			release.ReleaseDate = &date
		}
		regs.Releases.Add(release)
	}

	for _, routine := range file.Routines {
		if routine.UserID == "" {
			routine.UserID = file.User.ID
		}
		regs.Routines.Add(routine)
	}

	return regs, nil
}
