package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Caspar241/releasehub/internal/errors"
)

// TemplateRepository defines the interface for loading template files.
// This interface enables dependency injection and makes testing easier.
type TemplateRepository interface {
	// Load reads a single Template from a file
	Load(path string) (*Template, error)

	// LoadDir reads every *.yaml template in a directory
	LoadDir(dir string) ([]*Template, error)
}

// FileTemplateRepository implements TemplateRepository for YAML files
type FileTemplateRepository struct{}

// NewFileTemplateRepository creates a new file-based template repository
func NewFileTemplateRepository() *FileTemplateRepository {
	return &FileTemplateRepository{}
}

// Load reads a Template from a YAML file and validates it
func (r *FileTemplateRepository) Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read template file %s", path), err)
	}

	var tpl Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "YAML", err)
	}

	if err := tpl.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTemplateInvalid, fmt.Sprintf("template file %s", path), err)
	}

	return &tpl, nil
}

// LoadDir reads every *.yaml and *.yml template in a directory.
// A missing directory yields an empty result, not an error.
func (r *FileTemplateRepository) LoadDir(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read template directory %s", dir), err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		tpl, err := r.Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}

	return templates, nil
}

// LoadCatalog builds a catalog from the built-in templates plus any
// templates found in dir (which may override builtins by ID).
func LoadCatalog(dir string) (*MemoryCatalog, error) {
	c := NewBuiltinCatalog()

	if dir == "" {
		return c, nil
	}

	repo := NewFileTemplateRepository()
	templates, err := repo.LoadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, tpl := range templates {
		if err := c.Register(tpl); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Compile-time verification that FileTemplateRepository implements TemplateRepository
var _ TemplateRepository = (*FileTemplateRepository)(nil)
