package catalog

import (
	"sort"
	"sync"

	"github.com/Caspar241/releasehub/internal/domain"
	"github.com/Caspar241/releasehub/internal/errors"
)

// Catalog provides read access to the template definitions.
// Implementations must be safe for concurrent readers.
type Catalog interface {
	// Template resolves a template by ID.
	// Returns ErrCodeTemplateNotFound if no such template exists.
	Template(id string) (*Template, error)

	// List returns all templates sorted by ID.
	List() []*Template

	// ListByType returns all templates of the given type sorted by ID.
	ListByType(t domain.TemplateType) []*Template
}

// MemoryCatalog is an in-memory Catalog. The catalog is read-mostly:
// templates are registered once at startup and never mutated afterwards.
type MemoryCatalog struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewMemoryCatalog creates an empty in-memory catalog
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		templates: make(map[string]*Template),
	}
}

// NewBuiltinCatalog creates a catalog seeded with the built-in templates
func NewBuiltinCatalog() *MemoryCatalog {
	c := NewMemoryCatalog()
	for _, tpl := range BuiltinTemplates() {
		// Builtins are validated by their own tests; a registration
		// failure here would be a programming error.
		if err := c.Register(tpl); err != nil {
			panic(err)
		}
	}
	return c
}

// Register validates and adds a template to the catalog.
// Registering an ID twice replaces the earlier definition.
func (c *MemoryCatalog) Register(tpl *Template) error {
	if err := tpl.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeTemplateInvalid, "invalid template", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.templates[tpl.ID] = tpl
	return nil
}

// Template resolves a template by ID
func (c *MemoryCatalog) Template(id string) (*Template, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tpl, ok := c.templates[id]
	if !ok {
		return nil, errors.NewTemplateNotFoundError(id)
	}
	return tpl, nil
}

// List returns all templates sorted by ID
func (c *MemoryCatalog) List() []*Template {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Template, 0, len(c.templates))
	for _, tpl := range c.templates {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListByType returns all templates of the given type sorted by ID
func (c *MemoryCatalog) ListByType(t domain.TemplateType) []*Template {
	all := c.List()
	out := make([]*Template, 0, len(all))
	for _, tpl := range all {
		if tpl.Type == t {
			out = append(out, tpl)
		}
	}
	return out
}

// Compile-time verification that MemoryCatalog implements Catalog
var _ Catalog = (*MemoryCatalog)(nil)
