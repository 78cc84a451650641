package health

import (
	"context"
	"time"

	"github.com/Caspar241/releasehub/internal/catalog"
	"github.com/Caspar241/releasehub/internal/task"
)

// Pinger is implemented by stores with a native connectivity check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreChecker verifies the task instance store is reachable.
type StoreChecker struct {
	store task.Store
}

// NewStoreChecker creates a task store health checker.
func NewStoreChecker(store task.Store) *StoreChecker {
	return &StoreChecker{store: store}
}

// Name returns the unique name of this check.
func (c *StoreChecker) Name() string {
	return "task-store"
}

// Check pings the store if it supports pinging, otherwise issues a
// cheap read so a wedged store still fails the probe.
func (c *StoreChecker) Check(ctx context.Context) *Result {
	var err error
	if pinger, ok := c.store.(Pinger); ok {
		err = pinger.Ping(ctx)
	} else {
		_, err = c.store.ListDueBefore(ctx, time.Unix(0, 0).UTC())
	}

	if err != nil {
		return Unhealthy("task store unreachable").WithDetail("error", err.Error())
	}
	return Healthy("task store reachable")
}

// CatalogChecker verifies the template catalog has templates loaded.
// An empty catalog is degraded, not unhealthy: reads still work, but
// nothing can be applied.
type CatalogChecker struct {
	catalog catalog.Catalog
}

// NewCatalogChecker creates a template catalog health checker.
func NewCatalogChecker(cat catalog.Catalog) *CatalogChecker {
	return &CatalogChecker{catalog: cat}
}

// Name returns the unique name of this check.
func (c *CatalogChecker) Name() string {
	return "template-catalog"
}

// Check reports the number of loaded templates.
func (c *CatalogChecker) Check(_ context.Context) *Result {
	templates := c.catalog.List()
	if len(templates) == 0 {
		return Degraded("template catalog is empty")
	}
	return Healthy("template catalog loaded").WithDetail("templates", len(templates))
}
