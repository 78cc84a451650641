package task

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Caspar241/releasehub/internal/domain"
	"github.com/Caspar241/releasehub/internal/errors"
)

// MemoryStore implements in-memory instance storage.
//
// This is suitable for single-instance deployments, development, and
// tests. Production deployments use SQLiteStore.
type MemoryStore struct {
	mu        sync.RWMutex
	instances map[domain.InstanceID]*Instance
}

// NewMemoryStore creates a new in-memory instance store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		instances: make(map[domain.InstanceID]*Instance),
	}
}

// Create inserts a new instance
func (m *MemoryStore) Create(ctx context.Context, inst *Instance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.instances[inst.InstanceID]; exists {
		return errors.New(errors.ErrCodeInstanceExists, fmt.Sprintf("instance %s already exists", inst.InstanceID))
	}

	m.instances[inst.InstanceID] = inst.Clone()
	return nil
}

// Get retrieves an instance by ID
func (m *MemoryStore) Get(ctx context.Context, id domain.InstanceID) (*Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inst, ok := m.instances[id]
	if !ok {
		return nil, errors.NewInstanceNotFoundError(id.String())
	}
	return inst.Clone(), nil
}

// Update performs a compare-and-swap on the version counter
func (m *MemoryStore) Update(ctx context.Context, inst *Instance, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.instances[inst.InstanceID]
	if !ok {
		return errors.NewInstanceNotFoundError(inst.InstanceID.String())
	}

	if stored.Version != expectedVersion {
		return errors.NewConcurrentModificationError(inst.InstanceID.String(), expectedVersion, stored.Version)
	}

	updated := inst.Clone()
	updated.Version = expectedVersion + 1
	m.instances[inst.InstanceID] = updated
	return nil
}

// ListByAnchor returns all instances for an anchor ordered by due date
// then creation time
func (m *MemoryStore) ListByAnchor(ctx context.Context, anchorID string) ([]*Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Instance
	for _, inst := range m.instances {
		if inst.AnchorID == anchorID {
			out = append(out, inst.Clone())
		}
	}
	sortInstances(out)
	return out, nil
}

// ListByAnchorCycle returns the instances of one routine cycle
func (m *MemoryStore) ListByAnchorCycle(ctx context.Context, anchorID string, cycleKey domain.CycleKey) ([]*Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Instance
	for _, inst := range m.instances {
		if inst.AnchorID == anchorID && inst.CycleKey == cycleKey {
			out = append(out, inst.Clone())
		}
	}
	sortInstances(out)
	return out, nil
}

// ListExpiredSnoozes returns snoozed instances whose window has ended
func (m *MemoryStore) ListExpiredSnoozes(ctx context.Context, now time.Time) ([]*Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Instance
	for _, inst := range m.instances {
		if inst.SnoozeExpired(now) {
			out = append(out, inst.Clone())
		}
	}
	sortInstances(out)
	return out, nil
}

// ListDueBefore returns open instances due strictly before t
func (m *MemoryStore) ListDueBefore(ctx context.Context, t time.Time) ([]*Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Instance
	for _, inst := range m.instances {
		if inst.Status == domain.StatusCompleted || inst.Status == domain.StatusDismissed {
			continue
		}
		if inst.DueDate != nil && inst.DueDate.Before(t) {
			out = append(out, inst.Clone())
		}
	}
	sortInstances(out)
	return out, nil
}

// sortInstances orders by due date (nil last), then creation time, then
// ID for a stable order
func sortInstances(instances []*Instance) {
	sort.Slice(instances, func(i, j int) bool {
		a, b := instances[i], instances[j]
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
}

// Compile-time verification that MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
