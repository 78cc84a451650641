package task

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Caspar241/releasehub/internal/domain"
)

// InstancesCreated is emitted once per successful template application
// that created at least one instance. Consumers include the grouping
// service's cache invalidation and notification fan-out.
type InstancesCreated struct {
	EventID    string          `json:"event_id"`
	TemplateID string          `json:"template_id"`
	AnchorID   string          `json:"anchor_id"`
	CycleKey   domain.CycleKey `json:"cycle_key,omitempty"`
	Instances  []*Instance     `json:"instances"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewInstancesCreated builds the event for a batch of created instances
func NewInstancesCreated(templateID, anchorID string, cycleKey domain.CycleKey, created []*Instance) InstancesCreated {
	return InstancesCreated{
		EventID:    uuid.NewString(),
		TemplateID: templateID,
		AnchorID:   anchorID,
		CycleKey:   cycleKey,
		Instances:  created,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers engine events to interested consumers
type Publisher interface {
	PublishInstancesCreated(ctx context.Context, event InstancesCreated)
}

// Broker is a synchronous in-process Publisher that fans events out to
// subscribed handlers. Handlers run on the publishing goroutine; they
// must be fast and must not block.
type Broker struct {
	mu       sync.RWMutex
	handlers []func(context.Context, InstancesCreated)
}

// NewBroker creates an empty event broker
func NewBroker() *Broker {
	return &Broker{}
}

// SubscribeInstancesCreated registers a handler for creation events
func (b *Broker) SubscribeInstancesCreated(handler func(context.Context, InstancesCreated)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// PublishInstancesCreated delivers the event to all subscribers
func (b *Broker) PublishInstancesCreated(ctx context.Context, event InstancesCreated) {
	b.mu.RLock()
	handlers := make([]func(context.Context, InstancesCreated), len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}
}

// Compile-time verification that Broker implements Publisher
var _ Publisher = (*Broker)(nil)
