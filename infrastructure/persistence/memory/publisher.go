package memory

import (
	"context"
	"sync"

	"neurovault/domain/events"
)

// EventCollector is an EventPublisher that records published events
// in memory. Used in tests and local runs where no event bus exists.
type EventCollector struct {
	mu     sync.Mutex
	events []events.DomainEvent
}

// NewEventCollector creates an empty event collector
func NewEventCollector() *EventCollector {
	return &EventCollector{}
}

// Publish records a single event
func (c *EventCollector) Publish(ctx context.Context, event events.DomainEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

// PublishBatch records multiple events
func (c *EventCollector) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, batch...)
	return nil
}

// Events returns a snapshot of everything published so far
func (c *EventCollector) Events() []events.DomainEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.DomainEvent, len(c.events))
	copy(out, c.events)
	return out
}

// CountByType returns how many recorded events have the given type
func (c *EventCollector) CountByType(eventType string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, event := range c.events {
		if event.GetEventType() == eventType {
			count++
		}
	}
	return count
}

// Reset discards all recorded events
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}
