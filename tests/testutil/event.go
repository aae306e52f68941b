// Package testutil holds repository mocks and event fakes shared by the
// application and handler tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TestEvent is a bare domain event for subscribers that should ignore it
type TestEvent struct {
	shared.BaseDomainEvent
}

// NewTestEvent creates an event of eventType for tenantID
func NewTestEvent(eventType string, tenantID uuid.UUID) *TestEvent {
	return &TestEvent{BaseDomainEvent: shared.BaseDomainEvent{
		ID:            uuid.New(),
		Type:          eventType,
		TenantIDValue: tenantID,
		Timestamp:     time.Now(),
		AggID:         uuid.New(),
		AggType:       "Test",
	}}
}

// RecordingPublisher is a shared.EventPublisher that keeps what it is given
type RecordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

// NewRecordingPublisher creates an empty RecordingPublisher
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

// Publish records the events
func (p *RecordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

// Events returns the published events in order
func (p *RecordingPublisher) Events() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.DomainEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Types returns the published event types in order
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}
