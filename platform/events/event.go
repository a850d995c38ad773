// Package events carries quote and lead outcomes from the pipelines that
// produce them to the modules that react (notifications, audit mail).
package events

import (
	"context"
	"time"
)

// Event is a published outcome such as a resolved quote or a transferred
// lead.
type Event interface {
	// EventName is the routing key handlers subscribe to.
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent stamps an outcome with the time it happened. Concrete events
// embed it.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt returns the stamp set by NewBaseEvent.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps an event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler reacts to one outcome. Returned errors are logged by the bus and
// never reach the publisher.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc lets a plain function subscribe.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus routes outcomes by EventName. The quoting service publishes
// QuoteResolved and QuoteFailed, lead transfer publishes LeadTransferred.
type Bus interface {
	// Publish hands the event to each subscriber in the background.
	Publish(ctx context.Context, event Event)
	// PublishSync runs the subscribers inline and joins their errors.
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
