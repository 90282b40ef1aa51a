// Package pubsub provides a generic publish/subscribe event system.
// The breathing core publishes session events through a broker; the TUI,
// the haptic sink, and the logger subscribe without coupling to the
// publisher.
package pubsub

import (
	"context"
	"time"
)

// EventType is the coarse classification attached to every published
// event. The payload carries its own, finer-grained type.
type EventType string

const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"
)

// Event is a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
