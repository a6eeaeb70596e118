package ports

import "github.com/bft-labs/eventd/internal/domain"

// Handler receives dispatched events.
type Handler func(domain.Event)

// EventPoster accepts events for later retrieval by the run loop.
// Safe for concurrent use.
type EventPoster interface {
	// Post appends an event to the queue without blocking.
	// Returns domain.ErrQueueClosed once the queue has been closed.
	Post(e domain.Event) error
}

// EventQueue is the event source pumped by the run loop.
// Handler registration and dispatch semantics belong to the implementation.
type EventQueue interface {
	EventPoster

	// GetEvent blocks until an event is available and returns it.
	// Returns domain.ErrQueueClosed when the queue is closed and drained.
	GetEvent() (domain.Event, error)

	// DispatchEvent synchronously delivers the event to registered handlers.
	DispatchEvent(e domain.Event)

	// ReleasePayload frees the resources held by the event's payload.
	ReleasePayload(e domain.Event)

	// Subscribe registers a handler for one event type.
	Subscribe(t domain.EventType, h Handler)

	// Close stops accepting events and wakes blocked readers.
	Close() error
}
