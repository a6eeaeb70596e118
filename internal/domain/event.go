package domain

import "io"

// EventType identifies the kind of an Event.
type EventType int

// Reserved and built-in event types. Applications allocate their own types
// starting at TypeUser.
const (
	TypeUnknown EventType = iota
	TypeQuit
	TypeSystem
	TypeTimer
	TypeConfigChanged
	TypeStatusRequest

	TypeUser EventType = 1000
)

// String returns a human-readable representation of the event type.
func (t EventType) String() string {
	switch t {
	case TypeUnknown:
		return "unknown"
	case TypeQuit:
		return "quit"
	case TypeSystem:
		return "system"
	case TypeTimer:
		return "timer"
	case TypeConfigChanged:
		return "config_changed"
	case TypeStatusRequest:
		return "status_request"
	default:
		if t >= TypeUser {
			return "user"
		}
		return "unknown"
	}
}

// Event is a typed message pumped by the run loop.
// The run loop owns an event for exactly one dispatch cycle and releases
// its payload before retrieving the next one.
type Event struct {
	// Type selects the handlers the event is dispatched to
	Type EventType

	// Payload is optional event data
	Payload any

	// Target optionally names the handler owner the event is addressed to
	Target string
}

// NewEvent creates an event of the given type carrying payload.
func NewEvent(t EventType, payload any) Event {
	return Event{Type: t, Payload: payload}
}

// QuitEvent returns the reserved event whose retrieval ends the run loop.
func QuitEvent() Event {
	return Event{Type: TypeQuit}
}

// IsQuit returns true if the event is the reserved quit event.
func (e Event) IsQuit() bool {
	return e.Type == TypeQuit
}

// Releaser is implemented by payloads that hold resources.
type Releaser interface {
	Release()
}

// ReleasePayload frees the payload's resources, if it has any.
// Payloads implementing Releaser or io.Closer are released once; other
// payloads are left to the garbage collector.
func ReleasePayload(e Event) error {
	switch p := e.Payload.(type) {
	case Releaser:
		p.Release()
	case io.Closer:
		return p.Close()
	}
	return nil
}
