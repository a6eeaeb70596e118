// Package queue provides the in-memory event queue pumped by the run loop.
package queue

import (
	"fmt"
	"sync"

	"github.com/bft-labs/eventd/internal/domain"
	"github.com/bft-labs/eventd/internal/ports"
)

// Memory is an unbounded FIFO event queue with per-type handler dispatch.
// Post is safe from any goroutine; GetEvent, DispatchEvent and
// ReleasePayload are called by the single run loop goroutine.
type Memory struct {
	mu     sync.Mutex
	cond   *sync.Cond
	events []domain.Event
	closed bool

	handlersMu sync.RWMutex
	handlers   map[domain.EventType][]ports.Handler
	catchAll   []ports.Handler

	logger ports.Logger
}

// NewMemory creates an empty queue.
func NewMemory(logger ports.Logger) *Memory {
	q := &Memory{
		handlers: make(map[domain.EventType][]ports.Handler),
		logger:   logger,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Post appends an event without blocking.
func (q *Memory) Post(e domain.Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return domain.ErrQueueClosed
	}
	q.events = append(q.events, e)
	q.cond.Signal()
	return nil
}

// GetEvent blocks until an event is available.
// Events posted before Close are still delivered; after that it returns
// domain.ErrQueueClosed.
func (q *Memory) GetEvent() (domain.Event, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.events) == 0 {
		if q.closed {
			return domain.Event{}, domain.ErrQueueClosed
		}
		q.cond.Wait()
	}

	e := q.events[0]
	q.events[0] = domain.Event{}
	q.events = q.events[1:]
	return e, nil
}

// Len returns the number of pending events.
func (q *Memory) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Subscribe registers a handler for one event type.
func (q *Memory) Subscribe(t domain.EventType, h ports.Handler) {
	q.handlersMu.Lock()
	defer q.handlersMu.Unlock()
	q.handlers[t] = append(q.handlers[t], h)
}

// SubscribeAll registers a handler called for every dispatched event,
// after the type-specific handlers.
func (q *Memory) SubscribeAll(h ports.Handler) {
	q.handlersMu.Lock()
	defer q.handlersMu.Unlock()
	q.catchAll = append(q.catchAll, h)
}

// DispatchEvent calls the handlers registered for the event's type in
// registration order, then the catch-all handlers. A panicking handler is
// logged and does not stop the remaining handlers.
func (q *Memory) DispatchEvent(e domain.Event) {
	q.handlersMu.RLock()
	typed := append([]ports.Handler(nil), q.handlers[e.Type]...)
	all := append([]ports.Handler(nil), q.catchAll...)
	q.handlersMu.RUnlock()

	if len(typed) == 0 && len(all) == 0 {
		q.logger.Debug("no handler for event", ports.Stringer("type", e.Type))
		return
	}
	for _, h := range typed {
		q.call(h, e)
	}
	for _, h := range all {
		q.call(h, e)
	}
}

func (q *Memory) call(h ports.Handler, e domain.Event) {
	defer func() {
		if p := recover(); p != nil {
			q.logger.Error("event handler panic",
				ports.Stringer("type", e.Type),
				ports.Err(fmt.Errorf("%v", p)),
			)
		}
	}()
	h(e)
}

// ReleasePayload frees the event's payload resources.
func (q *Memory) ReleasePayload(e domain.Event) {
	if err := domain.ReleasePayload(e); err != nil {
		q.logger.Warn("payload release failed",
			ports.Stringer("type", e.Type),
			ports.Err(err),
		)
	}
}

// Close stops accepting events and wakes blocked readers. Idempotent.
func (q *Memory) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
	return nil
}

// Ensure Memory implements ports.EventQueue.
var _ ports.EventQueue = (*Memory)(nil)
