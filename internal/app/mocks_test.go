package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bft-labs/eventd/internal/domain"
	"github.com/bft-labs/eventd/internal/ports"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

// mockEmitter tracks state change events for testing.
type mockEmitter struct {
	mu     sync.Mutex
	events []stateChangeEvent
}

type stateChangeEvent struct {
	previous State
	current  State
	reason   string
}

func (m *mockEmitter) OnStateChange(previous, current State, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, stateChangeEvent{previous, current, reason})
}

func (m *mockEmitter) Events() []stateChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stateChangeEvent{}, m.events...)
}

// fakeQueue is a channel-backed event queue that records dispatches and releases.
type fakeQueue struct {
	mu         sync.Mutex
	ch         chan domain.Event
	closed     bool
	handlers   map[domain.EventType][]ports.Handler
	dispatched []domain.Event
	released   []domain.Event
}

func newFakeQueue(events ...domain.Event) *fakeQueue {
	q := &fakeQueue{
		ch:       make(chan domain.Event, 64),
		handlers: make(map[domain.EventType][]ports.Handler),
	}
	for _, e := range events {
		q.ch <- e
	}
	return q
}

func (q *fakeQueue) Post(e domain.Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return domain.ErrQueueClosed
	}
	q.ch <- e
	return nil
}

func (q *fakeQueue) GetEvent() (domain.Event, error) {
	e, ok := <-q.ch
	if !ok {
		return domain.Event{}, domain.ErrQueueClosed
	}
	return e, nil
}

func (q *fakeQueue) DispatchEvent(e domain.Event) {
	q.mu.Lock()
	q.dispatched = append(q.dispatched, e)
	hs := append([]ports.Handler(nil), q.handlers[e.Type]...)
	q.mu.Unlock()
	for _, h := range hs {
		h(e)
	}
}

func (q *fakeQueue) ReleasePayload(e domain.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.released = append(q.released, e)
}

func (q *fakeQueue) Subscribe(t domain.EventType, h ports.Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[t] = append(q.handlers[t], h)
}

func (q *fakeQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	return nil
}

func (q *fakeQueue) Dispatched() []domain.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.Event(nil), q.dispatched...)
}

func (q *fakeQueue) Released() []domain.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.Event(nil), q.released...)
}

// fakeHost records every service action it is asked to perform.
type fakeHost struct {
	mu         sync.Mutex
	calls      []string
	manageable bool
	released   int

	daemonize func(name string, entry ports.EntryPoint) (int, error)
	failOn    map[string]error
	status    string
}

func (h *fakeHost) record(call string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, call)
	return h.failOn[call]
}

func (h *fakeHost) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func (h *fakeHost) Daemonize(name string, entry ports.EntryPoint) (int, error) {
	if err := h.record("daemonize:" + name); err != nil {
		return int(domain.ExitFailed), err
	}
	if h.daemonize != nil {
		return h.daemonize(name, entry)
	}
	return int(domain.ExitSuccess), nil
}

func (h *fakeHost) Install() error   { return h.record("install") }
func (h *fakeHost) Uninstall() error { return h.record("uninstall") }
func (h *fakeHost) Start() error     { return h.record("start") }
func (h *fakeHost) Stop() error      { return h.record("stop") }
func (h *fakeHost) Restart() error   { return h.record("restart") }

func (h *fakeHost) Status() (string, error) {
	if err := h.record("status"); err != nil {
		return "", err
	}
	return h.status, nil
}

func (h *fakeHost) Manageable() bool { return h.manageable }

func (h *fakeHost) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released++
	return nil
}

// fakePlatform hands out a single fakeHost.
type fakePlatform struct {
	host         *fakeHost
	handshakeErr error
	acquireErr   error
	handshakes   int
}

func (p *fakePlatform) Variant() string { return "fake" }

func (p *fakePlatform) Handshake() error {
	p.handshakes++
	return p.handshakeErr
}

func (p *fakePlatform) Acquire() (ports.ServiceHost, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return p.host, nil
}

// recordingReporter captures reported messages.
type recordingReporter struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingReporter) Report(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingReporter) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func (r *recordingReporter) contains(substr string) bool {
	for _, m := range r.Messages() {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// mockPlugin records lifecycle calls into a shared journal.
type mockPlugin struct {
	name    string
	initErr error
	journal *[]string
	cfg     ports.PluginConfig
}

func (p *mockPlugin) Name() string { return p.name }

func (p *mockPlugin) Initialize(_ context.Context, cfg ports.PluginConfig) error {
	*p.journal = append(*p.journal, "init:"+p.name)
	p.cfg = cfg
	return p.initErr
}

func (p *mockPlugin) Shutdown(context.Context) error {
	*p.journal = append(*p.journal, "shutdown:"+p.name)
	return nil
}

// mockLock is an in-process instance lock.
type mockLock struct {
	held     bool
	unlocked int
}

func (l *mockLock) TryLock() error {
	if l.held {
		return fmt.Errorf("%w: test", domain.ErrInstanceLocked)
	}
	l.held = true
	return nil
}

func (l *mockLock) Unlock() error {
	l.held = false
	l.unlocked++
	return nil
}

var errBoom = errors.New("boom")
