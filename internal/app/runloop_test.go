package app

import (
	"errors"
	"testing"
	"time"

	"github.com/bft-labs/eventd/internal/domain"
	"github.com/bft-labs/eventd/internal/ports"
)

const (
	typeA domain.EventType = domain.TypeUser + iota
	typeB
)

func newTestLoop(q *fakeQueue, opts ...RunLoopOption) (*RunLoop, *mockEmitter) {
	emitter := &mockEmitter{}
	lifecycle := NewLifecycle(&mockLogger{}, emitter)
	loop := NewRunLoop(func() ports.EventQueue { return q }, lifecycle, &mockLogger{}, opts...)
	return loop, emitter
}

func TestRunLoop_DispatchesInOrderAndSkipsQuit(t *testing.T) {
	a := domain.NewEvent(typeA, "a")
	b := domain.NewEvent(typeB, "b")
	q := newFakeQueue(a, b, domain.QuitEvent())

	var runningDuring []bool
	var loop *RunLoop
	loop, _ = newTestLoop(q, WithHandlers(func(q ports.EventQueue) {
		record := func(e domain.Event) { runningDuring = append(runningDuring, loop.Lifecycle().Running()) }
		q.Subscribe(typeA, record)
		q.Subscribe(typeB, record)
	}))

	if loop.Lifecycle().Running() {
		t.Fatal("Running() = true before Run")
	}
	if err := loop.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	dispatched := q.Dispatched()
	if len(dispatched) != 2 || dispatched[0].Type != typeA || dispatched[1].Type != typeB {
		t.Errorf("dispatched = %+v, want [A B]", dispatched)
	}
	for _, e := range dispatched {
		if e.IsQuit() {
			t.Error("quit event was dispatched")
		}
	}

	released := q.Released()
	if len(released) != 3 || !released[2].IsQuit() {
		t.Errorf("released = %+v, want A, B and quit", released)
	}

	if len(runningDuring) != 2 || !runningDuring[0] || !runningDuring[1] {
		t.Errorf("running during dispatch = %v, want [true true]", runningDuring)
	}
	if loop.Lifecycle().Running() {
		t.Error("Running() = true after Run returned")
	}
	if loop.RunID() != "" {
		t.Errorf("RunID() = %q after Run, want empty", loop.RunID())
	}
}

func TestRunLoop_ResetsRunningOnQueueFailure(t *testing.T) {
	q := newFakeQueue(domain.NewEvent(typeA, nil))
	q.Close()

	loop, emitter := newTestLoop(q)
	err := loop.Run()
	if !errors.Is(err, domain.ErrQueueClosed) {
		t.Fatalf("Run() error = %v, want ErrQueueClosed", err)
	}
	if loop.Lifecycle().Running() {
		t.Error("Running() = true after failed Run")
	}

	events := emitter.Events()
	if len(events) != 2 || events[1].current != StateStopped {
		t.Fatalf("transitions = %+v, want Running then Stopped", events)
	}
	if events[1].reason == "quit event" {
		t.Error("stop reason does not reflect the failure")
	}
}

func TestRunLoop_ResetsRunningOnPanic(t *testing.T) {
	q := newFakeQueue(domain.NewEvent(typeA, nil), domain.QuitEvent())
	loop, _ := newTestLoop(q, WithHandlers(func(q ports.EventQueue) {
		q.Subscribe(typeA, func(domain.Event) { panic("handler exploded") })
	}))

	err := loop.Run()
	if err == nil {
		t.Fatal("Run() error = nil, want panic converted to error")
	}
	if loop.Lifecycle().Running() {
		t.Error("Running() = true after panic")
	}

	// The loop can be entered again afterwards.
	q2 := newFakeQueue(domain.QuitEvent())
	loop.newQueue = func() ports.EventQueue { return q2 }
	if err := loop.Run(); err != nil {
		t.Errorf("second Run() error = %v", err)
	}
}

func TestRunLoop_RejectsReentry(t *testing.T) {
	q := newFakeQueue(domain.NewEvent(typeA, nil), domain.QuitEvent())

	var nestedErr error
	var loop *RunLoop
	loop, _ = newTestLoop(q, WithHandlers(func(q ports.EventQueue) {
		q.Subscribe(typeA, func(domain.Event) { nestedErr = loop.Run() })
	}))

	if err := loop.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !errors.Is(nestedErr, domain.ErrAlreadyRunning) {
		t.Errorf("nested Run() error = %v, want ErrAlreadyRunning", nestedErr)
	}
}

func TestRunLoop_RequestQuit(t *testing.T) {
	q := newFakeQueue()
	loop, _ := newTestLoop(q)

	if err := loop.RequestQuit(); !errors.Is(err, domain.ErrNotRunning) {
		t.Errorf("RequestQuit() before Run = %v, want ErrNotRunning", err)
	}

	done := make(chan error, 1)
	go func() { done <- loop.Run() }()

	deadline := time.Now().Add(2 * time.Second)
	for loop.RunID() == "" {
		if time.Now().After(deadline) {
			t.Fatal("run loop did not start")
		}
		time.Sleep(time.Millisecond)
	}

	if err := loop.RequestQuit(); err != nil {
		t.Fatalf("RequestQuit() error = %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after RequestQuit")
	}

	if err := loop.RequestQuit(); !errors.Is(err, domain.ErrNotRunning) {
		t.Errorf("RequestQuit() after Run = %v, want ErrNotRunning", err)
	}
}

func TestRunLoop_Plugins(t *testing.T) {
	t.Run("initialized in order and shut down in reverse", func(t *testing.T) {
		var journal []string
		q := newFakeQueue(domain.QuitEvent())
		first := &mockPlugin{name: "first", journal: &journal}
		loop, _ := newTestLoop(q, WithPlugins(first, &mockPlugin{name: "second", journal: &journal}))

		if err := loop.Run(); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		want := []string{"init:first", "init:second", "shutdown:second", "shutdown:first"}
		if len(journal) != len(want) {
			t.Fatalf("journal = %v, want %v", journal, want)
		}
		for i := range want {
			if journal[i] != want[i] {
				t.Errorf("journal[%d] = %q, want %q", i, journal[i], want[i])
			}
		}
		if first.cfg.RunID == "" || first.cfg.Poster == nil || first.cfg.Running == nil {
			t.Errorf("plugin config incomplete: %+v", first.cfg)
		}
	})

	t.Run("initialization failure stops the run", func(t *testing.T) {
		var journal []string
		q := newFakeQueue(domain.QuitEvent())
		loop, _ := newTestLoop(q, WithPlugins(
			&mockPlugin{name: "ok", journal: &journal},
			&mockPlugin{name: "bad", journal: &journal, initErr: errBoom},
			&mockPlugin{name: "never", journal: &journal},
		))

		err := loop.Run()
		if !errors.Is(err, errBoom) {
			t.Fatalf("Run() error = %v, want errBoom", err)
		}
		want := []string{"init:ok", "init:bad", "shutdown:ok"}
		if len(journal) != len(want) {
			t.Fatalf("journal = %v, want %v", journal, want)
		}
		if loop.Lifecycle().Running() {
			t.Error("Running() = true after plugin failure")
		}
	})
}

type countingObserver struct {
	types []domain.EventType
}

func (o *countingObserver) OnDispatch(e domain.Event, _ time.Duration) {
	o.types = append(o.types, e.Type)
}

func TestRunLoop_DispatchObserver(t *testing.T) {
	obs := &countingObserver{}
	q := newFakeQueue(domain.NewEvent(typeA, nil), domain.NewEvent(typeB, nil), domain.QuitEvent())
	loop, _ := newTestLoop(q, WithDispatchObserver(obs))

	if err := loop.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(obs.types) != 2 || obs.types[0] != typeA || obs.types[1] != typeB {
		t.Errorf("observed %v, want [A B]", obs.types)
	}
}

type mockSurface struct {
	openErr error
	opened  int
	closed  int
}

func (s *mockSurface) Open() error {
	s.opened++
	return s.openErr
}

func (s *mockSurface) Close() error {
	s.closed++
	return nil
}

func TestRunLoop_Surface(t *testing.T) {
	t.Run("open for the loop's duration", func(t *testing.T) {
		s := &mockSurface{}
		loop, _ := newTestLoop(newFakeQueue(domain.QuitEvent()), WithSurface(s))
		if err := loop.Run(); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if s.opened != 1 || s.closed != 1 {
			t.Errorf("surface opened %d closed %d, want 1 and 1", s.opened, s.closed)
		}
	})

	t.Run("open failure", func(t *testing.T) {
		s := &mockSurface{openErr: errBoom}
		loop, _ := newTestLoop(newFakeQueue(domain.QuitEvent()), WithSurface(s))
		if err := loop.Run(); !errors.Is(err, errBoom) {
			t.Fatalf("Run() error = %v, want errBoom", err)
		}
		if s.closed != 0 {
			t.Errorf("surface closed %d times after failed open", s.closed)
		}
		if loop.Lifecycle().Running() {
			t.Error("Running() = true after surface failure")
		}
	})
}

func TestRunLoop_PostFromOutside(t *testing.T) {
	q := newFakeQueue()
	loop, _ := newTestLoop(q)

	if err := loop.Post(domain.NewEvent(typeA, nil)); !errors.Is(err, domain.ErrNotRunning) {
		t.Errorf("Post() before Run = %v, want ErrNotRunning", err)
	}

	done := make(chan error, 1)
	go func() { done <- loop.Run() }()
	deadline := time.Now().Add(2 * time.Second)
	for loop.RunID() == "" {
		if time.Now().After(deadline) {
			t.Fatal("run loop did not start")
		}
		time.Sleep(time.Millisecond)
	}

	if err := loop.Post(domain.NewEvent(typeA, "external")); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if err := loop.RequestQuit(); err != nil {
		t.Fatalf("RequestQuit() error = %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	dispatched := q.Dispatched()
	if len(dispatched) != 1 || dispatched[0].Payload != "external" {
		t.Errorf("dispatched = %+v, want the posted event", dispatched)
	}
}

type emitterFunc func(previous, current State, reason string)

func (f emitterFunc) OnStateChange(previous, current State, reason string) {
	f(previous, current, reason)
}

func TestRunLoop_PostAcceptedWhileRunning(t *testing.T) {
	q := newFakeQueue()
	var loop *RunLoop
	quitErr := errBoom
	onRunning := emitterFunc(func(_, current State, _ string) {
		if current == StateRunning {
			quitErr = loop.RequestQuit()
		}
	})
	loop = NewRunLoop(func() ports.EventQueue { return q },
		NewLifecycle(&mockLogger{}, onRunning), &mockLogger{})

	if err := loop.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if quitErr != nil {
		t.Errorf("RequestQuit() on entering Running = %v, want nil", quitErr)
	}
}
