package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/eventd/internal/domain"
	"github.com/bft-labs/eventd/internal/ports"
)

// ShutdownTimeout is the maximum time plugins get to shut down after the loop ends.
const ShutdownTimeout = 30 * time.Second

// QueueFactory builds a fresh event queue for one run of the loop.
type QueueFactory func() ports.EventQueue

// DispatchObserver is called after each event is dispatched.
type DispatchObserver interface {
	OnDispatch(e domain.Event, duration time.Duration)
}

// RunLoopOption configures optional behavior of a RunLoop.
type RunLoopOption func(*RunLoop)

// WithHandlers registers a function that subscribes handlers on every fresh queue.
func WithHandlers(register func(q ports.EventQueue)) RunLoopOption {
	return func(r *RunLoop) {
		r.registrars = append(r.registrars, register)
	}
}

// WithSurface sets a dummy interactive surface kept open for the loop's duration.
func WithSurface(s ports.Surface) RunLoopOption {
	return func(r *RunLoop) {
		r.surface = s
	}
}

// WithPlugins registers plugins initialized before the loop and shut down after it.
func WithPlugins(plugins ...ports.Plugin) RunLoopOption {
	return func(r *RunLoop) {
		r.plugins = append(r.plugins, plugins...)
	}
}

// WithDispatchObserver sets an observer notified after every dispatch.
func WithDispatchObserver(o DispatchObserver) RunLoopOption {
	return func(r *RunLoop) {
		r.observer = o
	}
}

// RunLoop is the blocking retrieve-dispatch-release cycle. It behaves the same
// whether it is entered directly or through a service host trampoline.
// At most one Run may be active at a time.
type RunLoop struct {
	newQueue   QueueFactory
	lifecycle  *Lifecycle
	logger     ports.Logger
	registrars []func(ports.EventQueue)
	surface    ports.Surface
	plugins    []ports.Plugin
	observer   DispatchObserver

	mu    sync.Mutex
	queue ports.EventQueue
	runID string
}

// NewRunLoop creates a run loop that builds its queue with newQueue.
func NewRunLoop(newQueue QueueFactory, lifecycle *Lifecycle, logger ports.Logger, opts ...RunLoopOption) *RunLoop {
	r := &RunLoop{
		newQueue:  newQueue,
		lifecycle: lifecycle,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lifecycle returns the lifecycle tracking this loop's running state.
func (r *RunLoop) Lifecycle() *Lifecycle {
	return r.lifecycle
}

// RunID returns the identifier of the active run, or "" when stopped.
func (r *RunLoop) RunID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runID
}

// Run pumps events until a quit event is retrieved.
// The quit event is never dispatched. The running state is reset on every
// exit path, including failures and panics.
func (r *RunLoop) Run() (err error) {
	r.mu.Lock()
	if r.queue != nil {
		r.mu.Unlock()
		return domain.ErrAlreadyRunning
	}
	runID := uuid.NewString()
	q := r.newQueue()
	// The queue is published before the Running transition so that Post
	// succeeds whenever Running reports true.
	r.queue = q
	r.runID = runID
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.queue = nil
		r.runID = ""
		r.mu.Unlock()
		_ = q.Close()
	}()

	if err := r.lifecycle.TransitionTo(StateRunning, "run loop entered"); err != nil {
		return err
	}
	defer func() {
		reason := "quit event"
		if p := recover(); p != nil {
			err = fmt.Errorf("run loop panic: %v", p)
		}
		if err != nil {
			reason = err.Error()
		}
		_ = r.lifecycle.TransitionTo(StateStopped, reason)
	}()

	for _, register := range r.registrars {
		register(q)
	}

	if r.surface != nil {
		if err := r.surface.Open(); err != nil {
			return fmt.Errorf("open surface: %w", err)
		}
		defer func() {
			if cerr := r.surface.Close(); cerr != nil {
				r.logger.Warn("surface close failed", ports.Err(cerr))
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started, err := r.initPlugins(ctx, q, runID)
	defer r.shutdownPlugins(started)
	if err != nil {
		return err
	}

	r.logger.Info("run loop started", ports.String("run_id", runID))
	dispatched, err := r.pump(q)
	if err != nil {
		r.logger.Error("run loop failed",
			ports.String("run_id", runID),
			ports.Int("dispatched", dispatched),
			ports.Err(err),
		)
		return err
	}
	r.logger.Info("run loop finished",
		ports.String("run_id", runID),
		ports.Int("dispatched", dispatched),
	)
	return nil
}

// pump is the dispatch cycle. GetEvent is the only place the loop blocks.
func (r *RunLoop) pump(q ports.EventQueue) (int, error) {
	dispatched := 0
	for {
		event, err := q.GetEvent()
		if err != nil {
			return dispatched, fmt.Errorf("get event: %w", err)
		}
		if event.IsQuit() {
			q.ReleasePayload(event)
			return dispatched, nil
		}

		start := time.Now()
		q.DispatchEvent(event)
		if r.observer != nil {
			r.observer.OnDispatch(event, time.Since(start))
		}
		q.ReleasePayload(event)
		dispatched++
	}
}

// Post posts e into the active queue.
// Returns domain.ErrNotRunning when no loop is active.
func (r *RunLoop) Post(e domain.Event) error {
	r.mu.Lock()
	q := r.queue
	r.mu.Unlock()

	if q == nil {
		return domain.ErrNotRunning
	}
	if err := q.Post(e); err != nil {
		if errors.Is(err, domain.ErrQueueClosed) {
			return domain.ErrNotRunning
		}
		return err
	}
	return nil
}

// RequestQuit posts a quit event into the active queue.
// Returns domain.ErrNotRunning when no loop is active.
func (r *RunLoop) RequestQuit() error {
	return r.Post(domain.QuitEvent())
}

// initPlugins initializes plugins in registration order and returns the ones
// that started, so the caller can shut them down even on failure.
func (r *RunLoop) initPlugins(ctx context.Context, q ports.EventQueue, runID string) ([]ports.Plugin, error) {
	cfg := ports.PluginConfig{
		Poster:  q,
		Logger:  r.logger,
		Running: r.lifecycle.Running,
		RunID:   runID,
	}

	started := make([]ports.Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		if err := p.Initialize(ctx, cfg); err != nil {
			r.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			return started, fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		r.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
		started = append(started, p)
	}
	return started, nil
}

// shutdownPlugins shuts plugins down in reverse order.
func (r *RunLoop) shutdownPlugins(started []ports.Plugin) {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	for i := len(started) - 1; i >= 0; i-- {
		p := started[i]
		if err := p.Shutdown(ctx); err != nil {
			r.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			continue
		}
		r.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
	}
}
