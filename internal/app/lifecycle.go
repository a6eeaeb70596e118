package app

import (
	"sync"

	"github.com/bft-labs/eventd/internal/domain"
	"github.com/bft-labs/eventd/internal/ports"
)

// State represents the lifecycle state of the run loop.
type State int

const (
	StateStopped State = iota
	StateRunning
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateRunning:
		return "Running"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle holds the running state of the run loop and notifies observers
// of every transition. Stopped -> Running -> Stopped are the only transitions.
type Lifecycle struct {
	mu       sync.RWMutex
	state    State
	logger   ports.Logger
	emitters []EventEmitter
}

// NewLifecycle creates a new lifecycle in StateStopped.
func NewLifecycle(logger ports.Logger, emitters ...EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:    StateStopped,
		logger:   logger,
		emitters: emitters,
	}
}

// Subscribe adds an observer for later transitions.
func (l *Lifecycle) Subscribe(e EventEmitter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.emitters = append(l.emitters, e)
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Running returns true while the run loop is active.
func (l *Lifecycle) Running() bool {
	return l.State() == StateRunning
}

// TransitionTo attempts to transition to a new state.
// Returns an error if the transition is not valid.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state

	switch {
	case oldState == StateStopped && newState != StateRunning:
		l.mu.Unlock()
		return domain.ErrNotRunning
	case oldState == StateRunning && newState != StateStopped:
		l.mu.Unlock()
		return domain.ErrAlreadyRunning
	}

	l.state = newState
	emitters := append([]EventEmitter(nil), l.emitters...)
	l.mu.Unlock()

	// Emit events outside of lock
	for _, e := range emitters {
		e.OnStateChange(oldState, newState, reason)
	}

	l.logger.Info("state transition",
		ports.String("from", oldState.String()),
		ports.String("to", newState.String()),
		ports.String("reason", reason),
	)

	return nil
}
