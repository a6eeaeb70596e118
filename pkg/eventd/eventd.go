package eventd

import (
	"github.com/bft-labs/eventd/internal/adapters/fs"
	logAdapter "github.com/bft-labs/eventd/internal/adapters/log"
	"github.com/bft-labs/eventd/internal/adapters/queue"
	"github.com/bft-labs/eventd/internal/adapters/report"
	svcAdapter "github.com/bft-labs/eventd/internal/adapters/service"
	"github.com/bft-labs/eventd/internal/app"
	"github.com/bft-labs/eventd/internal/domain"
	"github.com/bft-labs/eventd/internal/ports"
)

// Event types and values.
type (
	Event     = domain.Event
	EventType = domain.EventType
)

// Built-in event types. Applications allocate their own from TypeUser.
const (
	TypeSystem        = domain.TypeSystem
	TypeTimer         = domain.TypeTimer
	TypeConfigChanged = domain.TypeConfigChanged
	TypeStatusRequest = domain.TypeStatusRequest
	TypeUser          = domain.TypeUser
)

// Exit codes returned by Run.
const (
	ExitSuccess = int(domain.ExitSuccess)
	ExitFailed  = int(domain.ExitFailed)
	ExitArgs    = int(domain.ExitArgs)
	ExitConfig  = int(domain.ExitConfig)
)

// Errors callers may check with errors.Is.
var (
	ErrNotRunning       = domain.ErrNotRunning
	ErrControllerExists = domain.ErrControllerExists
	ErrInvalidConfig    = domain.ErrInvalidConfig
	ErrInstanceLocked   = domain.ErrInstanceLocked
)

// NewEvent creates an event of the given type carrying payload.
func NewEvent(t EventType, payload any) Event {
	return domain.NewEvent(t, payload)
}

// Stop asks the open Daemon's loop to quit. It is safe to call from signal
// handlers and service manager callbacks.
func Stop() {
	app.StopTrampoline()
}

// Daemon is an event loop bound to the platform service manager.
// Use New to create one and Close when done.
type Daemon struct {
	config    Config
	lifecycle *app.Lifecycle
	loop      *app.RunLoop
	ctrl      *app.Controller
	platform  *svcAdapter.Platform
	status    *fs.StatusFileRepository
	logger    ports.Logger
}

// New creates a Daemon and registers it as the process's only instance.
func New(cfg Config, opts ...Option) (*Daemon, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = logAdapter.NewNoopLogger()
	}
	reporter := o.reporter
	if reporter == nil {
		reporter = report.New(report.Config{ServiceName: cfg.ServiceName, Title: cfg.DisplayName}, logger)
	}
	app.SetFallbackReporter(reporter)
	app.SetFallbackLogger(logger)

	statusRepo := fs.NewStatusFileRepository(cfg.StateDir)
	emitters := append([]app.EventEmitter{app.NewStatusRecorder(statusRepo, logger)}, o.observers...)
	lifecycle := app.NewLifecycle(logger, emitters...)

	loopOpts := []app.RunLoopOption{app.WithPlugins(o.plugins...)}
	if len(o.handlers) > 0 {
		handlers := o.handlers
		loopOpts = append(loopOpts, app.WithHandlers(func(q ports.EventQueue) {
			for _, reg := range handlers {
				q.Subscribe(reg.t, reg.h)
			}
		}))
	}
	for _, register := range o.registrars {
		loopOpts = append(loopOpts, app.WithHandlers(register))
	}
	if o.dispatch != nil {
		loopOpts = append(loopOpts, app.WithDispatchObserver(o.dispatch))
	}

	newQueue := func() ports.EventQueue { return queue.NewMemory(logger) }
	loop := app.NewRunLoop(newQueue, lifecycle, logger, loopOpts...)

	platform := svcAdapter.NewPlatform(svcAdapter.Config{
		ServiceName: cfg.ServiceName,
		DisplayName: cfg.DisplayName,
		Description: cfg.Description,
		Arguments:   cfg.Arguments,
		Foreground:  cfg.Foreground,
		StopTimeout: cfg.StopTimeout,
	}, app.StopTrampoline, logger)

	ctrlOpts := []app.ControllerOption{app.WithStatusRepository(statusRepo)}
	if !o.noLock {
		ctrlOpts = append(ctrlOpts, app.WithInstanceLock(fs.NewInstanceLock(cfg.StateDir)))
	}

	ctrl, err := app.NewController(
		app.ControllerConfig{ServiceName: cfg.ServiceName, Output: o.output},
		platform, reporter, loop, logger, ctrlOpts...,
	)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		config:    cfg,
		lifecycle: lifecycle,
		loop:      loop,
		ctrl:      ctrl,
		platform:  platform,
		status:    statusRepo,
		logger:    logger,
	}, nil
}

// Run handles process arguments and returns the process exit code.
// With no arguments the process is handed to the service manager.
func (d *Daemon) Run(args []string) int {
	return int(d.ctrl.Run(args))
}

// Post delivers e to the running loop.
// Returns ErrNotRunning when the loop is not active.
func (d *Daemon) Post(e Event) error {
	return d.loop.Post(e)
}

// Stop asks the running loop to quit.
// Returns ErrNotRunning when the loop is not active.
func (d *Daemon) Stop() error {
	return d.loop.RequestQuit()
}

// State returns the current run loop state.
func (d *Daemon) State() State {
	return d.lifecycle.State()
}

// Running reports whether the loop is active.
func (d *Daemon) Running() bool {
	return d.lifecycle.Running()
}

// RunID identifies the active run of the loop, or "" when stopped.
func (d *Daemon) RunID() string {
	return d.loop.RunID()
}

// Variant returns the service host variant in use.
func (d *Daemon) Variant() string {
	return d.platform.Variant()
}

// StatusPath returns the file the loop status is persisted to.
func (d *Daemon) StatusPath() string {
	return d.status.Path()
}

// Close releases the process-wide registration. Service manager callbacks
// made afterwards are reported as errors.
func (d *Daemon) Close() {
	d.ctrl.Close()
}
