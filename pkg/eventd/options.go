package eventd

import (
	"io"

	"github.com/bft-labs/eventd/internal/app"
	"github.com/bft-labs/eventd/internal/ports"
)

// Option configures optional behavior of a Daemon.
type Option func(*options)

type handlerReg struct {
	t EventType
	h Handler
}

// options holds the optional configuration for a Daemon.
type options struct {
	logger     Logger
	reporter   Reporter
	output     io.Writer
	handlers   []handlerReg
	registrars []func(Queue)
	plugins    []Plugin
	observers  []StateObserver
	dispatch   DispatchObserver
	noLock     bool
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithReporter sets where fatal error messages are delivered.
// If not provided, the channel is chosen from the session type: standard
// error when interactive, otherwise a message box (Windows) or the system log.
func WithReporter(r Reporter) Option {
	return func(o *options) {
		o.reporter = r
	}
}

// WithOutput sets where the status command writes. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithHandler subscribes h to events of type t on every run of the loop.
func WithHandler(t EventType, h Handler) Option {
	return func(o *options) {
		o.handlers = append(o.handlers, handlerReg{t: t, h: h})
	}
}

// WithRegistrar calls register with each fresh queue before the loop starts.
func WithRegistrar(register func(Queue)) Option {
	return func(o *options) {
		o.registrars = append(o.registrars, register)
	}
}

// WithPlugin registers a plugin initialized when the loop starts.
// Plugins are initialized in registration order and shut down in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithStateObserver registers an observer of run loop state transitions.
func WithStateObserver(obs StateObserver) Option {
	return func(o *options) {
		o.observers = append(o.observers, obs)
	}
}

// WithDispatchObserver sets an observer called after every dispatched event.
func WithDispatchObserver(obs DispatchObserver) Option {
	return func(o *options) {
		o.dispatch = obs
	}
}

// WithoutInstanceLock disables the cross-process instance lock.
func WithoutInstanceLock() Option {
	return func(o *options) {
		o.noLock = true
	}
}

// Re-exported types so embedders need not import internal packages.
type (
	Logger           = ports.Logger
	Field            = ports.Field
	Reporter         = ports.ErrorReporter
	Queue            = ports.EventQueue
	Handler          = ports.Handler
	Plugin           = ports.Plugin
	PluginConfig     = ports.PluginConfig
	Status           = ports.Status
	State            = app.State
	StateObserver    = app.EventEmitter
	DispatchObserver = app.DispatchObserver
)

// Lifecycle states.
const (
	StateStopped = app.StateStopped
	StateRunning = app.StateRunning
)
