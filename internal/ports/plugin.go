package ports

import "context"

// PluginConfig is handed to plugins when the run loop starts.
type PluginConfig struct {
	// Poster posts events into the active run loop's queue
	Poster EventPoster

	// Logger is the daemon logger
	Logger Logger

	// Running reports whether the run loop is active
	Running func() bool

	// RunID identifies the active run loop session
	RunID string
}

// Plugin is an optional component that lives for the duration of a run loop.
// Plugins are initialized in registration order and shut down in reverse order.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}
