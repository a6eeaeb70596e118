package main

import (
	"os"

	"github.com/bft-labs/eventd/internal/cliconfig"
	"github.com/bft-labs/eventd/internal/domain"
	"github.com/bft-labs/eventd/internal/ports"
	"github.com/bft-labs/eventd/plugins/configwatcher"
)

// levelSetter changes the logger's level at runtime.
type levelSetter interface {
	ports.Logger
	SetLevel(level string) error
}

// handlers holds the daemon's built-in event handlers.
type handlers struct {
	cfgFile string
	logger  levelSetter
}

func newHandlers(cfgFile string, logger levelSetter) *handlers {
	return &handlers{cfgFile: cfgFile, logger: logger}
}

// register subscribes the handlers on a fresh queue.
func (h *handlers) register(q ports.EventQueue) {
	q.Subscribe(domain.TypeConfigChanged, h.onConfigChanged)
	q.Subscribe(domain.TypeSystem, h.onSystem)
	if all, ok := q.(interface{ SubscribeAll(ports.Handler) }); ok {
		all.SubscribeAll(h.trace)
	}
}

func (h *handlers) trace(e domain.Event) {
	h.logger.Debug("event dispatched",
		ports.Stringer("type", e.Type),
		ports.String("target", e.Target))
}

// onConfigChanged re-reads the config file and applies the settings that can
// change without a restart. Only the log level qualifies today.
func (h *handlers) onConfigChanged(e domain.Event) {
	path := h.cfgFile
	if c, ok := e.Payload.(configwatcher.Change); ok && c.Path != "" {
		path = c.Path
	}
	if path == "" {
		return
	}

	fc, err := cliconfig.LoadFileConfig(path)
	if err != nil {
		h.logger.Warn("config reload failed", ports.String("path", path), ports.Err(err))
		return
	}
	if fc.LogLevel == "" {
		h.logger.Info("config reloaded", ports.String("path", path))
		return
	}
	if err := h.logger.SetLevel(fc.LogLevel); err != nil {
		h.logger.Warn("config reload: invalid log level",
			ports.String("log_level", fc.LogLevel),
			ports.Err(err))
		return
	}
	h.logger.Info("config reloaded",
		ports.String("path", path),
		ports.String("log_level", fc.LogLevel))
}

func (h *handlers) onSystem(e domain.Event) {
	if sig, ok := e.Payload.(os.Signal); ok {
		h.logger.Info("system signal", ports.Stringer("signal", sig))
		return
	}
	h.logger.Info("system event", ports.String("target", e.Target), ports.Any("payload", e.Payload))
}
