// Package signals turns OS signals into run loop actions when eventd runs
// in the foreground. Shutdown signals stop the loop; other notified
// signals are posted as system events.
package signals

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"

	"github.com/bft-labs/eventd/internal/domain"
	"github.com/bft-labs/eventd/internal/ports"
)

// Target is the event target used for posted signal events.
const Target = "signal"

// Config holds configuration for the signals plugin.
type Config struct {
	// Stop is invoked on a shutdown signal
	Stop func()
}

// Plugin relays OS signals into the run loop.
type Plugin struct {
	stop func()

	poster ports.EventPoster
	logger ports.Logger
	ch     chan os.Signal
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a signals plugin.
func New(cfg Config) *Plugin {
	return &Plugin{stop: cfg.Stop}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "signals"
}

// Initialize starts relaying signals.
func (p *Plugin) Initialize(ctx context.Context, cfg ports.PluginConfig) error {
	p.poster = cfg.Poster
	p.logger = cfg.Logger

	p.ch = make(chan os.Signal, 1)
	signal.Notify(p.ch, append(shutdownSignals(), systemSignals()...)...)

	relayCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.relay(relayCtx)
	return nil
}

// Shutdown stops relaying signals.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.ch != nil {
		signal.Stop(p.ch)
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

func (p *Plugin) relay(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-p.ch:
			p.handle(sig)
		}
	}
}

func (p *Plugin) handle(sig os.Signal) {
	if isShutdown(sig) {
		p.logger.Info("received signal, stopping", ports.Stringer("signal", sig))
		if p.stop != nil {
			p.stop()
		}
		return
	}

	e := domain.NewEvent(domain.TypeSystem, sig)
	e.Target = Target
	if err := p.poster.Post(e); err != nil && !errors.Is(err, domain.ErrQueueClosed) {
		p.logger.Error("failed to post signal event", ports.Stringer("signal", sig), ports.Err(err))
	}
}

func isShutdown(sig os.Signal) bool {
	for _, s := range shutdownSignals() {
		if s == sig {
			return true
		}
	}
	return false
}
