// Package statusserver exposes the run loop's health and Prometheus
// metrics over HTTP while the loop is running.
package statusserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/bft-labs/eventd/internal/ports"
)

// Health is the /healthz response body.
type Health struct {
	State   string `json:"state"`
	Running bool   `json:"running"`
	RunID   string `json:"run_id,omitempty"`
}

// Config holds configuration for the status server plugin.
type Config struct {
	// Addr is the listen address. Empty disables the server.
	Addr string

	// ReadHeaderTimeout bounds request header reads.
	// Default: 5 seconds
	ReadHeaderTimeout time.Duration
}

// Plugin runs the HTTP status server.
type Plugin struct {
	cfg     Config
	metrics *Metrics

	mu      sync.Mutex
	server  *http.Server
	addr    string
	running func() bool
	runID   string
	logger  ports.Logger
	done    chan struct{}
}

// New creates a status server plugin serving metrics from m.
func New(cfg Config, m *Metrics) *Plugin {
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 5 * time.Second
	}
	return &Plugin{cfg: cfg, metrics: m}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "statusserver"
}

// Initialize binds the listener and starts serving.
// A bind failure is returned so the run loop does not start half-configured.
func (p *Plugin) Initialize(ctx context.Context, cfg ports.PluginConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger = cfg.Logger
	p.running = cfg.Running
	p.runID = cfg.RunID

	if p.cfg.Addr == "" {
		p.logger.Debug("status server disabled")
		return nil
	}

	ln, err := net.Listen("tcp", p.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", p.cfg.Addr, err)
	}

	p.server = &http.Server{
		Handler:           p.routes(),
		ReadHeaderTimeout: p.cfg.ReadHeaderTimeout,
	}
	p.addr = ln.Addr().String()
	p.done = make(chan struct{})

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("status server failed", ports.Err(err))
		}
	}(p.server, p.done)

	p.logger.Info("status server listening", ports.String("addr", p.addr))
	return nil
}

// Shutdown stops the server, waiting for in-flight requests up to ctx's deadline.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	srv, done := p.server, p.done
	p.server = nil
	p.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown status server: %w", err)
	}
	<-done
	return nil
}

// Addr returns the bound listen address, or "" when not serving.
func (p *Plugin) Addr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addr
}

func (p *Plugin) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", p.handleHealth)
	if p.metrics != nil {
		mux.Handle("/metrics", p.metrics.Handler())
	}
	return mux
}

func (p *Plugin) handleHealth(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	running := p.running != nil && p.running()
	h := Health{State: "Stopped", Running: running}
	if running {
		h.State = "Running"
		h.RunID = p.runID
	}
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !running {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(h); err != nil {
		p.logger.Warn("failed to write health response", ports.Err(err))
	}
}
