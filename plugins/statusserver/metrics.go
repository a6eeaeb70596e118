package statusserver

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/eventd/internal/app"
	"github.com/bft-labs/eventd/internal/domain"
)

// Metrics holds the daemon's Prometheus collectors. It observes dispatches
// and lifecycle transitions, so it outlives any single run of the loop.
type Metrics struct {
	registry *prometheus.Registry

	running         prometheus.Gauge
	dispatched      *prometheus.CounterVec
	dispatchSeconds prometheus.Histogram
	transitions     *prometheus.CounterVec
}

// NewMetrics creates the collectors on a private registry, together with
// the standard Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eventd_running",
			Help: "Whether the run loop is active (1) or not (0)",
		}),
		dispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventd_events_dispatched_total",
				Help: "Total events dispatched by event type",
			},
			[]string{"type"},
		),
		dispatchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eventd_dispatch_duration_seconds",
			Help:    "Time spent dispatching a single event",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventd_state_transitions_total",
				Help: "Total lifecycle transitions by source and target state",
			},
			[]string{"from", "to"},
		),
	}

	m.registry.MustRegister(
		m.running,
		m.dispatched,
		m.dispatchSeconds,
		m.transitions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// OnDispatch implements app.DispatchObserver.
func (m *Metrics) OnDispatch(e domain.Event, duration time.Duration) {
	m.dispatched.WithLabelValues(e.Type.String()).Inc()
	m.dispatchSeconds.Observe(duration.Seconds())
}

// OnStateChange implements app.EventEmitter.
func (m *Metrics) OnStateChange(previous, current app.State, reason string) {
	m.transitions.WithLabelValues(previous.String(), current.String()).Inc()
	if current == app.StateRunning {
		m.running.Set(1)
	} else {
		m.running.Set(0)
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

var (
	_ app.DispatchObserver = (*Metrics)(nil)
	_ app.EventEmitter     = (*Metrics)(nil)
)
