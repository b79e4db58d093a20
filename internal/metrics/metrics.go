// Package metrics provides Prometheus metrics for the relay
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the relay. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Turn metrics
	TurnsTotal    *prometheus.CounterVec
	TurnDuration  prometheus.Histogram
	TurnsInFlight prometheus.Gauge

	// Poll loop metrics
	PollAttemptsTotal *prometheus.CounterVec
	AttemptsPerTurn   prometheus.Histogram

	// Progress indicator metrics
	TypingSignalsTotal *prometheus.CounterVec

	// Backend metrics
	BackendHealthy prometheus.Gauge
}

// New creates the relay metrics on a private registry that also carries
// the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.TurnsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_turns_total",
			Help: "Total number of chat turns by outcome",
		},
		[]string{"outcome"},
	)

	m.TurnDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_turn_duration_seconds",
			Help:    "Time from receiving a user message to delivering the outcome",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 45, 60, 90},
		},
	)

	m.TurnsInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_turns_in_flight",
			Help: "Number of chat turns currently waiting on the backend",
		},
	)

	m.PollAttemptsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_poll_attempts_total",
			Help: "Total number of conversation snapshot fetches by outcome",
		},
		[]string{"outcome"},
	)

	m.AttemptsPerTurn = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_poll_attempts_per_turn",
			Help:    "Number of snapshot fetches needed per turn",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 30, 45, 60},
		},
	)

	m.TypingSignalsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_typing_signals_total",
			Help: "Total number of typing indicator sends by status",
		},
		[]string{"status"},
	)

	m.BackendHealthy = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_backend_healthy",
			Help: "1 if the last backend health probe succeeded, 0 otherwise",
		},
	)

	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// TurnStarted marks a turn as in flight.
func (m *Metrics) TurnStarted() {
	if m == nil {
		return
	}
	m.TurnsInFlight.Inc()
}

// ObserveTurn records a finished turn.
func (m *Metrics) ObserveTurn(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.TurnsInFlight.Dec()
	m.TurnsTotal.WithLabelValues(outcome).Inc()
	m.TurnDuration.Observe(duration.Seconds())
}

// ObservePollAttempt records one snapshot fetch.
func (m *Metrics) ObservePollAttempt(outcome string) {
	if m == nil {
		return
	}
	m.PollAttemptsTotal.WithLabelValues(outcome).Inc()
}

// ObserveAttemptsPerTurn records how many fetches a finished poll loop used.
func (m *Metrics) ObserveAttemptsPerTurn(n int) {
	if m == nil {
		return
	}
	m.AttemptsPerTurn.Observe(float64(n))
}

// ObserveTyping records a typing indicator send.
func (m *Metrics) ObserveTyping(err error) {
	if m == nil {
		return
	}
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.TypingSignalsTotal.WithLabelValues(status).Inc()
}

// SetBackendHealthy records the result of a health probe.
func (m *Metrics) SetBackendHealthy(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.BackendHealthy.Set(1)
		return
	}
	m.BackendHealthy.Set(0)
}
