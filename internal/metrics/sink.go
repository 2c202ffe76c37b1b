package metrics

import (
	"github.com/fermata-io/purgatory/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Sink exposes lifecycle activity as Prometheus metrics. Its Observe method
// satisfies domain.EventSink.
type Sink struct {
	events  *prometheus.CounterVec
	pending prometheus.Gauge
}

// New creates a sink and registers its collectors on the given registerer.
func New(reg prometheus.Registerer) *Sink {
	s := &Sink{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "purgatory_lifecycle_events_total",
				Help: "Total number of token lifecycle events by type",
			},
			[]string{"event"},
		),
		pending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "purgatory_pending_tokens",
				Help: "Number of tokens currently pending a decision",
			},
		),
	}
	reg.MustRegister(s.events, s.pending)
	return s
}

// Observe records one lifecycle event.
func (s *Sink) Observe(e domain.Event) {
	s.events.WithLabelValues(string(e.Type)).Inc()

	switch e.Type {
	case domain.EventEjected:
		s.pending.Inc()
	case domain.EventResolved, domain.EventCancelled, domain.EventVoided:
		s.pending.Dec()
	}
}

// SetPending resets the pending gauge to an absolute value. Called after
// recovery, when the gauge cannot be derived from observed events.
func (s *Sink) SetPending(n int) {
	s.pending.Set(float64(n))
}
