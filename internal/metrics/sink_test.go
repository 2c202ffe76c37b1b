package metrics_test

import (
	"testing"

	"github.com/fermata-io/purgatory/internal/metrics"
	"github.com/fermata-io/purgatory/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "event" && lp.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestSink_CountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := metrics.New(reg)

	sink.Observe(domain.Event{Type: domain.EventEjected, TokenID: "sem-a"})
	sink.Observe(domain.Event{Type: domain.EventEjected, TokenID: "sem-b"})
	sink.Observe(domain.Event{Type: domain.EventResolved, TokenID: "sem-a"})
	sink.Observe(domain.Event{Type: domain.EventVoided, TokenID: "sem-b"})

	assert.Equal(t, 2.0, counterValue(t, reg, "purgatory_lifecycle_events_total", "ejected"))
	assert.Equal(t, 1.0, counterValue(t, reg, "purgatory_lifecycle_events_total", "resolved"))
	assert.Equal(t, 1.0, counterValue(t, reg, "purgatory_lifecycle_events_total", "voided"))
	assert.Equal(t, 0.0, gaugeValue(t, reg, "purgatory_pending_tokens"), "two in, two out")
}

func TestSink_SetPending(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := metrics.New(reg)

	sink.SetPending(7)
	assert.Equal(t, 7.0, gaugeValue(t, reg, "purgatory_pending_tokens"))
}
