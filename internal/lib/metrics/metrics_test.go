package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestNew_RegistersCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Reconciliations.WithLabelValues("paid").Inc()
	m.Reconciliations.WithLabelValues("already_recorded").Inc()
	m.Checkouts.WithLabelValues("normal", "created").Inc()

	assert.InDelta(t, 2.0, counterValue(t, reg, "subscription_tracker_reconciliations_total"), 0.0001)
	assert.InDelta(t, 1.0, counterValue(t, reg, "subscription_tracker_checkouts_total"), 0.0001)
	assert.InDelta(t, 0.0, counterValue(t, reg, "subscription_tracker_extensions_total"), 0.0001)
}

func TestNew_TwoRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
