package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	t.Run("registers every collector", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		m := NewMetrics(registry)
		require.NotNil(t, m)

		m.TransactionsTotal.WithLabelValues("success").Inc()
		m.CutsTotal.WithLabelValues("success").Inc()
		m.ChargesTotal.WithLabelValues("charged").Inc()
		m.RenewalRunsTotal.WithLabelValues("ok").Inc()
		m.HTTPRequestsTotal.WithLabelValues("GET", "/v1/diamond/facets", "200").Inc()
		m.HTTPRequestDuration.WithLabelValues("GET", "/v1/diamond/facets").Observe(0.01)

		families, err := registry.Gather()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(families), 6)
	})

	t.Run("double registration panics", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		NewMetrics(registry)
		assert.Panics(t, func() { NewMetrics(registry) })
	})

	t.Run("counters accumulate per label", func(t *testing.T) {
		m := NewMetrics(prometheus.NewRegistry())
		m.TransactionsTotal.WithLabelValues("success").Inc()
		m.TransactionsTotal.WithLabelValues("success").Inc()
		m.TransactionsTotal.WithLabelValues("reverted").Inc()

		assert.Equal(t, 2.0, testutil.ToFloat64(m.TransactionsTotal.WithLabelValues("success")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.TransactionsTotal.WithLabelValues("reverted")))
	})
}

func TestHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	m.CutsTotal.WithLabelValues("failure").Inc()

	rec := httptest.NewRecorder()
	Handler(registry).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `diamond_cuts_total{result="failure"} 1`)
}
