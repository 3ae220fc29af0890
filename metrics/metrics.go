// Package metrics holds the Prometheus collectors of the dev node
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	TransactionsTotal *prometheus.CounterVec
	BlockHeight       prometheus.Gauge

	// Diamond metrics
	CutsTotal    *prometheus.CounterVec
	CutDuration  prometheus.Histogram
	CutCacheHits prometheus.Counter

	// Billing metrics
	ChargesTotal      *prometheus.CounterVec
	RenewalRunsTotal  *prometheus.CounterVec
	RenewalRunSeconds prometheus.Histogram

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		TransactionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diamond_transactions_total",
				Help: "Total number of transactions applied to the ledger",
			},
			[]string{"status"},
		),
		BlockHeight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "diamond_block_height",
				Help: "Number of the latest block",
			},
		),

		CutsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diamond_cuts_total",
				Help: "Total number of diamond cuts",
			},
			[]string{"result"},
		),
		CutDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "diamond_cut_duration_seconds",
				Help:    "Diamond cut duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		CutCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "diamond_cut_cache_hits_total",
				Help: "Cut submissions answered from the idempotency cache",
			},
		),

		ChargesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diamond_subscription_charges_total",
				Help: "Total number of recurring subscription charges",
			},
			[]string{"result"},
		),
		RenewalRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diamond_renewal_runs_total",
				Help: "Total number of scheduled renewal runs",
			},
			[]string{"status"},
		),
		RenewalRunSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "diamond_renewal_run_duration_seconds",
				Help:    "Scheduled renewal run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diamond_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "diamond_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	registry.MustRegister(
		m.TransactionsTotal,
		m.BlockHeight,
		m.CutsTotal,
		m.CutDuration,
		m.CutCacheHits,
		m.ChargesTotal,
		m.RenewalRunsTotal,
		m.RenewalRunSeconds,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
