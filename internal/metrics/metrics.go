package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Upstream provider metrics
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec

	// History metrics
	HistoryWritesTotal *prometheus.CounterVec
	HistoryReadErrors  prometheus.Counter

	// Application Metrics
	LookupsTotal    *prometheus.CounterVec
	LookupFallbacks prometheus.Counter
	StaleResponses  *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on /metrics, or a fresh
// prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint", "status"},
		),

		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_requests_total",
				Help: "Total number of calls to upstream data providers",
			},
			[]string{"provider", "result"},
		),

		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upstream_request_duration_seconds",
				Help:    "Upstream provider latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),

		HistoryWritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "history_writes_total",
				Help: "Total number of history appends by namespace and result",
			},
			[]string{"namespace", "result"},
		),

		HistoryReadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "history_read_errors_total",
				Help: "Total number of history reads that degraded to an empty list",
			},
		),

		LookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lookups_total",
				Help: "Total number of lookups by kind and result",
			},
			[]string{"kind", "result"},
		),

		LookupFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lookup_fallbacks_total",
				Help: "Total number of domain lookups answered with synthetic data",
			},
		),

		StaleResponses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lookup_stale_responses_total",
				Help: "Total number of lookup completions discarded because a newer request was issued",
			},
			[]string{"kind"},
		),
	}
}
