package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evyataryagoni/netlookup/internal/logger"
	"github.com/evyataryagoni/netlookup/internal/metrics"
	custommiddleware "github.com/evyataryagoni/netlookup/internal/middleware"
	v1 "github.com/evyataryagoni/netlookup/internal/router/v1"
)

// SetupRouter creates and configures the Chi router with all middleware and routes
//
// Parameters:
//   - handlers: the v1 API handlers
//   - m: metrics collector (nil disables HTTP metrics)
//   - gatherer: source for /metrics (nil uses the default registry)
//   - log: structured logger
func SetupRouter(handlers v1.Handlers, m *metrics.Metrics, gatherer prometheus.Gatherer, log *logger.Logger) chi.Router {
	r := chi.NewRouter()

	// Order matters! RequestID must run before logging
	r.Use(middleware.RequestID)                    // Add unique request ID to each request
	r.Use(middleware.RealIP)                       // Get real client IP (handles proxies/load balancers)
	r.Use(custommiddleware.LoggingMiddleware(log)) // Structured logging
	r.Use(middleware.Recoverer)                    // Recover from panics and return 500
	r.Use(custommiddleware.MetricsMiddleware(m))   // Collect Prometheus metrics

	// Mount v1 API routes under /v1 prefix
	r.Mount("/v1", v1.SetupRoutes(handlers))

	// Root-level routes (not versioned)
	r.Get("/health", healthCheckHandler)

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

// healthCheckHandler is a simple liveness endpoint
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
