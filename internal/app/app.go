// Package app wires the configured components into a runnable application.
// Both the HTTP server and the CLI are built from it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/evyataryagoni/netlookup/internal/config"
	"github.com/evyataryagoni/netlookup/internal/handler"
	"github.com/evyataryagoni/netlookup/internal/history"
	"github.com/evyataryagoni/netlookup/internal/logger"
	"github.com/evyataryagoni/netlookup/internal/metrics"
	"github.com/evyataryagoni/netlookup/internal/provider"
	"github.com/evyataryagoni/netlookup/internal/router"
	v1 "github.com/evyataryagoni/netlookup/internal/router/v1"
	"github.com/evyataryagoni/netlookup/internal/service"
	"github.com/evyataryagoni/netlookup/internal/store"
	"github.com/evyataryagoni/netlookup/internal/synthetic"
)

// App holds the long-lived components
type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Store   store.KVStore
	History *history.Store

	IP     *service.IPLookup
	Domain *service.DomainLookup
	MyIP   *service.MyIPLookup
}

// New builds the application from cfg. The caller must Close it.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.NewDefault()
	}

	policy, err := service.ParseFallbackPolicy(cfg.DomainFallbackPolicy)
	if err != nil {
		return nil, err
	}

	kv, err := store.NewStore(store.Config{
		Type:          cfg.DatastoreType,
		Path:          cfg.DatastorePath,
		MySQLDSN:      cfg.MySQLDSN,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history store: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	opts := provider.Options{
		APIKey:  cfg.APIKey,
		Timeout: cfg.UpstreamTimeout,
		Metrics: m,
		Logger:  log,
	}
	networkInfo := provider.NewNetworkInfoClient(cfg.IPLookupURL, opts)
	whois := provider.NewWhoisClient(cfg.DomainLookupURL, opts)

	// the self endpoint is a third-party service with its own key, if any
	selfOpts := opts
	selfOpts.APIKey = cfg.MyIPAPIKey
	self := provider.NewSelfClient(cfg.MyIPURL, selfOpts)

	generator := synthetic.New(synthetic.WithDelay(cfg.SyntheticDelay))

	hist := history.New(kv, m, log)

	log.Info().
		Str("datastore_type", cfg.DatastoreType).
		Str("domain_fallback_policy", string(policy)).
		Dur("upstream_timeout", cfg.UpstreamTimeout).
		Msg("Application initialized")

	return &App{
		Config:   cfg,
		Logger:   log,
		Registry: reg,
		Metrics:  m,
		Store:    kv,
		History:  hist,
		IP:       service.NewIPLookup(networkInfo, hist, m, log),
		Domain:   service.NewDomainLookup(whois, generator, policy, hist, m, log),
		MyIP:     service.NewMyIPLookup(self, networkInfo, m, log),
	}, nil
}

// Router returns the HTTP API for the application
func (a *App) Router() http.Handler {
	return router.SetupRouter(v1.Handlers{
		IP:      handler.NewIPHandler(a.IP),
		Domain:  handler.NewDomainHandler(a.Domain),
		MyIP:    handler.NewMyIPHandler(a.MyIP),
		History: handler.NewHistoryHandler(a.History),
	}, a.Metrics, a.Registry, a.Logger)
}

// Serve runs the HTTP API on addr until ctx ends, then shuts down gracefully
func (a *App) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the history store
func (a *App) Close() error {
	return a.Store.Close()
}
