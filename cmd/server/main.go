package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/evyataryagoni/netlookup/internal/app"
	"github.com/evyataryagoni/netlookup/internal/config"
	"github.com/evyataryagoni/netlookup/internal/logger"
)

func main() {
	// Load configuration
	appConfig := config.Load()

	appLogger := setupLogger(appConfig)

	application, err := app.New(appConfig, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startServer(ctx, application, appConfig, appLogger)
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:      appConfig.LogLevel,
		Pretty:     appConfig.LogPretty,
		OutputFile: appConfig.LogFile,
	})

	appLogger.Info().Msg("Starting netlookup server...")
	appLogger.Info().
		Str("port", appConfig.Port).
		Str("datastore_type", appConfig.DatastoreType).
		Str("datastore_path", appConfig.DatastorePath).
		Str("ip_lookup_url", appConfig.IPLookupURL).
		Str("domain_lookup_url", appConfig.DomainLookupURL).
		Str("my_ip_url", appConfig.MyIPURL).
		Msg("Configuration loaded")

	return appLogger
}

// startServer blocks until ctx ends or the server fails
func startServer(ctx context.Context, application *app.App, appConfig *config.Config, log *logger.Logger) {
	base := "http://localhost:" + appConfig.Port
	log.Info().
		Str("port", appConfig.Port).
		Str("ip_endpoint", base+"/v1/ip?ip=<ip>").
		Str("domain_endpoint", base+"/v1/domain?domain=<domain>").
		Str("health_check", base+"/health").
		Str("metrics", base+"/metrics").
		Msg("Server is running")

	if err := application.Serve(ctx, ":"+appConfig.Port); err != nil {
		log.Error().Err(err).Msg("Server failed")
		return
	}
	log.Info().Msg("Server stopped")
}
