// Package cli provides the initialization shared by the binaries under cmd/.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"finalerts/internal/alerts"
	"finalerts/internal/backend"
	"finalerts/internal/config"
	"finalerts/internal/log"
	"finalerts/internal/refresh"
)

// SetupLogger creates the process logger from LOG_LEVEL and installs it as
// the slog default.
func SetupLogger(component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: component,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitBackend creates the configured finance provider or exits.
func InitBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend)).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return res
}

// InitRenderer builds the alert renderer for the configured locale and
// currency, falling back to English and euros.
func InitRenderer(logger *log.Logger, cfg *config.Config) *alerts.Renderer {
	r, err := alerts.NewRendererFromCodes(cfg.Locale, cfg.Currency)
	if err != nil {
		logger.Warn("Invalid locale or currency, using defaults", log.FieldError, err)
		return alerts.DefaultRenderer
	}
	return r
}

// InitRefresher wires the refresh service to the provider, registering its
// metrics on reg when non-nil.
func InitRefresher(logger *log.Logger, cfg *config.Config, res *backend.BackendResult, reg prometheus.Registerer) *refresh.Service {
	var metrics *refresh.Metrics
	if reg != nil {
		metrics = refresh.NewMetrics(reg)
	}
	return refresh.New(res.Provider, refresh.Options{
		BillWindowDays: cfg.BillWindowDays,
		Timeout:        cfg.RefreshTimeout,
		Logger:         logger.WithComponent(log.ComponentRefresh),
		Metrics:        metrics,
	})
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. The
// cleanup function runs before cancellation and is bounded by timeout.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
