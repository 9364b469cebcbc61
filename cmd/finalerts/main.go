package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"finalerts/internal/cli"
	apphttp "finalerts/internal/http"
	"finalerts/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	res := cli.InitBackend(context.Background(), logger, cfg)
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Refresher:   cli.InitRefresher(logger, cfg, res, reg),
		Renderer:    cli.InitRenderer(logger, cfg),
		Ready:       res.Ping,
		SessionTTL:  cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
		RateLimit:   cfg.RateLimit,
		Registry:    reg,
		Logger:      logger.WithComponent(log.ComponentHTTP),
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting finalerts server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
