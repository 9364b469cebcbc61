// Command alert-worker periodically synthesizes alerts and publishes the new
// ones to the broker.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"finalerts/internal/amqp"
	"finalerts/internal/cli"
	"finalerts/internal/log"
	"finalerts/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the alert worker")
		os.Exit(1)
	}

	res := cli.InitBackend(context.Background(), logger, cfg)
	defer res.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP))
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	alertWorker := worker.NewAlertWorker(
		cli.InitRefresher(logger, cfg, res, nil),
		amqpClient,
		worker.Options{
			Renderer: cli.InitRenderer(logger, cfg),
			Logger:   logger,
		},
	)

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	logger.Info("Starting alert worker",
		"backend", cfg.DataBackend,
		"interval", cfg.RefreshInterval,
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	if err := alertWorker.Run(ctx, cfg.RefreshInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Alert worker failed", log.FieldError, err)
	}

	cli.WaitForShutdown(ctx, done)
}
