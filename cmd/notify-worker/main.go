// Command notify-worker consumes alert events and forwards them to the
// configured webhook and Slack channel.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"finalerts/internal/amqp"
	"finalerts/internal/cli"
	"finalerts/internal/log"
	"finalerts/internal/notify"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentNotify)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the notify worker")
		os.Exit(1)
	}

	var notifiers []notify.Notifier
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookSecret))
	}
	if cfg.SlackWebhook != "" {
		notifiers = append(notifiers, notify.NewSlackNotifier(cfg.SlackWebhook, cfg.SlackChannel))
	}
	if len(notifiers) == 0 {
		logger.Error("No notification target configured: set WEBHOOK_URL or SLACK_WEBHOOK_URL")
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP))
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	dispatcher := notify.NewDispatcher(logger, notifiers...)

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	logger.Info("Starting notify worker", "queue", cfg.AMQPQueue, "notifiers", len(notifiers))
	if err := amqpClient.ConsumeAlerts(ctx, dispatcher.Handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		amqpClient.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
