// Package notify delivers alert events to external channels.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"finalerts/internal/amqp"
	"finalerts/internal/log"
)

const defaultTimeout = 10 * time.Second

// Notifier sends one alert event to a destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, event *amqp.AlertEvent) error
}

// Dispatcher fans an event out to every notifier. One failing notifier does
// not stop the others; their errors are joined.
type Dispatcher struct {
	notifiers []Notifier
	logger    *log.Logger
}

func NewDispatcher(logger *log.Logger, notifiers ...Notifier) *Dispatcher {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentNotify})
	}
	return &Dispatcher{notifiers: notifiers, logger: logger}
}

// Handle matches amqp.AlertHandler so a dispatcher can be consumed directly.
func (d *Dispatcher) Handle(ctx context.Context, event *amqp.AlertEvent) error {
	var errs []error
	for _, n := range d.notifiers {
		if err := n.Send(ctx, event); err != nil {
			d.logger.ErrorContext(ctx, "Notification failed",
				"notifier", n.Name(), log.FieldAlertID, event.ID, log.FieldError, err, log.FieldOperation, log.OpNotify)
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
			continue
		}
		d.logger.InfoContext(ctx, "Notification sent",
			"notifier", n.Name(), log.FieldAlertID, event.ID, log.FieldSeverity, event.Severity)
	}
	return errors.Join(errs...)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
