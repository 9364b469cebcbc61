// Package worker runs the background alert refresh loop.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"finalerts/internal/alerts"
	"finalerts/internal/amqp"
	"finalerts/internal/log"
)

// Refresher produces the current alert list.
type Refresher interface {
	Refresh(ctx context.Context) ([]alerts.Alert, error)
}

// Publisher sends one alert event downstream.
type Publisher interface {
	PublishAlert(ctx context.Context, event *amqp.AlertEvent) error
}

// AlertWorker refreshes alerts periodically and publishes the ones it has
// not seen before. An alert is published again when its kind escalates
// (bill_due to bill_urgent) or after it disappears and comes back.
type AlertWorker struct {
	refresher Refresher
	publisher Publisher
	renderer  *alerts.Renderer
	now       func() time.Time
	logger    *log.Logger
	events    *log.StructuredLogger

	mu   sync.Mutex
	seen map[string]alerts.Kind
}

type Options struct {
	Renderer *alerts.Renderer
	Now      func() time.Time
	Logger   *log.Logger
}

func NewAlertWorker(refresher Refresher, publisher Publisher, opts Options) *AlertWorker {
	w := &AlertWorker{
		refresher: refresher,
		publisher: publisher,
		renderer:  opts.Renderer,
		now:       opts.Now,
		logger:    opts.Logger,
		seen:      make(map[string]alerts.Kind),
	}
	if w.renderer == nil {
		w.renderer = alerts.DefaultRenderer
	}
	if w.now == nil {
		w.now = time.Now
	}
	if w.logger == nil {
		w.logger = log.New(log.Config{Component: log.ComponentWorker})
	}
	w.events = log.NewStructuredLogger(w.logger)
	return w
}

// RunOnce refreshes and publishes new alerts. Alerts whose publish fails
// stay unseen and are retried on the next run.
func (w *AlertWorker) RunOnce(ctx context.Context) (int, error) {
	list, err := w.refresher.Refresh(ctx)
	if err != nil {
		return 0, fmt.Errorf("refresh alerts: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	current := make(map[string]struct{}, len(list))
	var (
		published int
		errs      []error
	)
	for _, a := range list {
		current[a.ID] = struct{}{}
		if kind, ok := w.seen[a.ID]; ok && kind == a.Kind {
			continue
		}
		event := amqp.NewAlertEvent(a, w.renderer, w.now())
		if err := w.publisher.PublishAlert(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", a.ID, err))
			continue
		}
		w.seen[a.ID] = a.Kind
		w.events.LogAlertPublished(ctx, a.ID, string(a.Kind), string(a.Severity))
		published++
	}
	for id := range w.seen {
		if _, ok := current[id]; !ok {
			delete(w.seen, id)
		}
	}
	return published, errors.Join(errs...)
}

// Run calls RunOnce immediately and then on every tick until ctx is done.
func (w *AlertWorker) Run(ctx context.Context, interval time.Duration) error {
	w.runAndLog(ctx, "Initial alert refresh")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Alert worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			w.runAndLog(ctx, "Periodic alert refresh")
		}
	}
}

func (w *AlertWorker) runAndLog(ctx context.Context, msg string) {
	count, err := w.RunOnce(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, msg+" failed", log.FieldError, err, "published", count)
		return
	}
	w.logger.InfoContext(ctx, msg+" complete", "published", count)
}
