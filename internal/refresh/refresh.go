// Package refresh fetches budgets, the monthly summary and upcoming bills
// concurrently and turns them into alerts.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"finalerts/internal/alerts"
	"finalerts/internal/core"
	"finalerts/internal/finance"
	"finalerts/internal/log"
)

// Fetch sources reported in DataFetchError.
const (
	SourceBudgets = "budgets"
	SourceSummary = "summary"
	SourceBills   = "bills"
)

// DataFetchError reports the first fetch that failed during a refresh. No
// alerts are produced when it is returned.
type DataFetchError struct {
	Source string
	Err    error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *DataFetchError) Unwrap() error {
	return e.Err
}

type Options struct {
	// BillWindowDays is how far ahead bills are listed. Defaults to
	// core.DefaultBillWindowDays.
	BillWindowDays int
	// Timeout bounds the whole fan-out. Zero means no limit beyond ctx.
	Timeout time.Duration
	// Now is the clock; defaults to time.Now.
	Now     func() time.Time
	Logger  *log.Logger
	Metrics *Metrics
}

type Service struct {
	provider finance.Provider
	window   int
	timeout  time.Duration
	now      func() time.Time
	logger   *log.StructuredLogger
	metrics  *Metrics
}

func New(provider finance.Provider, opts Options) *Service {
	s := &Service{
		provider: provider,
		window:   opts.BillWindowDays,
		timeout:  opts.Timeout,
		now:      opts.Now,
		metrics:  opts.Metrics,
	}
	if s.window <= 0 {
		s.window = core.DefaultBillWindowDays
	}
	if s.now == nil {
		s.now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentRefresh})
	}
	s.logger = log.NewStructuredLogger(logger)
	return s
}

// Refresh fetches the three inputs in parallel and synthesizes alerts for
// the current month. If any fetch fails the others are cancelled and a
// *DataFetchError is returned.
func (s *Service) Refresh(ctx context.Context) ([]alerts.Alert, error) {
	res, err := s.RefreshResult(ctx)
	if err != nil {
		return nil, err
	}
	return res.Alerts, nil
}

// RefreshResult is Refresh that also returns the skipped records.
func (s *Service) RefreshResult(ctx context.Context) (alerts.Result, error) {
	start := time.Now()
	res, err := s.refresh(ctx)
	if s.metrics != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		s.metrics.Duration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}
	return res, err
}

func (s *Service) refresh(ctx context.Context) (alerts.Result, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	now := s.now()
	today := core.DateOf(now)
	year, month := today.Year(), today.Month()

	var (
		budgets []core.Budget
		summary core.MonthlySummary
		bills   []core.UpcomingBill
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if budgets, err = s.provider.ListBudgets(gctx, year, month); err != nil {
			return s.fetchError(SourceBudgets, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if summary, err = s.provider.GetMonthlySummary(gctx, year, month); err != nil {
			return s.fetchError(SourceSummary, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if bills, err = s.provider.ListUpcomingRecurring(gctx, today, s.window); err != nil {
			return s.fetchError(SourceBills, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		fields := log.NewFields().WithPeriod(year, month)
		var fe *DataFetchError
		if errors.As(err, &fe) {
			fields = fields.WithSource(fe.Source)
			if s.metrics != nil {
				s.metrics.FetchErrors.WithLabelValues(fe.Source).Inc()
			}
		}
		s.logger.LogError(ctx, "Finance data fetch failed", err, log.OpRefresh, fields)
		return alerts.Result{}, err
	}

	res := alerts.Synthesize(budgets, summary, bills, now)
	for _, skipped := range res.Skipped {
		s.logger.LogSkippedRecord(ctx, skipped.Record, skipped.ID, skipped.Err)
		if s.metrics != nil {
			s.metrics.SkippedRecord.WithLabelValues(skipped.Record).Inc()
		}
	}
	if s.metrics != nil {
		for _, a := range res.Alerts {
			s.metrics.Alerts.WithLabelValues(string(a.Kind)).Inc()
		}
	}
	return res, nil
}

func (s *Service) fetchError(source string, err error) error {
	return &DataFetchError{Source: source, Err: err}
}
