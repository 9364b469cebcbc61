// Package rest reads budgets and transactions from the finance backend's
// JSON API. Responses use the {"success","message","data"} envelope.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	cb "github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"finalerts/internal/core"
	"finalerts/internal/finance"
)

var _ finance.Provider = (*Client)(nil)

// ErrMissingBaseURL is returned by New when no base URL is configured.
var ErrMissingBaseURL = errors.New("missing REST base URL")

// StatusError reports a non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Message)
}

// APIError reports an envelope with success=false.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return "api error: " + e.Message
}

type Options struct {
	BaseURL       string
	Token         string
	RatePerSecond float64 // 0 disables the limiter
	HTTPClient    *http.Client
	// BreakerTimeout is how long the breaker stays open before probing.
	BreakerTimeout time.Duration
}

type Client struct {
	base    *url.URL
	token   string
	http    *http.Client
	limiter *rate.Limiter
	breaker *cb.CircuitBreaker
}

func New(opts Options) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if raw == "" {
		return nil, ErrMissingBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		burst := int(opts.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	timeout := opts.BreakerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	st := cb.Settings{Name: "finance-rest"}
	st.Interval = 60 * time.Second
	st.Timeout = timeout
	st.ReadyToTrip = func(counts cb.Counts) bool {
		return counts.ConsecutiveFailures >= 3
	}
	// Client errors say nothing about the backend's health.
	st.IsSuccessful = func(err error) bool {
		var se *StatusError
		if errors.As(err, &se) {
			return se.Code < 500
		}
		var ae *APIError
		return err == nil || errors.As(err, &ae)
	}

	return &Client{
		base:    base,
		token:   opts.Token,
		http:    httpClient,
		limiter: limiter,
		breaker: cb.NewCircuitBreaker(st),
	}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// get fetches path and decodes the envelope's data into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.do(ctx, path, out)
	})
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	u := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Code: resp.StatusCode}
		if decodeErr == nil {
			se.Message = env.Message
		}
		return se
	}
	if decodeErr != nil {
		return fmt.Errorf("decode envelope: %w", decodeErr)
	}
	if !env.Success {
		return &APIError{Message: env.Message}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// ListBudgets returns the budgets of the month. Spent comes from the backend.
func (c *Client) ListBudgets(ctx context.Context, year int, month int) ([]core.Budget, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month: %d", month)
	}
	var wire []budgetDTO
	if err := c.get(ctx, "/budgets", &wire); err != nil {
		return nil, err
	}
	out := make([]core.Budget, 0, len(wire))
	for _, w := range wire {
		b := w.toCore()
		if b.Month != month || b.Year != year {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// GetMonthlySummary totals the month's transactions.
func (c *Client) GetMonthlySummary(ctx context.Context, year int, month int) (core.MonthlySummary, error) {
	if month < 1 || month > 12 {
		return core.MonthlySummary{}, fmt.Errorf("invalid month: %d", month)
	}
	var wire []transactionDTO
	if err := c.get(ctx, "/transactions", &wire); err != nil {
		return core.MonthlySummary{}, err
	}
	txs := make([]core.Transaction, 0, len(wire))
	for _, w := range wire {
		t, err := w.toCore()
		if err != nil {
			// Undated rows cannot belong to any month.
			continue
		}
		txs = append(txs, t)
	}
	return core.Summarize(year, month, txs), nil
}

// ListUpcomingRecurring returns recurring expenses due in the window. The
// backend decides its own window; results are narrowed to [from, from+days].
// Bills whose due date cannot be read are returned after the dated ones.
func (c *Client) ListUpcomingRecurring(ctx context.Context, from core.Date, days int) ([]core.UpcomingBill, error) {
	if days < 0 {
		return nil, fmt.Errorf("invalid window: %d days", days)
	}
	var wire []transactionDTO
	if err := c.get(ctx, "/transactions/recurring/upcoming", &wire); err != nil {
		return nil, err
	}
	txs := make([]core.Transaction, 0, len(wire))
	var undated []core.UpcomingBill
	for _, w := range wire {
		// Only the next due date matters here.
		t, _ := w.toCore()
		t.Recurring = true
		if t.NextDueDate.IsEmpty() && t.Type == core.Expense {
			// Kept so the synthesizer reports it as malformed.
			undated = append(undated, core.UpcomingBill{ID: t.ID, Category: t.Category, Amount: t.Amount})
			continue
		}
		txs = append(txs, t)
	}
	return append(core.UpcomingBills(txs, from, days), undated...), nil
}
