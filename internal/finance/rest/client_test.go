package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	cb "github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finalerts/internal/core"
)

const budgetsJSON = `{"success":true,"message":"ok","data":[
  {"id":1,"category":"Food","amount":500.00,"spentAmount":420.5,"alertThreshold":75,"month":6,"year":2025},
  {"id":2,"category":"Fun","amount":"100","spent":120,"month":6,"year":2025},
  {"id":3,"category":"Old","amount":100,"spentAmount":10,"month":5,"year":2025}
]}`

const transactionsJSON = `{"success":true,"message":"ok","data":[
  {"id":10,"type":"INCOME","category":"Salary","amount":3000,"transactionDate":"2025-06-01"},
  {"id":11,"type":"EXPENSE","category":"Food","amount":42.25,"date":"2025-06-03"},
  {"id":12,"type":"EXPENSE","category":"Food","amount":99,"transactionDate":"2025-05-30"},
  {"id":13,"type":"EXPENSE","category":"Food","amount":5}
]}`

const upcomingJSON = `{"success":true,"message":"ok","data":[
  {"id":20,"type":"EXPENSE","category":"Rent","amount":900,"transactionDate":"2025-01-12","isRecurring":true,"recurringFrequency":"MONTHLY","nextDueDate":"2025-06-12"},
  {"id":21,"type":"EXPENSE","category":"Gym","amount":30,"isRecurring":true,"recurringFrequency":"MONTHLY","nextDueDate":"2025-06-20"},
  {"id":22,"type":"EXPENSE","category":"Water","amount":40,"isRecurring":true,"recurringFrequency":"MONTHLY","nextDueDate":"12/06/2025"},
  {"id":23,"type":"INCOME","category":"Salary","amount":3000,"isRecurring":true,"recurringFrequency":"MONTHLY"}
]}`

func newBackend(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	mux := http.NewServeMux()
	auth := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			if r.Header.Get("Authorization") != "Bearer secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"success":false,"message":"unauthorized"}`))
				return
			}
			h(w, r)
		}
	}
	write := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}
	}
	mux.HandleFunc("/api/budgets", auth(write(budgetsJSON)))
	mux.HandleFunc("/api/transactions", auth(write(transactionsJSON)))
	mux.HandleFunc("/api/transactions/recurring/upcoming", auth(write(upcomingJSON)))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClientReadsBackend(t *testing.T) {
	srv, _ := newBackend(t)
	c, err := New(Options{BaseURL: srv.URL + "/api/", Token: "secret", RatePerSecond: 100})
	require.NoError(t, err)
	ctx := context.Background()

	budgets, err := c.ListBudgets(ctx, 2025, 6)
	require.NoError(t, err)
	require.Len(t, budgets, 2)
	assert.Equal(t, int64(50000), budgets[0].Amount.Cents)
	assert.Equal(t, int64(42050), budgets[0].Spent.Cents)
	assert.Equal(t, 75, budgets[0].Threshold())
	assert.Equal(t, int64(12000), budgets[1].Spent.Cents, "legacy spent field")
	assert.Nil(t, budgets[1].AlertThreshold)

	sum, err := c.GetMonthlySummary(ctx, 2025, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(300000), sum.TotalIncome.Cents)
	assert.Equal(t, int64(4225), sum.TotalExpenses.Cents)

	bills, err := c.ListUpcomingRecurring(ctx, core.NewDate(2025, 6, 10), 3)
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, int64(20), bills[0].ID)
	assert.Equal(t, core.NewDate(2025, 6, 12), bills[0].NextDueDate)
	assert.Equal(t, int64(22), bills[1].ID, "unreadable due date is kept")
	assert.True(t, bills[1].NextDueDate.IsEmpty())
	assert.ErrorIs(t, bills[1].Validate(), core.ErrInvalidDueDate)
}

func TestClientStatusError(t *testing.T) {
	srv, _ := newBackend(t)
	c, err := New(Options{BaseURL: srv.URL + "/api", Token: "wrong"})
	require.NoError(t, err)

	_, err = c.ListBudgets(context.Background(), 2025, 6)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Equal(t, "unauthorized", se.Message)
}

func TestClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"budget service down"}`))
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.GetMonthlySummary(context.Background(), 2025, 6)
	var ae *APIError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "budget service down", ae.Message)
}

func TestClientBreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := c.ListBudgets(ctx, 2025, 6)
		require.Error(t, err)
	}
	_, err = c.ListBudgets(ctx, 2025, 6)
	assert.ErrorIs(t, err, cb.ErrOpenState)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientBreakerIgnoresClientErrors(t *testing.T) {
	srv, calls := newBackend(t)
	c, err := New(Options{BaseURL: srv.URL + "/api"})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := c.ListBudgets(context.Background(), 2025, 6)
		var se *StatusError
		require.True(t, errors.As(err, &se))
	}
	assert.Equal(t, int32(5), calls.Load())
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, ErrMissingBaseURL)
}
