package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finalerts/internal/alerts"
	"finalerts/internal/core"
	"finalerts/internal/log"
	"finalerts/internal/refresh"
)

type fakeRefresher struct {
	mu     sync.Mutex
	alerts []alerts.Alert
	err    error
	calls  int
}

func (f *fakeRefresher) Refresh(context.Context) ([]alerts.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]alerts.Alert(nil), f.alerts...), nil
}

func (f *fakeRefresher) set(list []alerts.Alert, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts, f.err = list, err
}

func sampleAlerts() []alerts.Alert {
	return []alerts.Alert{
		{
			ID: "bill-1", Kind: alerts.KindBillUrgent, Severity: alerts.SeverityRed,
			Title: "Bill Due Soon!", TimeLabel: alerts.LabelToday,
			Message: alerts.Message{Category: "Rent", Amount: core.Money{Cents: 50000}},
		},
		{
			ID: "budget-over-2", Kind: alerts.KindBudgetExceeded, Severity: alerts.SeverityRed,
			Title: "Budget Exceeded", TimeLabel: alerts.LabelRecently,
			Message: alerts.Message{Category: "Food", Overage: core.Money{Cents: 2550}, Percent: 110},
		},
	}
}

// client replays the session cookie between requests.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func (c *client) do(method, target string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "203.0.113.5:1234"
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	if set := rr.Result().Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func newTestServer(t *testing.T, ref Refresher, opts Options) *Server {
	t.Helper()
	opts.Refresher = ref
	opts.Registry = prometheus.NewRegistry()
	opts.Logger = log.Discard()
	s := NewServer(":0", opts)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func TestListAlerts(t *testing.T) {
	ref := &fakeRefresher{alerts: sampleAlerts()}
	s := newTestServer(t, ref, Options{})
	c := &client{t: t, handler: s.Handler}

	rr := c.do(http.MethodGet, "/api/alerts")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))

	body := decode[alertsResponse](t, rr)
	require.Len(t, body.Alerts, 2)
	assert.Equal(t, 2, body.Unread)
	assert.False(t, body.Stale)
	assert.Equal(t, "bill-1", body.Alerts[0].ID)
	assert.Equal(t, "Rent payment of €500.00 is due today", body.Alerts[0].Message)
	assert.Equal(t, "500.00", body.Alerts[0].Details["amount"])

	require.Len(t, c.cookies, 1)
	ck := c.cookies[0]
	assert.Equal(t, SessionCookie, ck.Name)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
}

func TestListAlertsEmpty(t *testing.T) {
	s := newTestServer(t, &fakeRefresher{}, Options{})
	rr := (&client{t: t, handler: s.Handler}).do(http.MethodGet, "/api/alerts")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"alerts":[]`)
}

func TestReadAndDeleteFlow(t *testing.T) {
	ref := &fakeRefresher{alerts: sampleAlerts()}
	s := newTestServer(t, ref, Options{})
	c := &client{t: t, handler: s.Handler}

	c.do(http.MethodGet, "/api/alerts")

	rr := c.do(http.MethodPost, "/api/alerts/bill-1/read")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decode[unreadResponse](t, rr).Unread)

	rr = c.do(http.MethodGet, "/api/alerts/unread-count")
	assert.Equal(t, 1, decode[unreadResponse](t, rr).Unread)

	// read state survives a refresh
	body := decode[alertsResponse](t, c.do(http.MethodGet, "/api/alerts"))
	assert.True(t, body.Alerts[0].Read)
	assert.Equal(t, 1, body.Unread)

	rr = c.do(http.MethodDelete, "/api/alerts/budget-over-2")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decode[unreadResponse](t, rr).Unread)

	body = decode[alertsResponse](t, c.do(http.MethodGet, "/api/alerts"))
	require.Len(t, body.Alerts, 1)
	assert.Equal(t, "bill-1", body.Alerts[0].ID)
}

func TestMarkAllRead(t *testing.T) {
	s := newTestServer(t, &fakeRefresher{alerts: sampleAlerts()}, Options{})
	c := &client{t: t, handler: s.Handler}
	c.do(http.MethodGet, "/api/alerts")

	rr := c.do(http.MethodPost, "/api/alerts/read-all")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decode[unreadResponse](t, rr).Unread)
}

func TestUnknownAndInvalidIDs(t *testing.T) {
	s := newTestServer(t, &fakeRefresher{alerts: sampleAlerts()}, Options{})
	c := &client{t: t, handler: s.Handler}
	c.do(http.MethodGet, "/api/alerts")

	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"read unknown", http.MethodPost, "/api/alerts/bill-99/read", http.StatusNotFound},
		{"delete unknown", http.MethodDelete, "/api/alerts/bill-99", http.StatusNotFound},
		{"read invalid", http.MethodPost, "/api/alerts/Bill_1/read", http.StatusBadRequest},
		{"delete invalid", http.MethodDelete, "/api/alerts/" + strings.Repeat("a", 80), http.StatusBadRequest},
		{"wrong method", http.MethodPut, "/api/alerts/bill-1", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.do(tt.method, tt.target).Code)
		})
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	s := newTestServer(t, &fakeRefresher{alerts: sampleAlerts()}, Options{})
	a := &client{t: t, handler: s.Handler}
	b := &client{t: t, handler: s.Handler}

	a.do(http.MethodGet, "/api/alerts")
	b.do(http.MethodGet, "/api/alerts")
	a.do(http.MethodPost, "/api/alerts/read-all")

	assert.Equal(t, 0, decode[unreadResponse](t, a.do(http.MethodGet, "/api/alerts/unread-count")).Unread)
	assert.Equal(t, 2, decode[unreadResponse](t, b.do(http.MethodGet, "/api/alerts/unread-count")).Unread)
	assert.NotEqual(t, a.cookies[0].Value, b.cookies[0].Value)
}

func TestForgedSessionCookieIsReplaced(t *testing.T) {
	s := newTestServer(t, &fakeRefresher{}, Options{})
	c := &client{t: t, handler: s.Handler, cookies: []*http.Cookie{{Name: SessionCookie, Value: "not-a-uuid"}}}

	c.do(http.MethodGet, "/api/alerts/unread-count")
	require.Len(t, c.cookies, 1)
	assert.NotEqual(t, "not-a-uuid", c.cookies[0].Value)
}

func TestListAlertsFetchErrorReturnsStale(t *testing.T) {
	ref := &fakeRefresher{alerts: sampleAlerts()}
	s := newTestServer(t, ref, Options{})
	c := &client{t: t, handler: s.Handler}

	c.do(http.MethodGet, "/api/alerts")
	c.do(http.MethodPost, "/api/alerts/bill-1/read")

	ref.set(nil, &refresh.DataFetchError{Source: refresh.SourceBills, Err: errors.New("connection refused")})
	rr := c.do(http.MethodGet, "/api/alerts")
	require.Equal(t, http.StatusBadGateway, rr.Code)

	body := decode[alertsResponse](t, rr)
	assert.True(t, body.Stale)
	assert.Equal(t, "failed to load bills", body.Error)
	require.Len(t, body.Alerts, 2)
	assert.Equal(t, 1, body.Unread)
}

func TestListAlertsOtherError(t *testing.T) {
	ref := &fakeRefresher{err: context.DeadlineExceeded}
	s := newTestServer(t, ref, Options{})
	rr := (&client{t: t, handler: s.Handler}).do(http.MethodGet, "/api/alerts")

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decode[alertsResponse](t, rr)
	assert.True(t, body.Stale)
	assert.Empty(t, body.Alerts)
}

func TestHealthAndReady(t *testing.T) {
	var readyErr error
	s := newTestServer(t, &fakeRefresher{}, Options{
		Ready: func(context.Context) error { return readyErr },
	})
	c := &client{t: t, handler: s.Handler}

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz").Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/readyz").Code)

	readyErr = errors.New("database is locked")
	rr := c.do(http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "database is locked")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeRefresher{alerts: sampleAlerts()}, Options{})
	c := &client{t: t, handler: s.Handler}
	c.do(http.MethodGet, "/api/alerts")

	rr := c.do(http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "finalerts_http_sessions 1")
	assert.Contains(t, rr.Body.String(), `finalerts_http_requests_total{code="200",route="GET /api/alerts"} 1`)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, &fakeRefresher{}, Options{RateLimit: 1})
	c := &client{t: t, handler: s.Handler}

	// burst of two
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz").Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz").Code)
	rr := c.do(http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Body.String(), "rate limit exceeded")
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	s := newTestServer(t, &fakeRefresher{}, Options{})
	rr := (&client{t: t, handler: s.Handler}).do(http.MethodGet, "/healthz")

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestValidAlertID(t *testing.T) {
	tests := map[string]bool{
		"bill-12":               true,
		"spending-summary":      true,
		"budget-warning-3":      true,
		"":                      false,
		"-bill":                 false,
		"bill 1":                false,
		"../etc":                false,
		strings.Repeat("a", 65): false,
	}
	for id, want := range tests {
		assert.Equal(t, want, validAlertID(id), id)
	}
}
