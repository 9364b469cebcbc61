package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"finalerts/internal/log"
)

func TestExtractClientIP(t *testing.T) {
	d := NewDetector(log.Discard())

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"direct public peer ignores headers", "203.0.113.9:4000", "1.2.3.4", "", "203.0.113.9"},
		{"trusted proxy forwards first hop", "10.0.0.2:4000", "198.51.100.7, 10.0.0.3", "", "198.51.100.7"},
		{"trusted proxy with real ip", "127.0.0.1:4000", "", "198.51.100.8", "198.51.100.8"},
		{"garbage forwarded header", "192.168.1.1:80", "not-an-ip", "", "192.168.1.1"},
		{"no port", "203.0.113.10", "", "", "203.0.113.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, d.ExtractClientIP(r))
		})
	}
}

func TestAddTrustedProxy(t *testing.T) {
	d := NewDetector(log.Discard())
	assert.Error(t, d.AddTrustedProxy("nope"))
	assert.NoError(t, d.AddTrustedProxy("203.0.113.0/24"))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:1"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")
	assert.Equal(t, "198.51.100.1", d.ExtractClientIP(r))
}

func TestDetectorMiddleware(t *testing.T) {
	d := NewDetector(log.Discard())
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		method string
		target string
		agent  string
		want   int
	}{
		{"normal request", http.MethodGet, "/api/alerts", "curl/8.0", http.StatusNoContent},
		{"path traversal", http.MethodGet, "/api/../.env", "", http.StatusNotFound},
		{"query injection", http.MethodGet, "/api/alerts?q=union+select", "", http.StatusNotFound},
		{"scanner agent", http.MethodGet, "/", "sqlmap/1.7", http.StatusNotFound},
		{"trace method", "TRACE", "/", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.agent != "" {
				r.Header.Set("User-Agent", tt.agent)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, r)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
	assert.Equal(t, 4.0, testutil.ToFloat64(d.blocked))
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/alerts", nil))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))

	r := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
	r.TLS = &tls.ConnectionState{}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.Equal(t, "max-age=31536000; includeSubDomains", rr.Header().Get("Strict-Transport-Security"))
}
