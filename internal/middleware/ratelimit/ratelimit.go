// Package ratelimit limits requests per client with token buckets.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per client key.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	rejected     prometheus.Counter
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Config holds rate limiter configuration
type Config struct {
	// RequestsPerSecond is the sustained rate per client.
	RequestsPerSecond float64
	// Burst is the bucket size; defaults to twice the rate, at least 1.
	Burst int
	// IdleTTL is how long an idle client is remembered.
	IdleTTL         time.Duration
	CleanupInterval time.Duration
	// Registerer receives the rejection counter when set.
	Registerer prometheus.Registerer
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		IdleTTL:           10 * time.Minute,
		CleanupInterval:   5 * time.Minute,
	}
}

// NewLimiter creates a limiter and starts its cleanup goroutine. Call Stop
// to release it.
func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = def.RequestsPerSecond
	}
	if config.Burst <= 0 {
		config.Burst = max(1, int(2*config.RequestsPerSecond))
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = def.IdleTTL
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}

	rl := &Limiter{
		clients:     make(map[string]*clientInfo),
		limit:       rate.Limit(config.RequestsPerSecond),
		burst:       config.Burst,
		idleTTL:     config.IdleTTL,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "finalerts_http_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter.",
		}),
	}
	if config.Registerer != nil {
		config.Registerer.MustRegister(rl.rejected)
	}
	go rl.startCleanup(config.CleanupInterval)
	return rl
}

// Allow reports whether a request from key may proceed now.
func (rl *Limiter) Allow(key string) bool {
	rl.mu.Lock()
	now := rl.now()
	client, ok := rl.clients[key]
	if !ok {
		client = &clientInfo{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = client
	}
	client.lastSeen = now
	rl.mu.Unlock()

	if client.limiter.AllowN(now, 1) {
		return true
	}
	rl.rejected.Inc()
	return false
}

func (rl *Limiter) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries forgets clients idle for longer than idleTTL.
func (rl *Limiter) cleanupStaleEntries() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idleTTL)
	removed := 0
	for key, client := range rl.clients {
		if client.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
			removed++
		}
	}
	return removed
}

// ActiveClients returns the number of currently tracked clients
func (rl *Limiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *Limiter) Stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// header. onLimit, when set, writes the response instead.
func (rl *Limiter) Middleware(extractKey func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(max(1, int(1/float64(rl.limit))))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(extractKey(r)) {
				w.Header().Set("Retry-After", retryAfter)
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
