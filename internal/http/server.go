// Package http serves the alert API: one alert store per browser session,
// refreshed from the finance backend on every list request.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"finalerts/internal/alerts"
	"finalerts/internal/cache"
	"finalerts/internal/log"
	"finalerts/internal/middleware/ratelimit"
	"finalerts/internal/middleware/security"
	"finalerts/internal/middleware/trace"
)

const (
	defaultSessionTTL  = 24 * time.Hour
	defaultMaxSessions = 1000
	cleanupInterval    = 10 * time.Minute
	readyTimeout       = 2 * time.Second
)

// Refresher produces the current alert list.
type Refresher interface {
	Refresh(ctx context.Context) ([]alerts.Alert, error)
}

type Options struct {
	Refresher Refresher
	// Renderer formats alert messages; defaults to alerts.DefaultRenderer.
	Renderer *alerts.Renderer
	// Ready backs /readyz. Nil means always ready.
	Ready       func(ctx context.Context) error
	SessionTTL  time.Duration
	MaxSessions int
	// RateLimit is requests per second per client; zero disables limiting.
	RateLimit float64
	// Registry receives the server's metrics and is served on /metrics.
	// Nil uses the default prometheus registry.
	Registry *prometheus.Registry
	Logger   *log.Logger
}

type Server struct {
	http.Server
	refresher  Refresher
	renderer   *alerts.Renderer
	ready      func(ctx context.Context) error
	logger     *log.Logger
	sessionTTL time.Duration

	sessions    *cache.LRUCache[*alerts.Store]
	caches      *cache.Manager
	rateLimiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. Call Shutdown to stop its background cleanup.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentHTTP})
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = alerts.DefaultRenderer
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	maxSessions := opts.MaxSessions
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}

	var reg prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if opts.Registry != nil {
		reg, gatherer = opts.Registry, opts.Registry
	}

	s := &Server{
		refresher:  opts.Refresher,
		renderer:   renderer,
		ready:      opts.Ready,
		logger:     logger,
		sessionTTL: ttl,
		sessions: cache.NewLRUCache(cache.Options[*alerts.Store]{
			MaxSize: maxSessions,
			TTL:     ttl,
			OnEvict: func(key string, _ *alerts.Store) {
				logger.Debug("Session evicted", log.FieldSessionID, key)
			},
		}),
		caches: cache.NewManager(logger.WithComponent(log.ComponentCache)),
	}
	s.caches.Register(s.sessions)
	s.caches.StartCleanup(context.Background(), cleanupInterval)

	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "finalerts_http_sessions",
		Help: "Alert sessions currently held in memory.",
	}, func() float64 { return float64(s.sessions.Size()) }))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/alerts", s.handleListAlerts)
	mux.HandleFunc("GET /api/alerts/unread-count", s.handleUnreadCount)
	mux.HandleFunc("POST /api/alerts/read-all", s.handleMarkAllRead)
	mux.HandleFunc("POST /api/alerts/{id}/read", s.handleMarkRead)
	mux.HandleFunc("DELETE /api/alerts/{id}", s.handleDeleteAlert)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	detector := security.NewDetector(logger.WithComponent(log.ComponentSecurity))
	detector.Register(reg)

	var handler http.Handler = mux
	if opts.RateLimit > 0 {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerSecond: opts.RateLimit,
			Registerer:        reg,
		})
		handler = s.rateLimiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w, r)
		})(handler)
	}
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = detector.Middleware(handler)
	handler = trace.NewMiddleware(logger, detector.ExtractClientIP, trace.NewMetrics(reg)).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w, r)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			NewJSONResponse().
				Status(http.StatusServiceUnavailable).
				Body(map[string]string{"status": "unavailable", "error": err.Error()}).
				Write(w, r)
			return
		}
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w, r)
}
