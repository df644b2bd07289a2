package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"budgetbook/internal/core"
	applog "budgetbook/internal/log"
	"budgetbook/internal/middleware/ratelimit"
	"budgetbook/internal/middleware/security"
	"budgetbook/internal/middleware/trace"
)

const (
	banner       = "Budgetbook API"
	readyTimeout = 2 * time.Second
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the record services the API exposes.
type Services struct {
	Incomes  RecordService[core.Income]
	Expenses RecordService[core.Expense]
	Goals    RecordService[core.Goal]
}

// Options tune the middleware chain.
type Options struct {
	RateLimitPerMinute int
	CORSOrigins        []string
	TrustedProxies     []string
	Logger             *applog.Logger
}

type Server struct {
	http.Server
	services    Services
	store       Pinger
	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. Every record route is served at the root and under /api.
func NewServer(addr string, svcs Services, store Pinger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "cidr", cidr, "error", err)
		}
	}
	s := &Server{
		services:    svcs,
		store:       store,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:    detector,
		tracer:      trace.NewMiddleware(detector.ClientIP),
		started:     time.Now(),
	}

	limit := s.rateLimiter.Middleware(detector.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		logger.WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, detector.ClientIP(r),
			applog.FieldPath, r.URL.Path)
		TooManyRequestsError("rate limit exceeded, please try again later").Write(w)
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	for _, prefix := range []string{"", "/api"} {
		registerIncomeRoutes(mux, prefix, svcs.Incomes, limit)
		registerExpenseRoutes(mux, prefix, svcs.Expenses, limit)
		registerGoalRoutes(mux, prefix, svcs.Goals, limit)
	}

	cors := security.DefaultCORSConfig()
	if len(opts.CORSOrigins) > 0 {
		cors.AllowOrigins = opts.CORSOrigins
	}

	// outermost first
	chain := []func(http.Handler) http.Handler{
		s.tracer.Middleware,
		applog.Middleware(logger, trace.GetRequestID),
		detector.Middleware,
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
		security.CORS(cors),
	}
	var handler http.Handler = mux
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(banner))
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports 503 while the store cannot be reached.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		ErrorResponse(http.StatusServiceUnavailable, "store not configured").Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", "error", err)
		ErrorResponse(http.StatusServiceUnavailable, "store unavailable: "+err.Error()).Write(w)
		return
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
}
