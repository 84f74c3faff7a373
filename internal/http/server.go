package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "txdash/internal/log"
	"txdash/internal/middleware/ratelimit"
	"txdash/internal/middleware/security"
	"txdash/internal/middleware/trace"
	"txdash/internal/services"
	"txdash/internal/store"
)

// Dependencies are the collaborators the handlers call into.
type Dependencies struct {
	Queries *services.QueryService
	Seeder  *services.Seeder
	// SeedRequests is nil when messaging is disabled.
	SeedRequests SeedRequester
	Pinger       store.Pinger
	BackendName  string
}

// Options tune the HTTP surface.
type Options struct {
	RequestTimeout     time.Duration
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	TrustedProxies     []string
	Logger             *applog.Logger
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		RequestTimeout:     7 * time.Second,
		RateLimitPerMinute: 10,
		CORSAllowedOrigins: []string{"*"},
	}
}

type Server struct {
	http.Server

	queries      *services.QueryService
	seeder       *services.Seeder
	seedRequests SeedRequester
	pinger       store.Pinger
	backendName  string

	requestTimeout time.Duration
	startedAt      time.Time

	tracer   *trace.Middleware
	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// apiRoutes are served at the bare path and again under /api.
var apiRoutes = []string{
	"/transactions",
	"/statistics",
	"/bar-chart",
	"/pie-chart",
	"/combined-data",
	"/initialize",
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. Call Shutdown to stop it and its background work.
func NewServer(addr string, deps Dependencies, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.WithComponent(applog.ComponentSecurity).Warn("Ignoring invalid trusted proxy", "cidr", cidr, applog.FieldError, err.Error())
		}
	}

	s := &Server{
		queries:        deps.Queries,
		seeder:         deps.Seeder,
		seedRequests:   deps.SeedRequests,
		pinger:         deps.Pinger,
		backendName:    deps.BackendName,
		requestTimeout: opts.RequestTimeout,
		startedAt:      time.Now(),
		tracer:         trace.NewMiddleware(detector.ExtractClientIP, logger),
		limiter:        ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:       detector,
	}

	mux := http.NewServeMux()
	handlers := map[string]http.HandlerFunc{
		"/transactions":  s.handleTransactions,
		"/statistics":    s.handleStatistics,
		"/bar-chart":     s.handleBarChart,
		"/pie-chart":     s.handlePieChart,
		"/combined-data": s.handleCombined,
		"/initialize":    s.handleInitialize,
	}
	limited := s.limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError("rate limit exceeded, please try again later").Write(w)
	})

	for _, path := range apiRoutes {
		var h http.Handler = handlers[path]
		if path == "/initialize" {
			h = limited(h)
		}
		mux.Handle(path, h)
		mux.Handle("/api"+path, h)
	}
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/", s.handleNotFound)

	cors := security.DefaultCORSConfig()
	if len(opts.CORSAllowedOrigins) > 0 {
		cors.AllowedOrigins = opts.CORSAllowedOrigins
	}

	var handler http.Handler = mux
	handler = detector.Middleware(handler)
	handler = security.NewCORSMiddleware(cors).Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and the rate limiter cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func requestIDFrom(r *http.Request) string {
	return trace.GetRequestID(r.Context())
}
