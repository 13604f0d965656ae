package http

import (
	"context"
	"net/http"
	"time"

	"salestats/internal/core"
	"salestats/internal/log"
	"salestats/internal/middleware/ratelimit"
	"salestats/internal/middleware/trace"
	"salestats/internal/seed"
)

// StatsQuerier serves the read endpoints.
type StatsQuerier interface {
	List(ctx context.Context, f core.ListFilter) (core.TransactionPage, error)
	Statistics(ctx context.Context, month int) (core.MonthStatistics, error)
	BarChart(ctx context.Context, month int) (core.BarChart, error)
	PieChart(ctx context.Context, month int) (core.PieChart, error)
	Combined(ctx context.Context, month int) (core.Combined, error)
}

// Seeder runs the one-shot data import.
type Seeder interface {
	Seed(ctx context.Context) (seed.Result, error)
}

// Pinger reports store readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tunes the server. Zero values take defaults.
type Options struct {
	DefaultPerPage int
	SeedRateLimit  int
	Logger         *log.Logger
}

type Server struct {
	http.Server
	stats  StatsQuerier
	seeder Seeder
	store  Pinger
	logger *log.Logger

	defaultPerPage  int
	rateLimiter     *ratelimit.Limiter
	traceMiddleware *trace.Middleware
	started         time.Time
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, stats StatsQuerier, seeder Seeder, store Pinger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if opts.DefaultPerPage < 1 {
		opts.DefaultPerPage = core.DefaultPerPage
	}

	s := &Server{
		stats:          stats,
		seeder:         seeder,
		store:          store,
		logger:         logger.WithComponent(log.ComponentHTTP),
		defaultPerPage: opts.DefaultPerPage,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.SeedRateLimit,
		}),
		traceMiddleware: trace.NewMiddleware(logger, extractClientIP),
		started:         time.Now(),
	}

	limitSeed := s.rateLimiter.Middleware(extractClientIP, s.handleRateLimited)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /initialize_db", limitSeed(http.HandlerFunc(s.handleInitializeDB)))
	mux.HandleFunc("GET /transactions", s.handleTransactions)
	mux.HandleFunc("GET /statistics", s.handleStatistics)
	mux.HandleFunc("GET /barchart", s.handleBarChart)
	mux.HandleFunc("GET /piechart", s.handlePieChart)
	mux.HandleFunc("GET /combined", s.handleCombined)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// middleware wraps next so every handler finds a request-scoped logger
// tagged with the trace request ID.
func (s *Server) middleware(next http.Handler) http.Handler {
	withRequestID := log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})
	return log.Middleware(s.logger)(s.traceMiddleware.Middleware(withRequestID(next)))
}

// Shutdown stops the background limiter and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.Stop()
	return s.Server.Shutdown(ctx)
}
