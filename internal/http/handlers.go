package http

import (
	"context"
	"net/http"
	"time"

	"salestats/internal/core"
	"salestats/internal/log"
)

const readyTimeout = 2 * time.Second

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w, r)
}

// handleReady pings the store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"store": "ok"}

	if s.store == nil {
		checks["store"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else if err := s.store.Ping(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w, r)
}

type seedResponse struct {
	Message  string `json:"message"`
	Inserted int    `json:"inserted"`
}

func (s *Server) handleInitializeDB(w http.ResponseWriter, r *http.Request) {
	res, err := s.seeder.Seed(r.Context())
	if err != nil {
		writeError(w, r, log.OpSeed, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Database seeded",
		log.NewFields().WithOperation(log.OpSeed).WithSeed(res.Source, res.Inserted).ToSlice()...)

	NewJSONResponse().Body(seedResponse{
		Message:  "Database initialized and data seeded",
		Inserted: res.Inserted,
	}).Write(w, r)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseListFilter(r.URL.Query(), s.defaultPerPage)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}

	page, err := s.stats.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	txs := page.Transactions
	if txs == nil {
		txs = []core.Transaction{}
	}

	NewJSONResponse().
		Pagination(page.Total, filter.TotalPages(page.Total)).
		Body(txs).
		Write(w, r)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	monthHandler(w, r, log.OpStatistics, s.stats.Statistics)
}

func (s *Server) handleBarChart(w http.ResponseWriter, r *http.Request) {
	monthHandler(w, r, log.OpBarChart, s.stats.BarChart)
}

func (s *Server) handlePieChart(w http.ResponseWriter, r *http.Request) {
	monthHandler(w, r, log.OpPieChart, s.stats.PieChart)
}

func (s *Server) handleCombined(w http.ResponseWriter, r *http.Request) {
	monthHandler(w, r, log.OpCombined, s.stats.Combined)
}

// monthHandler parses the required month and writes query(month) as JSON.
func monthHandler[T any](w http.ResponseWriter, r *http.Request, op string, query func(context.Context, int) (T, error)) {
	month, err := ParseMonth(r.URL.Query())
	if err != nil {
		writeError(w, r, op, err)
		return
	}
	result, err := query(r.Context(), month)
	if err != nil {
		writeError(w, r, op, err)
		return
	}
	NewJSONResponse().Body(result).Write(w, r)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Seed rate limit exceeded",
		log.FieldClientIP, extractClientIP(r),
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w, r)
}
