package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"txdash/internal/core"
	applog "txdash/internal/log"
	"txdash/internal/services"
)

// SeedRequester queues a seed run for a worker and returns its request ID.
type SeedRequester interface {
	PublishSeedRequested(ctx context.Context, source string) (string, error)
}

// withTimeout bounds a handler's store work by the configured request
// timeout.
func (s *Server) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	if s.requestTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.requestTimeout)
}

// handleTransactions serves one page of the month's matching transactions.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	params, err := ParseSearchParams(r.URL.Query())
	if err != nil {
		s.writeError(w, r, applog.OpSearch, err)
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()

	page, q, err := s.queries.Search(ctx, params)
	if err != nil {
		s.writeError(w, r, applog.OpSearch, err)
		return
	}

	applog.FromContext(ctx).DebugContext(ctx, "Search completed",
		applog.NewFields().WithSearch(q.Text, q.Page, q.PageSize, page.Total).
			WithMonth(q.Month.String(), 0).ToSlice()...)

	NewJSONResponse().JSON(toSearchResponse(page, q)).Write(w)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	month, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		s.writeError(w, r, applog.OpStatistics, err)
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()

	stats, err := s.queries.Statistics(ctx, month.Month, month.Year)
	if err != nil {
		s.writeError(w, r, applog.OpStatistics, err)
		return
	}
	NewJSONResponse().JSON(toStatisticsResponse(stats)).Write(w)
}

func (s *Server) handleBarChart(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	month, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		s.writeError(w, r, applog.OpBarChart, err)
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()

	buckets, err := s.queries.PriceHistogram(ctx, month.Month, month.Year)
	if err != nil {
		s.writeError(w, r, applog.OpBarChart, err)
		return
	}
	NewJSONResponse().JSON(toBarChart(buckets)).Write(w)
}

func (s *Server) handlePieChart(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	month, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		s.writeError(w, r, applog.OpPieChart, err)
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()

	categories, err := s.queries.CategoryBreakdown(ctx, month.Month, month.Year)
	if err != nil {
		s.writeError(w, r, applog.OpPieChart, err)
		return
	}
	NewJSONResponse().JSON(toPieChart(categories)).Write(w)
}

// handleCombined serves statistics and both charts for one month.
func (s *Server) handleCombined(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	month, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		s.writeError(w, r, applog.OpCombined, err)
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()

	dashboard, err := s.queries.Combined(ctx, month.Month, month.Year)
	if err != nil {
		s.writeError(w, r, applog.OpCombined, err)
		return
	}
	NewJSONResponse().JSON(toCombinedResponse(dashboard)).Write(w)
}

// handleInitialize replaces the store contents with the seed dataset. With
// async=true the load is queued for a worker instead.
func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()

	if parseBool(r.URL.Query().Get("async")) {
		if s.seedRequests == nil {
			s.writeError(w, r, applog.OpSeed, core.ErrQueueUnavailable)
			return
		}
		requestID, err := s.seedRequests.PublishSeedRequested(ctx, s.seeder.Source())
		if err != nil {
			s.writeError(w, r, applog.OpSeed, err)
			return
		}
		applog.FromContext(ctx).InfoContext(ctx, "Seed request queued",
			applog.FieldSeedSource, s.seeder.Source(), "seed_request_id", requestID)
		NewJSONResponse().
			Status(http.StatusAccepted).
			JSON(seedQueuedResponse{Message: "Database initialization queued", RequestID: requestID}).
			Write(w)
		return
	}

	result, err := s.seeder.Run(ctx, services.SeedRequest{ID: requestIDFrom(r)})
	if err != nil {
		s.writeError(w, r, applog.OpSeed, err)
		return
	}
	NewJSONResponse().
		JSON(initializeResponse{Message: "Database initialized with seed data", Count: result.Count}).
		Write(w)
}

// handleHealth performs a basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]any{
		"requests": s.tracer.GetMetrics(),
		"security": s.detector.GetMetrics(),
	}
	if s.limiter != nil {
		metrics["rate_limit"] = s.limiter.GetMetrics()
	}

	NewJSONResponse().JSON(healthResponse{
		Status:  "ok",
		Uptime:  time.Since(s.startedAt).Round(time.Second).String(),
		Backend: s.backendName,
		Metrics: metrics,
	}).Write(w)
}

// handleReady reports whether the store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if s.pinger != nil {
		if err := s.pinger.Ping(ctx); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err.Error())
			NewJSONResponse().
				Status(http.StatusServiceUnavailable).
				JSON(healthResponse{Status: "not_ready", Backend: s.backendName}).
				Write(w)
			return
		}
	}
	NewJSONResponse().JSON(healthResponse{
		Status:  "ready",
		Uptime:  time.Since(s.startedAt).Round(time.Second).String(),
		Backend: s.backendName,
	}).Write(w)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	NotFoundError("route not found").Write(w)
}

// writeError logs err and writes the matching error response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	resp := ErrorFromErr(err)
	fields := applog.NewFields().
		WithOperation(op).
		WithError(err).
		WithErrorType(errorType(err))

	logger := applog.FromContext(ctx)
	if resp.StatusCode() >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "Request failed", fields.ToSlice()...)
	} else {
		logger.WarnContext(ctx, "Request rejected", fields.ToSlice()...)
	}
	resp.Write(w)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidParameter):
		return applog.ErrorTypeValidation
	case errors.Is(err, core.ErrUpstreamFetch):
		return applog.ErrorTypeUpstream
	case errors.Is(err, core.ErrQueueUnavailable):
		return applog.ErrorTypeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return applog.ErrorTypeTimeout
	default:
		return applog.ErrorTypeInternal
	}
}
