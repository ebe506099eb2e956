// Package api serves the startup collection, run history and status as JSON.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/venture-watch/internal/metrics"
	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/internal/monitoring"
	"github.com/sells-group/venture-watch/internal/store"
)

const (
	defaultRunLimit = 50
	maxRunLimit     = 500
)

// Collection reads the current collection.
type Collection interface {
	Read() []model.Record
}

// Status produces a monitoring snapshot.
type Status interface {
	Collect(ctx context.Context, lookbackHours int) (*monitoring.MetricsSnapshot, error)
}

// Server holds the API dependencies. Runs and Status may be nil; their
// endpoints then return 503.
type Server struct {
	collection    Collection
	runs          store.Store
	status        Status
	lookbackHours int
	corsOrigins   []string
	now           func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithRuns enables the run history and benchmark endpoints.
func WithRuns(st store.Store) Option {
	return func(s *Server) { s.runs = st }
}

// WithStatus enables the status endpoint.
func WithStatus(st Status, lookbackHours int) Option {
	return func(s *Server) {
		s.status = st
		s.lookbackHours = lookbackHours
	}
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithClock overrides the time source used for period filters.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer creates a server over the collection.
func NewServer(c Collection, opts ...Option) *Server {
	s := &Server{
		collection:    c,
		lookbackHours: 24,
		corsOrigins:   []string{"*"},
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/startups", s.handleStartups)
		r.Get("/startups/{name}", s.handleStartup)
		r.Get("/stats", s.handleStats)
		r.Get("/facets", s.handleFacets)
		r.Get("/export", s.handleExport)
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleRun)
		r.Get("/benchmarks/latest", s.handleLatestBenchmark)
		r.Get("/status", s.handleStatus)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusServiceUnavailable, "run store not configured")
		return
	}
	q := r.URL.Query()
	filter := store.RunFilter{
		Status:  model.RunStatus(q.Get("status")),
		Trigger: model.Trigger(q.Get("trigger")),
		Limit:   defaultRunLimit,
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = min(n, maxRunLimit)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = n
	}

	runs, err := s.runs.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusServiceUnavailable, "run store not configured")
		return
	}
	run, err := s.runs.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleLatestBenchmark(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusServiceUnavailable, "run store not configured")
		return
	}
	b, err := s.runs.LatestBenchmark(r.Context())
	if err != nil {
		zap.L().Error("api: latest benchmark", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load benchmark")
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, "no benchmark recorded")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.status == nil {
		writeError(w, http.StatusServiceUnavailable, "monitoring not configured")
		return
	}
	snap, err := s.status.Collect(r.Context(), s.lookbackHours)
	if err != nil {
		zap.L().Error("api: collect status", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to collect status")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
