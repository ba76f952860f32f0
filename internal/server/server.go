// Package server exposes the analysis session over HTTP so a browser
// dashboard can drive uploads, filters, derived views, and AI summaries.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/propvisor/propvisor-cli/internal/session"
	"github.com/propvisor/propvisor-cli/pkg/logging"
	"github.com/propvisor/propvisor-cli/pkg/metrics"
)

// Summarizer is the narrow capability the server needs from the AI client;
// tests substitute a stub.
type Summarizer interface {
	Summarize(ctx context.Context, csvData string) (summary string, err error)
}

// Server wires the session, the summary requester, and observability into
// one HTTP API.
type Server struct {
	session    *session.Session
	summarizer Summarizer
	logger     *logging.Logger
	metrics    *metrics.Collector
	router     *mux.Router

	// summaryTimeout bounds one summary request so a handler cannot hang
	// on the upstream indefinitely.
	summaryTimeout time.Duration
}

// New creates a server around an empty session.
func New(summarizer Summarizer, logger *logging.Logger, collector *metrics.Collector, summaryTimeout time.Duration) *Server {
	if summaryTimeout <= 0 {
		summaryTimeout = 60 * time.Second
	}
	s := &Server{
		session:        session.New(),
		summarizer:     summarizer,
		logger:         logger,
		metrics:        collector,
		summaryTimeout: summaryTimeout,
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestMiddleware)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/dataset", s.handleUploadDataset).Methods(http.MethodPost)
	api.HandleFunc("/view", s.handleGetView).Methods(http.MethodGet)
	api.HandleFunc("/filters", s.handleSetFilters).Methods(http.MethodPut)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodPost)
	api.HandleFunc("/summary", s.handleGetSummary).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// statusRecorder captures the response code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithRequestID(r.Context(), uuid.NewString())
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(ctx))

		duration := time.Since(start)
		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tmpl
			}
		}
		s.metrics.ObserveAPIRequest(endpoint, r.Method, strconv.Itoa(rec.status), duration)
		s.logger.Info(ctx, "request handled", logging.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": duration.Milliseconds(),
		})
	})
}

// Run starts the server and blocks until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info(ctx, "dashboard API listening", logging.Fields{"addr": addr})

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
