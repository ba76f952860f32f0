package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/propvisor/propvisor-cli/internal/ingest"
	"github.com/propvisor/propvisor-cli/internal/property"
	"github.com/propvisor/propvisor-cli/pkg/logging"
)

// maxUploadBytes bounds one CSV upload; datasets are in-memory only.
const maxUploadBytes = 32 << 20

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// UploadResponse reports the outcome of a successful dataset upload.
type UploadResponse struct {
	Loaded   int `json:"loaded"`
	Rejected int `json:"rejected"`
	Rows     int `json:"rows"`
}

// SummaryResponse carries the AI narrative for the current dataset.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) sendError(w http.ResponseWriter, status int, msg string) {
	s.sendJSON(w, status, ErrorResponse{Error: msg, Code: status})
}

// handleUploadDataset handles POST /api/v1/dataset. The body is raw CSV
// text; on failure the previously loaded dataset is kept.
func (s *Server) handleUploadDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "read request body: "+err.Error())
		return
	}
	res, err := s.session.Load(string(body))
	s.metrics.IngestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		reason := "malformed"
		if errors.Is(err, ingest.ErrNoValidRows) {
			reason = "no_valid_rows"
		}
		s.metrics.IngestFailuresTotal.WithLabelValues(reason).Inc()
		s.logger.Warn(ctx, "dataset upload failed", logging.Fields{"reason": err.Error()})
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.metrics.IngestRecordsTotal.Add(float64(len(res.Records)))
	s.metrics.IngestRejectsTotal.Add(float64(len(res.Rejected)))
	s.logger.Info(ctx, "dataset loaded", logging.Fields{
		"records":  len(res.Records),
		"rejected": len(res.Rejected),
		"rows":     res.RowCount,
	})
	s.sendJSON(w, http.StatusOK, UploadResponse{
		Loaded:   len(res.Records),
		Rejected: len(res.Rejected),
		Rows:     res.RowCount,
	})
}

// handleGetView handles GET /api/v1/view: the freshly recomputed derived
// view for the current dataset and filters.
func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, s.session.View())
}

// handleSetFilters handles PUT /api/v1/filters.
func (s *Server) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	var f property.Filters
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		s.sendError(w, http.StatusBadRequest, "decode filters: "+err.Error())
		return
	}
	if err := s.session.SetFilters(f); err != nil {
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.sendJSON(w, http.StatusOK, s.session.View())
}

// handleSummary handles POST /api/v1/summary: requests an AI narrative for
// the currently loaded raw CSV. The response is tagged with the dataset
// generation taken before the call; if the dataset was replaced while the
// request was in flight the result is discarded and reported as a conflict.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rawText, generation := s.session.RawText()
	if rawText == "" {
		s.sendError(w, http.StatusConflict, "no dataset loaded")
		return
	}

	start := time.Now()
	reqCtx, cancel := context.WithTimeout(ctx, s.summaryTimeout)
	defer cancel()
	summary, err := s.summarizer.Summarize(reqCtx, rawText)
	s.metrics.SummaryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.SummaryRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Error(ctx, "summary request failed", nil, err)
		s.sendError(w, http.StatusBadGateway, err.Error())
		return
	}
	if err := s.session.AcceptSummary(generation, summary); err != nil {
		s.metrics.SummaryRequestsTotal.WithLabelValues("stale").Inc()
		s.sendError(w, http.StatusConflict, err.Error())
		return
	}
	s.metrics.SummaryRequestsTotal.WithLabelValues("ok").Inc()
	s.sendJSON(w, http.StatusOK, SummaryResponse{Summary: summary})
}

// handleGetSummary handles GET /api/v1/summary: the last accepted summary.
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	summary := s.session.Summary()
	if summary == "" {
		s.sendError(w, http.StatusNotFound, "no summary generated yet")
		return
	}
	s.sendJSON(w, http.StatusOK, SummaryResponse{Summary: summary})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
