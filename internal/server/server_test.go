package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/propvisor/propvisor-cli/internal/property"
	"github.com/propvisor/propvisor-cli/internal/session"
	"github.com/propvisor/propvisor-cli/pkg/logging"
	"github.com/propvisor/propvisor-cli/pkg/metrics"
)

const sampleCSV = `Address,Latitude,Longitude,Price,Sale Date,Sqft,Property Type
1 Main St,40.0,-75.0,500000,2024-01-15,1000,House
2 Oak Ave,,-75.1,600000,2024-02-10,1200,Condo
3 Elm Rd,40.2,-75.2,700000,2024-02-20,1500,House
`

type stubSummarizer struct {
	summary string
	err     error
	// onCall lets a test race a dataset replacement against the request.
	onCall func()
}

func (s *stubSummarizer) Summarize(ctx context.Context, csvData string) (string, error) {
	if s.onCall != nil {
		s.onCall()
	}
	return s.summary, s.err
}

func newTestServer(t *testing.T, sum Summarizer) *Server {
	t.Helper()
	logger := logging.New("test", logging.ErrorLevel)
	logger.SetOutput(io.Discard)
	collector := metrics.NewCollector("propvisor_test", prometheus.NewRegistry())
	if sum == nil {
		sum = &stubSummarizer{summary: "stub narrative"}
	}
	return New(sum, logger, collector, time.Second)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return out
}

func TestUploadDataset(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodPost, "/api/v1/dataset", sampleCSV)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := decode[UploadResponse](t, rec)
	if got.Loaded != 2 || got.Rejected != 1 || got.Rows != 3 {
		t.Errorf("upload response = %+v", got)
	}
}

func TestUploadFailureKeepsDataset(t *testing.T) {
	s := newTestServer(t, nil)
	doRequest(t, s, http.MethodPost, "/api/v1/dataset", sampleCSV)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/dataset", "not,a\nvalid")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	errResp := decode[ErrorResponse](t, rec)
	if errResp.Error != "no valid rows" {
		t.Errorf("error = %q, want the ParseError message verbatim", errResp.Error)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/view", "")
	view := decode[session.View](t, rec)
	if view.TotalRecords != 2 {
		t.Errorf("prior dataset lost: TotalRecords = %d", view.TotalRecords)
	}
}

func TestGetViewEmptySession(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/view", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	view := decode[session.View](t, rec)
	if view.TotalRecords != 0 {
		t.Errorf("TotalRecords = %d", view.TotalRecords)
	}
	if view.Bounds.MaxPrice != 10_000_000 {
		t.Errorf("fallback bounds = %+v", view.Bounds)
	}
}

func TestSetFilters(t *testing.T) {
	s := newTestServer(t, nil)
	doRequest(t, s, http.MethodPost, "/api/v1/dataset", sampleCSV)

	f := property.Filters{
		PriceRange:   [2]int{600000, 700000},
		SqftRange:    [2]int{0, 10000},
		PropertyType: "all",
	}
	body, _ := json.Marshal(f)
	rec := doRequest(t, s, http.MethodPut, "/api/v1/filters", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	view := decode[session.View](t, rec)
	if len(view.Records) != 1 || view.Records[0].Address != "3 Elm Rd" {
		t.Errorf("filtered view = %+v", view.Records)
	}
	if view.TotalRecords != 2 {
		t.Errorf("TotalRecords = %d, want unfiltered count", view.TotalRecords)
	}
}

func TestSetFiltersRejectsUnordered(t *testing.T) {
	s := newTestServer(t, nil)
	doRequest(t, s, http.MethodPost, "/api/v1/dataset", sampleCSV)

	body := `{"priceRange":[700000,500000],"sqftRange":[0,10000],"propertyType":"all"}`
	rec := doRequest(t, s, http.MethodPut, "/api/v1/filters", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSummaryFlow(t *testing.T) {
	s := newTestServer(t, &stubSummarizer{summary: "two sales, prices rising"})
	doRequest(t, s, http.MethodPost, "/api/v1/dataset", sampleCSV)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := decode[SummaryResponse](t, rec)
	if got.Summary != "two sales, prices rising" {
		t.Errorf("summary = %q", got.Summary)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/summary", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET summary status = %d", rec.Code)
	}
}

func TestSummaryWithoutDataset(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodPost, "/api/v1/summary", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestSummaryUpstreamFailure(t *testing.T) {
	s := newTestServer(t, &stubSummarizer{err: errors.New("provider error: status=503")})
	doRequest(t, s, http.MethodPost, "/api/v1/dataset", sampleCSV)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/summary", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	// A failed summary request never disturbs the dataset.
	view := decode[session.View](t, doRequest(t, s, http.MethodGet, "/api/v1/view", ""))
	if view.TotalRecords != 2 {
		t.Errorf("dataset changed after summary failure")
	}
}

func TestSummaryStaleAfterReplacement(t *testing.T) {
	var srv *Server
	stub := &stubSummarizer{summary: "describes the old dataset"}
	stub.onCall = func() {
		// Replace the dataset while the summary request is in flight.
		doRequest(t, srv, http.MethodPost, "/api/v1/dataset", sampleCSV)
	}
	srv = newTestServer(t, stub)
	doRequest(t, srv, http.MethodPost, "/api/v1/dataset", sampleCSV)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/summary", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 for stale summary", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/api/v1/summary", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("stale summary was stored: status = %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("ok")) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
