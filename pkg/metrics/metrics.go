package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection
type Collector struct {
	// API Metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec

	// Ingestion Metrics
	IngestRecordsTotal  prometheus.Counter
	IngestRejectsTotal  prometheus.Counter
	IngestFailuresTotal *prometheus.CounterVec
	IngestDuration      prometheus.Histogram

	// Summary Metrics
	SummaryRequestsTotal *prometheus.CounterVec
	SummaryDuration      prometheus.Histogram
}

// NewCollector creates a new metrics collector registered on the given
// registerer (pass a fresh registry in tests).
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),
		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"endpoint"},
		),
		IngestRecordsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_records_total",
				Help:      "Total number of valid records loaded from uploads",
			},
		),
		IngestRejectsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_rejects_total",
				Help:      "Total number of rows dropped during normalization",
			},
		),
		IngestFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_failures_total",
				Help:      "Total number of failed uploads by reason",
			},
			[]string{"reason"},
		),
		IngestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ingest_duration_seconds",
				Help:      "Time spent parsing and normalizing one upload",
				Buckets:   prometheus.DefBuckets,
			},
		),
		SummaryRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "summary_requests_total",
				Help:      "Total number of AI summary requests by outcome",
			},
			[]string{"outcome"},
		),
		SummaryDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "summary_duration_seconds",
				Help:      "End-to-end AI summary request duration",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
	}
}

// ObserveAPIRequest records one handled API request.
func (c *Collector) ObserveAPIRequest(endpoint, method, status string, d time.Duration) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
	c.APIRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}
