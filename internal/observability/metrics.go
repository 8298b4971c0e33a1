// Package observability exposes Prometheus metrics for the analytics
// service. A nil *Metrics is valid and records nothing, so tests and tools
// can run without touching the default registry.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	uploadsTotal      *prometheus.CounterVec
	rejectedTotal     prometheus.Counter
	findingsTotal     *prometheus.CounterVec
	analysisDuration  prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		uploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uploads_total",
			Help: "Total CSV uploads processed, by device family.",
		}, []string{"device"}),
		rejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uploads_rejected_total",
			Help: "Uploads rejected by the data quality gate.",
		}),
		findingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "findings_total",
			Help: "Total clinical findings emitted, by rule.",
		}, []string{"rule"}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "Histogram of full analysis pass durations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}

	prometheus.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.uploadsTotal,
		m.rejectedTotal,
		m.findingsTotal,
		m.analysisDuration,
	)

	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		duration := time.Since(start).Seconds()
		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(duration)
		}
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) Upload(device string) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(device).Inc()
}

func (m *Metrics) UploadRejected() {
	if m == nil {
		return
	}
	m.rejectedTotal.Inc()
}

func (m *Metrics) Finding(rule string) {
	if m == nil {
		return
	}
	m.findingsTotal.WithLabelValues(rule).Inc()
}

func (m *Metrics) AnalysisDone(duration time.Duration) {
	if m == nil {
		return
	}
	m.analysisDuration.Observe(duration.Seconds())
}
