// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"bias-scan/internal/detector"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AnalysisLatencyBuckets are latency buckets for one Analyze call in seconds
var AnalysisLatencyBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1.0}

// HTTPLatencyBuckets are latency buckets for full HTTP request/response cycle
var HTTPLatencyBuckets = []float64{0.01, 0.025, 0.05, 0.075, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0}

// Metrics holds the Prometheus collectors. Each instance owns its registry
// so tests and multiple servers never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	AnalysesTotal       *prometheus.CounterVec
	FindingsTotal       *prometheus.CounterVec
	AnalysisLatency     *prometheus.HistogramVec
	ErrorsTotal         *prometheus.CounterVec
	InFlightRequests    prometheus.Gauge
	HTTPRequestDuration *prometheus.HistogramVec
	RateLimitedTotal    prometheus.Counter
}

// NewMetrics creates and registers every collector
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bias_scan_analyses_total",
				Help: "Total analyses by overall risk",
			},
			[]string{"risk"},
		),
		FindingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bias_scan_findings_total",
				Help: "Total findings by category and severity",
			},
			[]string{"category", "severity"},
		),
		AnalysisLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bias_scan_analysis_duration_seconds",
				Help:    "Extraction plus analysis latency in seconds",
				Buckets: AnalysisLatencyBuckets,
			},
			[]string{"source"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bias_scan_errors_total",
				Help: "Failed scans by error type",
			},
			[]string{"type"},
		),
		InFlightRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bias_scan_in_flight_requests",
				Help: "Number of in-flight HTTP requests",
			},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bias_scan_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds (full request/response cycle)",
				Buckets: HTTPLatencyBuckets,
			},
			[]string{"method", "route", "status_code"},
		),
		RateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bias_scan_rate_limited_total",
				Help: "Requests rejected by the rate limiter",
			},
		),
	}

	m.registry.MustRegister(
		m.AnalysesTotal,
		m.FindingsTotal,
		m.AnalysisLatency,
		m.ErrorsTotal,
		m.InFlightRequests,
		m.HTTPRequestDuration,
		m.RateLimitedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Pre-initialize labels so the series are exposed at zero
	for _, sev := range []detector.Severity{detector.SeverityNone, detector.SeverityLow, detector.SeverityMedium, detector.SeverityHigh} {
		m.AnalysesTotal.WithLabelValues(sev.String())
	}
	m.InFlightRequests.Set(0)

	return m
}

// Registry exposes the registry for tests and custom collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordAnalysis counts one analysis and its findings
func (m *Metrics) RecordAnalysis(source string, d time.Duration, a detector.TextAnalysis) {
	if source == "" {
		source = "unknown"
	}
	m.AnalysesTotal.WithLabelValues(a.OverallRisk.String()).Inc()
	for _, f := range a.Findings {
		m.FindingsTotal.WithLabelValues(string(f.Category), f.Severity.String()).Inc()
	}
	m.AnalysisLatency.WithLabelValues(source).Observe(d.Seconds())
}

// RecordError counts a failed scan
func (m *Metrics) RecordError(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// Handler returns an http.Handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware tracks request duration and in-flight requests. route should
// be the pattern, not the raw path, to bound label cardinality.
func (m *Metrics) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.InFlightRequests.Inc()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		defer func() {
			m.InFlightRequests.Dec()
			m.HTTPRequestDuration.WithLabelValues(
				r.Method,
				route,
				strconv.Itoa(wrapped.statusCode),
			).Observe(time.Since(start).Seconds())
		}()

		next.ServeHTTP(wrapped, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
