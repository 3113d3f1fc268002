package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	evaluationsSubmitted prometheus.Counter
	evaluationFailures   *prometheus.CounterVec
	activityEventsTotal  *prometheus.CounterVec
	reportCacheLookups   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evalink_http_requests_total",
			Help: "Total number of HTTP requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "evalink_http_latency_seconds",
			Help:    "Latency distribution for HTTP requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		evaluationsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evalink_evaluations_submitted_total",
			Help: "Evaluations committed with their answers.",
		})

		evaluationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evalink_evaluation_submit_failures_total",
			Help: "Rejected or failed evaluation submissions by reason.",
		}, []string{"reason"})

		activityEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evalink_activity_events_total",
			Help: "Activity events handled by the dispatcher by outcome.",
		}, []string{"outcome"})

		reportCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evalink_report_cache_lookups_total",
			Help: "Evaluation report cache lookups by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			evaluationsSubmitted,
			evaluationFailures,
			activityEventsTotal,
			reportCacheLookups,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// EvaluationsSubmitted exposes the committed evaluation counter.
func EvaluationsSubmitted() prometheus.Counter {
	RegisterMetrics()
	return evaluationsSubmitted
}

// EvaluationFailures exposes the failed submission counter.
func EvaluationFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationFailures
}

// ActivityEvents exposes the dispatcher outcome counter.
func ActivityEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return activityEventsTotal
}

// ReportCacheLookups exposes the report cache hit/miss counter.
func ReportCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return reportCacheLookups
}

// MetricsHandler exposes the Prometheus scrape endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}
