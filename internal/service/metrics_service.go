package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/claims-api/internal/models"
)

// Distance lookup outcomes reported on distance_lookups_total.
const (
	DistanceOutcomeResolved    = "resolved"
	DistanceOutcomeCached      = "cached"
	DistanceOutcomeUnavailable = "unavailable"
	DistanceOutcomeError       = "error"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic and the claim workflow.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	cacheLatency     prometheus.Observer
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	claimsSubmitted  *prometheus.CounterVec
	claimsProcessed  *prometheus.CounterVec
	processConflicts prometheus.Counter
	distanceLookups  *prometheus.CounterVec
}

// NewMetricsService registers the Prometheus collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	claimsSubmitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "claims_submitted_total",
		Help: "Claims accepted at submission, by claim type",
	}, []string{"type"})

	claimsProcessed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "claims_processed_total",
		Help: "Claims moved to a terminal status",
	}, []string{"status"})

	processConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "claim_process_conflicts_total",
		Help: "Processing attempts rejected because the claim was already processed",
	})

	distanceLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "distance_lookups_total",
		Help: "Geo distance lookups by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHits, cacheMisses,
		claimsSubmitted, claimsProcessed, processConflicts, distanceLookups, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		cacheLatency:     cacheLatency,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		claimsSubmitted:  claimsSubmitted,
		claimsProcessed:  claimsProcessed,
		processConflicts: processConflicts,
		distanceLookups:  distanceLookups,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
}

// ClaimSubmitted counts an accepted submission.
func (m *MetricsService) ClaimSubmitted(claimType models.ClaimType) {
	if m == nil {
		return
	}
	m.claimsSubmitted.WithLabelValues(string(claimType)).Inc()
}

// ClaimProcessed counts a successful transition.
func (m *MetricsService) ClaimProcessed(status models.ClaimStatus) {
	if m == nil {
		return
	}
	m.claimsProcessed.WithLabelValues(string(status)).Inc()
}

// ProcessConflict counts a lost processing race or a repeat attempt.
func (m *MetricsService) ProcessConflict() {
	if m == nil {
		return
	}
	m.processConflicts.Inc()
}

// DistanceLookup counts one geo lookup by outcome.
func (m *MetricsService) DistanceLookup(outcome string) {
	if m == nil {
		return
	}
	m.distanceLookups.WithLabelValues(outcome).Inc()
}
