package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic, the view cache and attendance workflows.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	rosterEntries   prometheus.Counter
	amendments      prometheus.Counter
	aggFailures     *prometheus.CounterVec
	aggDuration     *prometheus.HistogramVec

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status", "role"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status", "role"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	rosterEntries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_roster_entries_total",
		Help: "Attendance entries written through roster submissions",
	})

	amendments := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_amendments_total",
		Help: "Attendance records amended by id",
	})

	aggFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_aggregation_failures_total",
		Help: "Per-entry failures inside attendance aggregation fan-outs",
	}, []string{"view"})

	aggDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "attendance_aggregation_duration_seconds",
		Help:    "Time spent computing an attendance view",
		Buckets: prometheus.DefBuckets,
	}, []string{"view"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		rosterEntries, amendments, aggFailures, aggDuration, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		rosterEntries:   rosterEntries,
		amendments:      amendments,
		aggFailures:     aggFailures,
		aggDuration:     aggDuration,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// ObserveHTTPRequest records request metrics. role is the caller's portal role,
// or "anonymous" on public routes.
func (m *MetricsService) ObserveHTTPRequest(method, path, role string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus, role).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus, role).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// AddRosterEntries counts entries persisted by a roster submission.
func (m *MetricsService) AddRosterEntries(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rosterEntries.Add(float64(n))
}

// IncAmendment counts a successful amendment.
func (m *MetricsService) IncAmendment() {
	if m == nil {
		return
	}
	m.amendments.Inc()
}

// IncAggregationFailure counts a dropped or failed fan-out entry for view.
func (m *MetricsService) IncAggregationFailure(view string) {
	if m == nil {
		return
	}
	m.aggFailures.WithLabelValues(view).Inc()
}

// ObserveAggregation records how long view took to compute.
func (m *MetricsService) ObserveAggregation(view string, duration time.Duration) {
	if m == nil {
		return
	}
	m.aggDuration.WithLabelValues(view).Observe(duration.Seconds())
}
