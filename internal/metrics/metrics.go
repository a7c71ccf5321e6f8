// Package metrics exports doclink counters in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pagekeep/doclink/internal/cache"
)

// Metrics holds the Prometheus collectors for the doclink server.
type Metrics struct {
	registry *prometheus.Registry

	authzChecks       *prometheus.CounterVec
	authzCacheHits    prometheus.Counter
	authzCacheMisses  prometheus.Counter
	authzCacheHitRate prometheus.Gauge
	resolutions       *prometheus.CounterVec
	resolvedDocuments prometheus.Histogram
	triggerFirings    *prometheus.CounterVec
	eventsCommitted   *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New creates a Metrics with its own registry, including the standard Go
// and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(registry)
}

// NewWithRegistry creates a Metrics backed by the given registry.
func NewWithRegistry(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		authzChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doclink_authz_checks_total",
				Help: "Total number of authorization checks by decision",
			},
			[]string{"decision"},
		),
		authzCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "doclink_authz_cache_hits_total",
			Help: "Total number of cache hits for authorization checks",
		}),
		authzCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "doclink_authz_cache_misses_total",
			Help: "Total number of cache misses for authorization checks",
		}),
		authzCacheHitRate: factory.NewGauge(prometheus.GaugeOpts{
			Name: "doclink_authz_cache_hit_rate",
			Help: "Current authorization cache hit rate (0.0 to 1.0)",
		}),
		resolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doclink_smart_link_resolutions_total",
				Help: "Total number of smart link resolutions by outcome",
			},
			[]string{"outcome"},
		),
		resolvedDocuments: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "doclink_smart_link_resolved_documents",
			Help:    "Number of documents returned per smart link resolution",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
		triggerFirings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doclink_workflow_trigger_firings_total",
				Help: "Total number of workflow transitions fired by triggers",
			},
			[]string{"kind"},
		),
		eventsCommitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doclink_events_committed_total",
				Help: "Total number of committed events by type",
			},
			[]string{"type"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doclink_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "doclink_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
			},
			[]string{"method"},
		),
	}
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordAuthzCheck records an authorization decision.
func (m *Metrics) RecordAuthzCheck(allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	m.authzChecks.WithLabelValues(decision).Inc()
}

// RecordAuthzCacheHit records an authorization cache hit.
func (m *Metrics) RecordAuthzCacheHit() {
	m.authzCacheHits.Inc()
}

// RecordAuthzCacheMiss records an authorization cache miss.
func (m *Metrics) RecordAuthzCacheMiss() {
	m.authzCacheMisses.Inc()
}

// UpdateAuthzCache refreshes the cache gauge from cache statistics.
// Call periodically; counters are recorded at check time.
func (m *Metrics) UpdateAuthzCache(stats cache.Metrics) {
	m.authzCacheHitRate.Set(stats.HitRate())
}

// RecordResolution records a smart link resolution and its result size.
func (m *Metrics) RecordResolution(ok bool, documents int) {
	outcome := "error"
	if ok {
		outcome = "ok"
		m.resolvedDocuments.Observe(float64(documents))
	}
	m.resolutions.WithLabelValues(outcome).Inc()
}

// RecordTriggerFiring records a workflow transition fired by a trigger.
// kind is "time" or "event".
func (m *Metrics) RecordTriggerFiring(kind string) {
	m.triggerFirings.WithLabelValues(kind).Inc()
}

// RecordEvent records a committed event.
func (m *Metrics) RecordEvent(eventType string) {
	m.eventsCommitted.WithLabelValues(eventType).Inc()
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method string, status int) {
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// ObserveHTTPDuration records the duration of an HTTP request.
func (m *Metrics) ObserveHTTPDuration(method string, seconds float64) {
	m.httpDuration.WithLabelValues(method).Observe(seconds)
}
