// Package metrics defines the Prometheus collectors exported on /metrics.
// A nil *Metrics is valid and records nothing, so tests can pass nil.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "event_catalog"

// Metrics holds every collector the service updates.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	eventWrites  *prometheus.CounterVec
	facetLookups *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// It panics if a collector is already registered, like prometheus.MustRegister.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		eventWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_writes_total",
			Help:      "Event lifecycle operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		facetLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "facet_cache_lookups_total",
			Help:      "Facet cache lookups by facet and result (hit, miss, error).",
		}, []string{"facet", "result"}),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.eventWrites, m.facetLookups)
	return m
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveWrite records the outcome of a lifecycle operation.
func (m *Metrics) ObserveWrite(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.eventWrites.WithLabelValues(op, outcome).Inc()
}

// ObserveFacet records a facet cache lookup. result is "hit", "miss" or "error".
func (m *Metrics) ObserveFacet(facet, result string) {
	if m == nil {
		return
	}
	m.facetLookups.WithLabelValues(facet, result).Inc()
}
