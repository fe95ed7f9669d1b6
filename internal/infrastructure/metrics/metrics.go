// Package metrics provides client-side request metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricRequestsTotal          = "ifconnect_client_requests_total"
	MetricRequestDurationSeconds = "ifconnect_client_request_duration_seconds"
)

// Requests records per-operation API request outcomes.
//
// Thread Safety: safe for concurrent use.
type Requests struct {
	registry *prometheus.Registry

	requestsTotal          *prometheus.CounterVec
	requestDurationSeconds *prometheus.HistogramVec
}

// NewRequests creates the request metrics and registers them on a fresh
// registry.
func NewRequests() *Requests {
	r := &Requests{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRequestsTotal,
			Help: "Total API requests issued by the client.",
		}, []string{"method", "status"}),
		requestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricRequestDurationSeconds,
			Help:    "API request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}

	r.registry.MustRegister(r.requestsTotal, r.requestDurationSeconds)
	return r
}

// Observe records one settled request. A status of 0 means the request
// never produced a response (connectivity failure).
func (r *Requests) Observe(method string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	r.requestsTotal.WithLabelValues(method, label).Inc()
	r.requestDurationSeconds.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry for scraping or test gathering.
func (r *Requests) Registry() *prometheus.Registry {
	return r.registry
}
