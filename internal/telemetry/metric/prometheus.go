// Package metric provides Prometheus metrics for the Ecoply client.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ecoply_client"

// Registry holds all client metrics.
//
// Helper methods are safe on a nil *Registry so components can take an
// optional registry without guarding every call.
type Registry struct {
	reg *prometheus.Registry

	// Session metrics
	SessionsOpened *prometheus.CounterVec
	SessionsClosed *prometheus.CounterVec

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ForcedLogouts   prometheus.Counter

	// Navigation metrics
	Navigations *prometheus.CounterVec
}

// NewRegistry creates a registry with every client metric registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		SessionsOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "opened_total",
			Help:      "Sessions opened, by method (login, register).",
		}, []string{"method"}),
		SessionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "closed_total",
			Help:      "Sessions closed, by reason (logout, expired).",
		}, []string{"reason"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Outgoing API requests, by method and status code.",
		}, []string{"method", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of outgoing API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		ForcedLogouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "unauthorized_responses_total",
			Help:      "Responses with status 401 that forced a logout.",
		}),
		Navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "navigations_total",
			Help:      "Navigation attempts, by outcome (proceed, redirect).",
		}, []string{"outcome"}),
	}

	r.reg.MustRegister(
		r.SessionsOpened,
		r.SessionsClosed,
		r.RequestsTotal,
		r.RequestDuration,
		r.ForcedLogouts,
		r.Navigations,
	)
	return r
}

// Register adds an extra collector to the registry.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.reg.Register(c)
}

// Gatherer exposes the underlying registry for export.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteFile writes all metrics to path in the Prometheus text format.
func (r *Registry) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}

// SessionOpened records a successful login or registration.
func (r *Registry) SessionOpened(method string) {
	if r == nil {
		return
	}
	r.SessionsOpened.WithLabelValues(method).Inc()
}

// SessionClosed records a session ending.
func (r *Registry) SessionClosed(reason string) {
	if r == nil {
		return
	}
	r.SessionsClosed.WithLabelValues(reason).Inc()
}

// ObserveRequest records one settled API request.
// code is the HTTP status, or "error" when no response was delivered.
func (r *Registry) ObserveRequest(method, code string, d time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, code).Inc()
	r.RequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ForcedLogout records a 401 that triggered the forced logout path.
func (r *Registry) ForcedLogout() {
	if r == nil {
		return
	}
	r.ForcedLogouts.Inc()
}

// Navigation records the outcome of a navigation attempt.
func (r *Registry) Navigation(outcome string) {
	if r == nil {
		return
	}
	r.Navigations.WithLabelValues(outcome).Inc()
}
