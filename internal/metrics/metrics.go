// Package metrics exposes session and HTTP counters in the Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jrsteele09/go-qa-web/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "qaweb"

// Recorder owns a private registry so tests can build as many as they like
type Recorder struct {
	registry *prometheus.Registry

	sessionCalls    *prometheus.CounterVec
	sessionInFlight *prometheus.GaugeVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

var _ session.Observer = (*Recorder)(nil)

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sessionCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_calls_total",
			Help:      "Resolved login and refresh calls by outcome.",
		}, []string{"operation", "outcome"}),
		sessionInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_calls_in_flight",
			Help:      "Login and refresh calls waiting on the backend.",
		}, []string{"operation"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	r.registry.MustRegister(
		r.sessionCalls,
		r.sessionInFlight,
		r.httpRequests,
		r.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) Started(op session.Operation) {
	r.sessionInFlight.WithLabelValues(string(op)).Inc()
}

func (r *Recorder) Finished(op session.Operation, outcome session.Outcome) {
	r.sessionInFlight.WithLabelValues(string(op)).Dec()
	r.sessionCalls.WithLabelValues(string(op), string(outcome)).Inc()
}

// ObserveRequest records one served request
func (r *Recorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
