// Package metrics exposes Prometheus instruments for upstream calls, fetch
// generations, auth events and start-up gates.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gamescope"

// Recorder is nil-safe: every method is a no-op on a nil receiver so
// components can run without metrics in tests.
type Recorder struct {
	registry        *prometheus.Registry
	upstreamCalls   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	staleResponses  *prometheus.CounterVec
	authEvents      *prometheus.CounterVec
	gateAttempts    *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		upstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by service, endpoint and outcome.",
		}, []string{"service", "endpoint", "status"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "endpoint"}),
		staleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_discarded_total",
			Help:      "Catalog responses dropped because a newer fetch had started.",
		}, []string{"view"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Auth state change events by type.",
		}, []string{"event"}),
		gateAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_gate_attempts_total",
			Help:      "Configuration gate probes by gate and result.",
		}, []string{"gate", "result"}),
	}
	reg.MustRegister(
		r.upstreamCalls,
		r.upstreamLatency,
		r.staleResponses,
		r.authEvents,
		r.gateAttempts,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return r
}

// RecordUpstream counts one upstream call. status is the HTTP status code, or
// 0 when the request failed before a response arrived.
func (r *Recorder) RecordUpstream(service, endpoint string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	r.upstreamCalls.WithLabelValues(service, endpoint, label).Inc()
	r.upstreamLatency.WithLabelValues(service, endpoint).Observe(duration.Seconds())
}

func (r *Recorder) RecordStale(view string) {
	if r == nil {
		return
	}
	r.staleResponses.WithLabelValues(view).Inc()
}

func (r *Recorder) RecordAuthEvent(event string) {
	if r == nil {
		return
	}
	r.authEvents.WithLabelValues(event).Inc()
}

func (r *Recorder) RecordGateAttempt(gate string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "unavailable"
	}
	r.gateAttempts.WithLabelValues(gate, result).Inc()
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
