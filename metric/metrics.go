// Package metric provides optional Prometheus instrumentation for the
// stream session SDK. A nil *Metrics disables all recording, so callers
// never need to guard call sites.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Connection path labels.
const (
	PathNew       = "new"
	PathReconnect = "reconnect"
)

// Reconnect trigger labels.
const (
	TriggerClose    = "close"
	TriggerGraceful = "graceful"
	TriggerOffline  = "offline"
)

// Metrics holds the SDK-level metrics.
type Metrics struct {
	ConnectAttempts   *prometheus.CounterVec
	ConnectFailures   *prometheus.CounterVec
	Reconnects        *prometheus.CounterVec
	FramesReceived    prometheus.Counter
	DepthCarried      prometheus.Counter
	TokenRefreshes    *prometheus.CounterVec
	FirstFrameSeconds prometheus.Histogram
}

// NewMetrics creates the metric set. Register it with a Registry (or any
// prometheus.Registerer) before use.
func NewMetrics() *Metrics {
	return &Metrics{
		ConnectAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vertex",
				Subsystem: "stream",
				Name:      "connect_attempts_total",
				Help:      "Total connection attempts by path (new or reconnect)",
			},
			[]string{"path"},
		),
		ConnectFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vertex",
				Subsystem: "stream",
				Name:      "connect_failures_total",
				Help:      "Total failed connection attempts by path and error kind",
			},
			[]string{"path", "kind"},
		),
		Reconnects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vertex",
				Subsystem: "stream",
				Name:      "reconnects_total",
				Help:      "Total reconnect attempts by trigger (close, graceful, offline)",
			},
			[]string{"trigger"},
		),
		FramesReceived: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "vertex",
				Subsystem: "stream",
				Name:      "frames_received_total",
				Help:      "Total rendered frames received",
			},
		),
		DepthCarried: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "vertex",
				Subsystem: "stream",
				Name:      "frames_depth_carried_total",
				Help:      "Total frames whose depth buffer was carried forward from the previous frame",
			},
		),
		TokenRefreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vertex",
				Subsystem: "stream",
				Name:      "token_refreshes_total",
				Help:      "Total token refresh attempts by outcome",
			},
			[]string{"outcome"},
		),
		FirstFrameSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "vertex",
				Subsystem: "stream",
				Name:      "first_frame_seconds",
				Help:      "Time from load to first rendered frame",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),
	}
}

// collectors returns every collector in registration order.
func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ConnectAttempts,
		m.ConnectFailures,
		m.Reconnects,
		m.FramesReceived,
		m.DepthCarried,
		m.TokenRefreshes,
		m.FirstFrameSeconds,
	}
}

// IncConnectAttempt records one connection attempt for path.
func (m *Metrics) IncConnectAttempt(path string) {
	if m == nil {
		return
	}
	m.ConnectAttempts.WithLabelValues(path).Inc()
}

// IncConnectFailure records one failed connection attempt.
func (m *Metrics) IncConnectFailure(path, kind string) {
	if m == nil {
		return
	}
	m.ConnectFailures.WithLabelValues(path, kind).Inc()
}

// IncReconnect records one reconnect attempt for trigger.
func (m *Metrics) IncReconnect(trigger string) {
	if m == nil {
		return
	}
	m.Reconnects.WithLabelValues(trigger).Inc()
}

// IncFrameReceived records one received frame, and whether its depth
// buffer was carried forward from the prior frame.
func (m *Metrics) IncFrameReceived(depthCarried bool) {
	if m == nil {
		return
	}
	m.FramesReceived.Inc()
	if depthCarried {
		m.DepthCarried.Inc()
	}
}

// IncTokenRefresh records one token refresh attempt.
func (m *Metrics) IncTokenRefresh(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.TokenRefreshes.WithLabelValues(outcome).Inc()
}

// ObserveFirstFrame records the latency from load to first frame.
func (m *Metrics) ObserveFirstFrame(seconds float64) {
	if m == nil {
		return
	}
	m.FirstFrameSeconds.Observe(seconds)
}

// Registry couples the SDK metrics with a dedicated Prometheus registry
// and go runtime collectors.
type Registry struct {
	prometheusRegistry *prometheus.Registry
	metrics            *Metrics
}

// NewRegistry creates a registry with the SDK metrics plus Go runtime and
// process collectors registered.
func NewRegistry() *Registry {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics()
	registry.MustRegister(metrics.collectors()...)
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{
		prometheusRegistry: registry,
		metrics:            metrics,
	}
}

// Metrics returns the SDK metric set.
func (r *Registry) Metrics() *Metrics {
	return r.metrics
}

// PrometheusRegistry returns the underlying registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// Handler returns an http.Handler serving the registry in the Prometheus
// exposition format, for applications that expose a /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.prometheusRegistry, promhttp.HandlerOpts{})
}
