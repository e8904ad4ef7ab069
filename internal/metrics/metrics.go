// Package metrics holds the prometheus collectors of the agent.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// Module provides Metrics.
var Module = fx.Provide(New)

const namespace = "courieragent"

// Sampler write results.
const (
	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultStale   = "stale"
	ResultSkipped = "skipped"
)

// Metrics owns a private registry so that several instances can coexist.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	LocationWrites   *prometheus.CounterVec
	TrackingEvents   *prometheus.CounterVec
	StreamClients    prometheus.Gauge
	Popups           *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Local API requests.",
		}, []string{"method", "endpoint", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Local API latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		RequestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Local API requests being served.",
		}),
		LocationWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_writes_total",
			Help:      "Location samples by sampler and result.",
		}, []string{"sampler", "result"}),
		TrackingEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracking_events_total",
			Help:      "Realtime tracking events pushed to the UI.",
		}, []string{"stream", "kind"}),
		StreamClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_clients",
			Help:      "Connected websocket clients.",
		}),
		Popups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "popups_total",
			Help:      "Popups shown by kind.",
		}, []string{"kind"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// ObserveLocationWrite counts one sample of the named sampler.
func (m *Metrics) ObserveLocationWrite(sampler, result string) {
	if m == nil {
		return
	}
	m.LocationWrites.WithLabelValues(sampler, result).Inc()
}
