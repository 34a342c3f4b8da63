// Package telemetry exposes Prometheus metrics for the realtime engine:
// published/dropped event counts, connected client count, and HTTP request
// durations, served at /metrics.
package telemetry

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	EventsPublished  *prometheus.CounterVec
	EventsDropped    *prometheus.CounterVec
	ConnectedClients prometheus.Gauge
	RequestDuration  *prometheus.HistogramVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carebus_events_published_total",
			Help: "Events published to the in-process bus, by event tag.",
		}, []string{"event"}),
		EventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carebus_events_dropped_total",
			Help: "Deliveries dropped because a subscriber queue was full, by event tag.",
		}, []string{"event"}),
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "carebus_connected_clients",
			Help: "Currently connected WebSocket clients.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carebus_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}

	reg.MustRegister(m.EventsPublished, m.EventsDropped, m.ConnectedClients, m.RequestDuration)
	return m
}

// Handler serves the Prometheus text exposition endpoint.
func (m *Metrics) Handler() echo.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c echo.Context) error {
		h.ServeHTTP(c.Response(), c.Request())
		return nil
	}
}

// Middleware observes request durations, labeled by route path so that
// per-entity ids do not explode the cardinality.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			m.RequestDuration.WithLabelValues(
				c.Request().Method,
				path,
				strconv.Itoa(c.Response().Status),
			).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
