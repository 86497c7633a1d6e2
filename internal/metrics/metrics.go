// Package metrics exposes Prometheus collectors for the oracle service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "oracled"

// Collector owns a registry with the service collectors.
type Collector struct {
	Registry *prometheus.Registry

	invocations        *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	rpcRequests        *prometheus.CounterVec
	wsConnections      prometheus.Gauge
}

// New creates a Collector with process and Go runtime collectors registered.
func New() *Collector {
	c := &Collector{
		Registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "contract",
				Name:      "invocations_total",
				Help:      "Total number of contract invocations.",
			},
			[]string{"method", "outcome"},
		),
		invocationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "contract",
				Name:      "invocation_duration_seconds",
				Help:      "Duration of contract invocations.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
			},
			[]string{"method"},
		),
		rpcRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total number of RPC requests by transport and status.",
			},
			[]string{"transport", "status"},
		),
		wsConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "rpc",
				Name:      "websocket_connections",
				Help:      "Current number of open WebSocket connections.",
			},
		),
	}
	c.Registry.MustRegister(
		c.invocations,
		c.invocationDuration,
		c.rpcRequests,
		c.wsConnections,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return c
}

// ObserveInvocation records one finished contract invocation.
func (c *Collector) ObserveInvocation(method, outcome string, elapsed time.Duration) {
	c.invocations.WithLabelValues(method, outcome).Inc()
	c.invocationDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveRequest records one RPC request.
func (c *Collector) ObserveRequest(transport, status string) {
	c.rpcRequests.WithLabelValues(transport, status).Inc()
}

// ConnectionOpened and ConnectionClosed track WebSocket clients.
func (c *Collector) ConnectionOpened() { c.wsConnections.Inc() }
func (c *Collector) ConnectionClosed() { c.wsConnections.Dec() }

// Handler returns an HTTP handler exposing the registered collectors.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})
}
