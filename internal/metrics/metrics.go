// Package metrics implements the façade's observe(label, duration) sink
// plus order/trade/reject/cancel counters over
// github.com/prometheus/client_golang, the metrics library this spec's
// example corpus reaches for directly whenever a repository exposes
// Prometheus-style counters and histograms.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements engine.Metrics.
type Collector struct {
	registry *prometheus.Registry

	latency         *prometheus.HistogramVec
	ordersReceived  prometheus.Counter
	tradesExecuted  prometheus.Counter
	rejectedByCause *prometheus.CounterVec
	cancelled       prometheus.Counter
}

// New constructs a Collector registered against a fresh Registry, suitable
// for exposing via an HTTP /metrics handler.
func New(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of façade operations by label.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"label"}),
		ordersReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_received_total",
			Help:      "Total orders submitted to the engine.",
		}),
		tradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_executed_total",
			Help:      "Total trades produced by the engine.",
		}),
		rejectedByCause: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Total orders rejected, by cause.",
		}, []string{"reason"}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_cancelled_total",
			Help:      "Total orders cancelled.",
		}),
	}
	reg.MustRegister(c.latency, c.ordersReceived, c.tradesExecuted, c.rejectedByCause, c.cancelled)
	return c
}

// Registry exposes the underlying prometheus.Registry so a caller can serve
// it over HTTP with promhttp.HandlerFor.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) Observe(label string, d time.Duration) {
	c.latency.WithLabelValues(label).Observe(d.Seconds())
}

func (c *Collector) IncOrdersReceived() { c.ordersReceived.Inc() }

func (c *Collector) IncTradesExecuted(n int) { c.tradesExecuted.Add(float64(n)) }

func (c *Collector) IncRejected(reason string) { c.rejectedByCause.WithLabelValues(reason).Inc() }

func (c *Collector) IncCancelled() { c.cancelled.Inc() }
