// Package metrics provides Prometheus instrumentation and running statistics
// for the fetch and render loops.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "countdown"

// Collector holds the process instruments. A nil *Collector is a valid no-op.
type Collector struct {
	registry *prometheus.Registry

	fetchAttempts *prometheus.CounterVec
	fetchCycles   *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	fetchSkipped  prometheus.Counter
	remaining     prometheus.Gauge
	renderTicks   *prometheus.CounterVec

	latency RunningStats
}

// NewCollector creates the instruments on a private registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		fetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Departure requests sent to the timetable service, by result.",
		}, []string{"result"}),
		fetchCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_cycles_total",
			Help:      "Completed fetch cycles, by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_cycle_duration_seconds",
			Help:      "Duration of fetch cycles including retries.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		fetchSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_skipped_total",
			Help:      "Cadence ticks skipped because the previous cycle was still running.",
		}),
		remaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "seconds_remaining",
			Help:      "Seconds remaining at the last publish, -1 when no departure is known.",
		}),
		renderTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_ticks_total",
			Help:      "Display refreshes, by result.",
		}, []string{"result"}),
	}

	c.registry.MustRegister(
		c.fetchAttempts,
		c.fetchCycles,
		c.fetchDuration,
		c.fetchSkipped,
		c.remaining,
		c.renderTicks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// RecordAttempt counts one request to the service
func (c *Collector) RecordAttempt(result string, latency time.Duration) {
	if c == nil {
		return
	}
	c.fetchAttempts.WithLabelValues(result).Inc()
	c.latency.Observe(latency.Seconds())
}

// RecordCycle counts a finished fetch cycle
func (c *Collector) RecordCycle(outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.fetchCycles.WithLabelValues(outcome).Inc()
	c.fetchDuration.Observe(duration.Seconds())
}

// RecordSkip counts a skipped cadence tick
func (c *Collector) RecordSkip() {
	if c == nil {
		return
	}
	c.fetchSkipped.Inc()
}

// SetRemaining records the last published value; pass ok=false for no departure
func (c *Collector) SetRemaining(seconds int, ok bool) {
	if c == nil {
		return
	}
	if !ok {
		c.remaining.Set(-1)
		return
	}
	c.remaining.Set(float64(seconds))
}

// RecordRender counts a display refresh
func (c *Collector) RecordRender(result string) {
	if c == nil {
		return
	}
	c.renderTicks.WithLabelValues(result).Inc()
}

// Latency summarises request latencies in seconds
func (c *Collector) Latency() Summary {
	if c == nil {
		return Summary{}
	}
	return c.latency.Summary()
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
