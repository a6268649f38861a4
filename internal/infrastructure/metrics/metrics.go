// Package metrics exposes hub telemetry to Prometheus.
//
// Metrics is passed to the aggregation service as its fetch observer and to
// the change poller as a publisher, so both feed the same registry without
// importing Prometheus themselves.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/gray-logic-hub/internal/plugin"
	"github.com/nerrad567/gray-logic-hub/internal/push"
)

const namespace = "graylogic_hub"

// SlugCounter reports the number of identifier mappings per namespace.
type SlugCounter interface {
	Count() map[string]int
}

// Metrics holds the hub's Prometheus collectors.
type Metrics struct {
	fetchDuration *prometheus.HistogramVec
	fetchFailures *prometheus.CounterVec
	deltaEvents   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "plugin_fetch_duration_seconds",
				Help:      "Time spent fetching one plugin during aggregation.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
			},
			[]string{"plugin", "mode"}),
		fetchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plugin_fetch_failures_total",
				Help:      "Plugin fetches that failed and were left out of the home.",
			},
			[]string{"plugin", "mode"}),
		deltaEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "delta_events_total",
				Help:      "Change events published by the poller.",
			},
			[]string{"plugin", "mode"}),
	}
	reg.MustRegister(m.fetchDuration)
	reg.MustRegister(m.fetchFailures)
	reg.MustRegister(m.deltaEvents)
	return m
}

// ObserveFetch records one plugin fetch of the aggregation service.
func (m *Metrics) ObserveFetch(pluginID string, mode plugin.Mode, took time.Duration, err error) {
	m.fetchDuration.WithLabelValues(pluginID, mode.String()).Observe(took.Seconds())
	if err != nil {
		m.fetchFailures.WithLabelValues(pluginID, mode.String()).Inc()
	}
}

// Publish counts a change event. It never fails.
func (m *Metrics) Publish(_ context.Context, ev push.Event) error {
	m.deltaEvents.WithLabelValues(ev.Plugin, ev.Mode).Inc()
	return nil
}

// RegisterSlugs exposes the mapping counts of src, read at scrape time.
// Each mode is registered once.
func RegisterSlugs(reg prometheus.Registerer, mode plugin.Mode, src SlugCounter) error {
	desc := prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "slug_mappings"),
		"Identifier mappings held per namespace.",
		[]string{"namespace"},
		prometheus.Labels{"mode": mode.String()},
	)
	return reg.Register(&slugCollector{desc: desc, src: src})
}

type slugCollector struct {
	desc *prometheus.Desc
	src  SlugCounter
}

func (c *slugCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *slugCollector) Collect(ch chan<- prometheus.Metric) {
	for ns, n := range c.src.Count() {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n), ns)
	}
}

// NewRegistry returns a registry carrying the Go runtime and build info
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewBuildInfoCollector())
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
