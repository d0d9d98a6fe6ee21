// Package promobs implements observability.Metrics on Prometheus collectors,
// exposing request counts, latencies and stream fragment totals for the
// localllm adapter.
package promobs

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/leofalp/localllm/providers/observability"
)

// LLMBuckets defines histogram buckets suited for local LLM latencies,
// ranging from 50ms to 300s (the default chat timeout).
var LLMBuckets = []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300}

// labelKeys maps Prometheus label names to the attribute keys they are read from.
var labelKeys = map[string]string{
	"provider":  observability.AttrLLMProvider,
	"operation": observability.AttrOperation,
	"status":    observability.AttrStatus,
}

// Collector owns the adapter's Prometheus collectors and serves them through
// the observability.Metrics interface.
type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	FragmentsTotal  *prometheus.CounterVec

	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	labels     map[string][]string
}

// NewCollector creates the collectors under the given namespace and registers
// them with registerer. Registration fails if the names are already taken.
func NewCollector(registerer prometheus.Registerer, namespace string) (*Collector, error) {
	requestLabels := []string{"provider", "operation", "status"}
	durationLabels := []string{"provider", "operation"}
	fragmentLabels := []string{"provider"}

	collector := &Collector{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Adapter operations by provider, operation and outcome",
			},
			requestLabels,
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Adapter operation duration",
				Buckets:   LLMBuckets,
			},
			durationLabels,
		),
		FragmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stream_fragments_total",
				Help:      "Text fragments yielded to callers",
			},
			fragmentLabels,
		),
	}

	for _, c := range []prometheus.Collector{collector.RequestsTotal, collector.RequestDuration, collector.FragmentsTotal} {
		if err := registerer.Register(c); err != nil {
			return nil, fmt.Errorf("error registering metrics: %w", err)
		}
	}

	collector.counters = map[string]*prometheus.CounterVec{
		observability.MetricRequestCount:    collector.RequestsTotal,
		observability.MetricStreamFragments: collector.FragmentsTotal,
	}
	collector.histograms = map[string]*prometheus.HistogramVec{
		observability.MetricRequestDuration: collector.RequestDuration,
	}
	collector.labels = map[string][]string{
		observability.MetricRequestCount:    requestLabels,
		observability.MetricRequestDuration: durationLabels,
		observability.MetricStreamFragments: fragmentLabels,
	}

	return collector, nil
}

var _ observability.Metrics = (*Collector)(nil)

// Counter returns the counter registered for name. Unknown names return a
// counter that discards observations.
func (c *Collector) Counter(name string) observability.Counter {
	vec, ok := c.counters[name]
	if !ok {
		return discard{}
	}
	return &counter{vec: vec, labels: c.labels[name]}
}

// Histogram returns the histogram registered for name. Unknown names return a
// histogram that discards observations.
func (c *Collector) Histogram(name string) observability.Histogram {
	vec, ok := c.histograms[name]
	if !ok {
		return discard{}
	}
	return &histogram{vec: vec, labels: c.labels[name]}
}

type counter struct {
	vec    *prometheus.CounterVec
	labels []string
}

func (c *counter) Add(_ context.Context, value int64, attrs ...observability.Attribute) {
	c.vec.WithLabelValues(labelValues(c.labels, attrs)...).Add(float64(value))
}

type histogram struct {
	vec    *prometheus.HistogramVec
	labels []string
}

func (h *histogram) Record(_ context.Context, value float64, attrs ...observability.Attribute) {
	h.vec.WithLabelValues(labelValues(h.labels, attrs)...).Observe(value)
}

type discard struct{}

func (discard) Add(context.Context, int64, ...observability.Attribute)     {}
func (discard) Record(context.Context, float64, ...observability.Attribute) {}

// labelValues resolves each label from the attribute it maps to; missing
// attributes become empty label values.
func labelValues(labels []string, attrs []observability.Attribute) []string {
	values := make([]string, len(labels))
	for i, label := range labels {
		if value, ok := observability.Lookup(attrs, labelKeys[label]); ok {
			values[i] = fmt.Sprint(value)
		}
	}
	return values
}
