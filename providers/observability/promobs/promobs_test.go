package promobs

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/localllm/providers/observability"
)

func TestCollector_CounterUsesAttributeLabels(t *testing.T) {
	collector, err := NewCollector(prometheus.NewRegistry(), "localllm")
	require.NoError(t, err)

	ctx := context.Background()
	requests := collector.Counter(observability.MetricRequestCount)
	requests.Add(ctx, 1,
		observability.String(observability.AttrLLMProvider, "ollama"),
		observability.String(observability.AttrOperation, "stream_chat"),
		observability.String(observability.AttrStatus, "ok"),
	)
	requests.Add(ctx, 2,
		observability.String(observability.AttrLLMProvider, "ollama"),
		observability.String(observability.AttrOperation, "stream_chat"),
		observability.String(observability.AttrStatus, "ok"),
	)

	assert.Equal(t, 3.0, testutil.ToFloat64(collector.RequestsTotal.WithLabelValues("ollama", "stream_chat", "ok")))
}

func TestCollector_HistogramRecords(t *testing.T) {
	collector, err := NewCollector(prometheus.NewRegistry(), "localllm")
	require.NoError(t, err)

	collector.Histogram(observability.MetricRequestDuration).Record(context.Background(), 0.25,
		observability.String(observability.AttrLLMProvider, "koboldcpp"),
		observability.String(observability.AttrOperation, "list_models"),
	)

	assert.Equal(t, 1, testutil.CollectAndCount(collector.RequestDuration))
}

func TestCollector_UnknownMetricIsDiscarded(t *testing.T) {
	collector, err := NewCollector(prometheus.NewRegistry(), "localllm")
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		collector.Counter("unknown").Add(context.Background(), 1)
		collector.Histogram("unknown").Record(context.Background(), 1)
	})
	assert.Equal(t, 0, testutil.CollectAndCount(collector.RequestsTotal))
}

func TestNewCollector_DuplicateRegistrationFails(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewCollector(registry, "localllm")
	require.NoError(t, err)

	_, err = NewCollector(registry, "localllm")
	assert.Error(t, err)
}
