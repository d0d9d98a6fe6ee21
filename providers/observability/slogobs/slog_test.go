package slogobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/localllm/providers/observability"
)

// decodeRecords splits JSON handler output into one map per record.
func decodeRecords(t *testing.T, buffer *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buffer.String()), "\n") {
		if line == "" {
			continue
		}
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		records = append(records, record)
	}
	return records
}

func TestObserver_LogsWithAttributes(t *testing.T) {
	var buffer bytes.Buffer
	observer := New(WithFormat(FormatJSON), WithLevel(slog.LevelDebug), WithOutput(&buffer))

	observer.Info(context.Background(), "models listed",
		observability.String(observability.AttrLLMProvider, "ollama"),
		observability.Int(observability.AttrModelsCount, 3),
	)

	records := decodeRecords(t, &buffer)
	require.Len(t, records, 1)
	assert.Equal(t, "models listed", records[0]["msg"])
	assert.Equal(t, "ollama", records[0][observability.AttrLLMProvider])
	assert.EqualValues(t, 3, records[0][observability.AttrModelsCount])
}

func TestObserver_LevelFiltersDebug(t *testing.T) {
	var buffer bytes.Buffer
	observer := New(WithFormat(FormatJSON), WithLevel(slog.LevelWarn), WithOutput(&buffer))

	observer.Debug(context.Background(), "hidden")
	observer.Info(context.Background(), "hidden too")
	observer.Warn(context.Background(), "shown")

	records := decodeRecords(t, &buffer)
	require.Len(t, records, 1)
	assert.Equal(t, "shown", records[0]["msg"])
}

func TestObserver_SpanLifecycle(t *testing.T) {
	var buffer bytes.Buffer
	observer := New(WithFormat(FormatJSON), WithLevel(slog.LevelDebug), WithOutput(&buffer))

	ctx, span := observer.StartSpan(context.Background(), observability.SpanStreamChat,
		observability.String(observability.AttrLLMModel, "llama3"))
	assert.Same(t, span, observability.SpanFromContext(ctx))

	span.AddEvent(observability.EventStreamFirstFragment)
	span.RecordError(errors.New("boom"))
	span.SetStatus(observability.StatusError, "transport")
	span.End()

	records := decodeRecords(t, &buffer)
	require.Len(t, records, 4)
	assert.Equal(t, "span.start", records[0]["event"])
	assert.Equal(t, observability.EventStreamFirstFragment, records[1]["event"])
	assert.Equal(t, "WARN", records[2]["level"])
	assert.Equal(t, "span.end", records[3]["event"])
	assert.Equal(t, "error: transport", records[3][observability.AttrStatus])
	assert.Equal(t, "llama3", records[3][observability.AttrLLMModel])
}

type recordingMetrics struct {
	counters []string
}

func (m *recordingMetrics) Counter(name string) observability.Counter {
	m.counters = append(m.counters, name)
	return &logCounter{name: name, logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))}
}

func (m *recordingMetrics) Histogram(name string) observability.Histogram {
	return &logHistogram{name: name, logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))}
}

func TestObserver_DelegatesMetrics(t *testing.T) {
	delegate := &recordingMetrics{}
	observer := New(WithOutput(&bytes.Buffer{}), WithMetrics(delegate))

	observer.Counter(observability.MetricRequestCount).Add(context.Background(), 1)

	assert.Equal(t, []string{observability.MetricRequestCount}, delegate.counters)
}

func TestParseFormatAndLevel(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat(" JSON "))
	assert.Equal(t, FormatCompact, ParseFormat("pretty"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"))
}

func TestGetFromEnv(t *testing.T) {
	t.Setenv("LOCALLLM_LOG_FORMAT", "json")
	t.Setenv("LOCALLLM_LOG_LEVEL", "error")

	assert.Equal(t, FormatJSON, GetFormatFromEnv())
	assert.Equal(t, slog.LevelError, GetLogLevelFromEnv())
}
