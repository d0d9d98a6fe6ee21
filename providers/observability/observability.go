package observability

import (
	"context"
	"time"
)

// Provider receives what the adapter reports about each list, stream and
// unload call: one span per call, a duration histogram with a call counter,
// and lifecycle log lines. slogobs and promobs are the two implementations.
type Provider interface {
	Tracer
	Metrics
	Logger
}

// Tracer opens the span that brackets one adapter call.
type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Span lives for one call. For a chat stream it stays open until the stream
// is drained, fails or is abandoned, not merely until StreamChat returns.
type Span interface {
	End()
	SetAttributes(attrs ...Attribute)
	SetStatus(code StatusCode, description string)
	RecordError(err error)
	// AddEvent marks points inside a call, such as the first streamed fragment.
	AddEvent(name string, attrs ...Attribute)
}

type StatusCode int

const (
	StatusUnset StatusCode = iota
	StatusOK
	StatusError
)

// Metrics hands out instruments by name; see the Metric* constants.
type Metrics interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

type Counter interface {
	Add(ctx context.Context, value int64, attrs ...Attribute)
}

// Histogram values are seconds for the duration metrics.
type Histogram interface {
	Record(ctx context.Context, value float64, attrs ...Attribute)
}

type Logger interface {
	Debug(ctx context.Context, msg string, attrs ...Attribute)
	Info(ctx context.Context, msg string, attrs ...Attribute)
	Warn(ctx context.Context, msg string, attrs ...Attribute)
	Error(ctx context.Context, msg string, attrs ...Attribute)
}

// Attribute is one labelled value; keys come from the Attr* constants.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value}
}

// Error stores the message under AttrError; a nil err gives an empty value.
func Error(err error) Attribute {
	if err == nil {
		return Attribute{Key: AttrError, Value: ""}
	}
	return Attribute{Key: AttrError, Value: err.Error()}
}

// Lookup returns the value of the first attribute with the given key.
// promobs uses it to pick label values out of an attribute list.
func Lookup(attrs []Attribute, key string) (any, bool) {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return nil, false
}
