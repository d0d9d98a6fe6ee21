// Package observability defines the core interfaces and semantic conventions
// used for tracing, metrics collection, and structured logging throughout
// localllm.
//
// The central entry point is [Provider], which composes [Tracer], [Metrics],
// and [Logger] into a single injectable dependency. Callers propagate an active
// [Provider] and [Span] through a [context.Context] using [ContextWithObserver]
// and [ContextWithSpan]; they can be retrieved with [ObserverFromContext] and
// [SpanFromContext].
//
// The semconv.go file contains the attribute keys, span names and metric names
// that should be used when recording observations.
package observability
