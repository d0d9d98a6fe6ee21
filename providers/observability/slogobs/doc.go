// Package slogobs provides an observability.Provider implementation backed by
// Go's standard library log/slog package.
// Spans and log calls become structured records in compact text or JSON form;
// metrics are forwarded to an optional delegate such as promobs.
// The main entry point is [New]; output can be tuned with [WithFormat],
// [WithLevel], [WithOutput], [WithLogger] and [WithMetrics].
package slogobs
