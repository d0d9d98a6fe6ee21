package middleware

import (
	"context"
	"time"

	"github.com/leofalp/localllm/core/adapter"
	"github.com/leofalp/localllm/providers/ai"
)

// NewTimeoutMiddleware creates a middleware that puts a deadline on the whole
// lifetime of a chat stream. The clock starts when StreamChat is called. The
// cancel function is not deferred at call time: it runs once the wrapped
// stream is exhausted, ends on an error fragment, or is abandoned, so the
// deadline governs reading the reply and not just connecting.
//
// A shorter deadline already present on the caller's context still wins, and
// the adapter's own chat timeout still applies underneath.
func NewTimeoutMiddleware(timeout time.Duration) adapter.StreamMiddleware {
	return func(next adapter.StreamFunc) adapter.StreamFunc {
		return func(ctx context.Context, request ai.ChatRequest) *ai.TextStream {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			return wrapStreamWithCancel(next(ctx, request), cancel)
		}
	}
}

// wrapStreamWithCancel returns a stream that relays every fragment of stream
// and calls cancel when it stops, including when it is closed before the
// first pull.
func wrapStreamWithCancel(stream *ai.TextStream, cancel context.CancelFunc) *ai.TextStream {
	wrapped := ai.NewTextStream(func(yield func(string) bool) error {
		defer cancel()

		for fragment := range stream.Iter() {
			if !yield(fragment) {
				// The caller broke out of the range loop early.
				return nil
			}
		}
		return stream.Err()
	})
	return wrapped.OnClose(func() {
		stream.Close()
		cancel()
	})
}
