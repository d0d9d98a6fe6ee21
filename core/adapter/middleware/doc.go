// Package middleware provides StreamChat middlewares for the adapter. Each
// constructor returns an [adapter.StreamMiddleware] ready to be passed to
// [adapter.WithStreamMiddleware].
//
// # Available Middleware
//
//   - [NewTimeoutMiddleware]: bounds a whole chat stream, from the call to
//     StreamChat until the last fragment, with one deadline.
//
//   - [NewLoggingMiddleware]: emits slog entries when a stream starts and when
//     it completes, is abandoned, or ends on an error fragment.
//
// # Usage
//
//	llm, err := adapter.New(ai.ProviderOllama, "",
//	    adapter.WithStreamMiddleware(
//	        middleware.NewTimeoutMiddleware(2*time.Minute),
//	        middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard),
//	    ),
//	)
//
// Middlewares execute outermost-first: the first entry is the first to see
// the request and the last to see the stream end.
package middleware
