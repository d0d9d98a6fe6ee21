package adapter

import (
	"context"

	"github.com/leofalp/localllm/providers/ai"
)

// StreamFunc starts a chat stream. It is the unit threaded through the
// StreamChat middleware chain.
type StreamFunc func(ctx context.Context, request ai.ChatRequest) *ai.TextStream

// StreamMiddleware wraps a StreamFunc. Implementations usually wrap the
// returned TextStream to observe or bound it; they must preserve laziness by
// not pulling from the inner stream before their own stream is pulled.
type StreamMiddleware func(next StreamFunc) StreamFunc

// buildStreamChain applies middlewares in reverse so that middlewares[0] is
// the outermost wrapper.
func buildStreamChain(base StreamFunc, middlewares []StreamMiddleware) StreamFunc {
	chain := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			chain = middlewares[i](chain)
		}
	}
	return chain
}
