package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/leofalp/localllm/core/adapter"
	"github.com/leofalp/localllm/internal/utils"
	"github.com/leofalp/localllm/providers/ai"
)

// LogLevel controls how much detail the logging middleware emits per stream.
type LogLevel int

const (
	// LogLevelMinimal logs only the model name, duration and fragment count.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds the message and image counts.
	LogLevelStandard

	// LogLevelVerbose adds the last message and the reply, each truncated to
	// 500 characters.
	//
	// WARNING: LogLevelVerbose writes raw prompt and reply text to the log.
	// Use it for local debugging only.
	LogLevelVerbose
)

// truncateLen is the maximum content length included in verbose log output.
const truncateLen = 500

// NewLoggingMiddleware creates a middleware that logs stream start and end.
// Since streams are lazy, the start entry is written on the first pull, not
// when StreamChat is called. The logger must not be nil.
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) adapter.StreamMiddleware {
	return func(next adapter.StreamFunc) adapter.StreamFunc {
		return func(ctx context.Context, request ai.ChatRequest) *ai.TextStream {
			inner := next(ctx, request)
			return ai.NewTextStream(func(yield func(string) bool) error {
				return relayWithLogging(ctx, inner, yield, logger, request, level)
			})
		}
	}
}

func relayWithLogging(
	ctx context.Context,
	stream *ai.TextStream,
	yield func(string) bool,
	logger *slog.Logger,
	request ai.ChatRequest,
	level LogLevel,
) error {
	logger.InfoContext(ctx, "llm stream", buildRequestAttrs(request, level)...)

	start := time.Now()
	fragments := 0
	var reply []string

	for fragment := range stream.Iter() {
		fragments++
		if level >= LogLevelVerbose {
			reply = append(reply, fragment)
		}

		if !yield(fragment) {
			logger.InfoContext(ctx, "llm stream abandoned",
				slog.String("model", request.Model),
				slog.Duration("duration", time.Since(start)),
				slog.Int("fragments", fragments),
			)
			return nil
		}
	}

	elapsed := time.Since(start)
	if err := stream.Err(); err != nil {
		logger.ErrorContext(ctx, "llm stream failed",
			slog.String("model", request.Model),
			slog.Duration("duration", elapsed),
			slog.String("error", err.Error()),
		)
		return err
	}

	attrs := []any{
		slog.String("model", request.Model),
		slog.Duration("duration", elapsed),
		slog.Int("fragments", fragments),
	}
	if level >= LogLevelVerbose {
		attrs = append(attrs, slog.String("reply", utils.TruncateString(strings.Join(reply, ""), truncateLen)))
	}
	logger.InfoContext(ctx, "llm stream completed", attrs...)

	return nil
}

// buildRequestAttrs returns slog attributes for an outgoing chat request,
// expanding detail according to the requested verbosity level.
func buildRequestAttrs(request ai.ChatRequest, level LogLevel) []any {
	attrs := []any{
		slog.String("model", request.Model),
	}

	if level >= LogLevelStandard {
		attrs = append(attrs,
			slog.Int("message_count", len(request.Messages)),
			slog.Int("image_count", len(request.Images)),
		)
	}

	if level >= LogLevelVerbose && len(request.Messages) > 0 {
		last := request.Messages[len(request.Messages)-1]
		attrs = append(attrs,
			slog.String("last_message_role", string(last.Role)),
			slog.String("last_message_content", utils.TruncateString(last.Content, truncateLen)),
		)
	}

	return attrs
}
