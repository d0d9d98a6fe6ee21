package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/leofalp/localllm/internal/utils"
	"github.com/leofalp/localllm/providers/ai"
	"github.com/leofalp/localllm/providers/observability"
)

// streamChat is the innermost StreamFunc. It only captures its arguments;
// the request is issued by the producer on the first pull.
func (a *Adapter) streamChat(ctx context.Context, request ai.ChatRequest) *ai.TextStream {
	return ai.NewTextStream(func(yield func(string) bool) error {
		return a.produceChat(ctx, request, yield)
	})
}

func (a *Adapter) produceChat(ctx context.Context, request ai.ChatRequest, yield func(string) bool) error {
	url := a.endpointURL(a.backend.Endpoints().Chat)
	ctx, op := a.begin(ctx, observability.SpanStreamChat, opStreamChat,
		observability.String(observability.AttrLLMModel, request.Model),
		observability.String(observability.AttrLLMEndpoint, url),
		observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
		observability.Int(observability.AttrRequestImagesCount, len(request.Images)),
	)

	ctx, cancel := context.WithTimeout(ctx, a.timeouts.Chat)
	defer cancel()

	fragments := 0
	abandoned := false
	emit := func(fragment string) bool {
		if fragment == "" {
			return true
		}
		if fragments == 0 {
			op.event(observability.EventStreamFirstFragment)
		}
		fragments++
		if !yield(fragment) {
			abandoned = true
			return false
		}
		return true
	}

	err := a.relay(ctx, url, request, emit)

	op.countFragments(ctx, fragments)
	attrs := []observability.Attribute{
		observability.Int(observability.AttrStreamFragments, fragments),
		observability.Bool(observability.AttrStreamAbandoned, abandoned),
	}
	switch {
	case err != nil:
		op.end(ctx, statusError, err, attrs...)
	case abandoned:
		op.end(ctx, statusAbandoned, nil, attrs...)
	default:
		op.end(ctx, statusSuccess, nil, attrs...)
	}
	return err
}

// relay issues the chat request and forwards parsed content to emit until
// the body ends, a terminal marker arrives, emit asks to stop or a failure
// occurs. Failures are emitted as a final fragment and returned.
func (a *Adapter) relay(ctx context.Context, url string, request ai.ChatRequest, emit func(string) bool) error {
	images, err := ai.EncodeImages(request.Images)
	if err != nil {
		emit(requestErrorFragment(err))
		return err
	}

	payload, err := a.backend.BuildChatPayload(request, images)
	if err != nil {
		err = fmt.Errorf("failed to build chat payload: %w", err)
		emit(requestErrorFragment(err))
		return err
	}

	response, err := utils.DoPostStream(ctx, a.httpClient, url, payload)
	if err != nil {
		transportErr := newTransportError(opStreamChat, url, err)
		emit(connectionErrorFragment(transportErr))
		return transportErr
	}
	defer utils.CloseWithLog(response.Body)

	parse := a.lineParser()
	scanner := utils.NewLineScanner(response.Body)
	var transcript strings.Builder

	for {
		line, err := scanner.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			transportErr := newTransportError(opStreamChat, url, err)
			emit(connectionErrorFragment(transportErr))
			return transportErr
		}

		transcript.WriteString(line)
		transcript.WriteByte('\n')

		parsed, err := parse(line)
		if err != nil {
			emit(decodeErrorFragment(err, transcript.String()))
			return err
		}

		if !emit(parsed.Content) || parsed.Done {
			return nil
		}
	}
}

func (a *Adapter) lineParser() func(string) (ai.StreamLine, error) {
	if a.lenient {
		if lenientBackend, ok := a.backend.(ai.LenientBackend); ok {
			return lenientBackend.ParseStreamLineLenient
		}
	}
	return a.backend.ParseStreamLine
}
