// Package lmstudio implements the ai.Backend strategy for LM Studio's
// OpenAI-compatible local server (default port 1234).
package lmstudio

import (
	"strings"

	"github.com/leofalp/localllm/internal/utils"
	"github.com/leofalp/localllm/providers/ai"
	"github.com/leofalp/localllm/providers/ai/openaicompat"
)

// DefaultBaseURL is where LM Studio listens unless configured otherwise.
const DefaultBaseURL = "http://localhost:1234"

// Backend is the LM Studio strategy. It holds no state.
type Backend struct{}

// New returns the LM Studio backend.
func New() *Backend {
	return &Backend{}
}

var _ ai.LenientBackend = (*Backend)(nil)

func (b *Backend) Kind() ai.ProviderKind {
	return ai.ProviderLMStudio
}

// Endpoints returns the OpenAI-compatible paths; LM Studio has no unload endpoint.
func (b *Backend) Endpoints() ai.Endpoints {
	return ai.Endpoints{
		Models: openaicompat.ModelsEndpoint,
		Chat:   openaicompat.ChatCompletionsEndpoint,
	}
}

func (b *Backend) BuildChatPayload(request ai.ChatRequest, images []ai.EncodedImage) (any, error) {
	return openaicompat.BuildChatCompletionRequest(request, images), nil
}

// ParseModels returns no models at all when the listing comes from a
// Koboldcpp server, since that means the port belongs to the wrong backend.
func (b *Backend) ParseModels(body []byte) ([]string, error) {
	list, err := openaicompat.ParseModelList(body)
	if err != nil {
		return nil, err
	}
	if list.ClaimedBy(openaicompat.OwnerKoboldcpp) {
		return []string{}, nil
	}
	return list.IDsExcludingOwner(openaicompat.OwnerKoboldcpp), nil
}

func (b *Backend) ParseStreamLine(line string) (ai.StreamLine, error) {
	return parseLine(line, false)
}

// ParseStreamLineLenient is ParseStreamLine with jsonrepair applied to
// payloads that fail to decode.
func (b *Backend) ParseStreamLineLenient(line string) (ai.StreamLine, error) {
	return parseLine(line, true)
}

// BuildUnloadPayload is never called: Endpoints().Unload is empty.
func (b *Backend) BuildUnloadPayload(string) any {
	return nil
}

func parseLine(line string, lenient bool) (ai.StreamLine, error) {
	if payload, isData := utils.SSEPayload(line); isData {
		switch payload {
		case utils.DoneSentinel:
			return ai.StreamLine{Done: true}, nil
		case "":
			return ai.StreamLine{}, nil
		}
		content, err := openaicompat.DeltaContent(repairIf(lenient, payload))
		if err != nil {
			return ai.StreamLine{}, err
		}
		return ai.StreamLine{Content: content}, nil
	}

	return parseRawLine(line, lenient)
}

// parseRawLine handles a line without the SSE prefix that looks like a bare
// JSON object carrying message.content. Neither LM Studio nor the OpenAI API
// documents this framing; the path is kept for servers observed to emit it
// and is unverified.
func parseRawLine(line string, lenient bool) (ai.StreamLine, error) {
	if !strings.Contains(line, "{") {
		return ai.StreamLine{}, nil
	}
	content, err := openaicompat.MessageContent(repairIf(lenient, line))
	if err != nil {
		return ai.StreamLine{}, err
	}
	return ai.StreamLine{Content: content}, nil
}

func repairIf(lenient bool, payload string) string {
	if !lenient {
		return payload
	}
	if repaired, err := utils.RepairJSON(payload); err == nil {
		return repaired
	}
	return payload
}
