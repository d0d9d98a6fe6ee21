// Package koboldcpp implements the ai.Backend strategy for Koboldcpp's
// OpenAI-compatible endpoints (default port 5001).
//
// Koboldcpp streams server-sent events only. Lines that fail to decode are
// skipped rather than ending the stream, so a single corrupted event never
// costs the rest of the reply.
package koboldcpp

import (
	"github.com/leofalp/localllm/internal/utils"
	"github.com/leofalp/localllm/providers/ai"
	"github.com/leofalp/localllm/providers/ai/openaicompat"
)

// DefaultBaseURL is where Koboldcpp listens unless configured otherwise.
const DefaultBaseURL = "http://localhost:5001"

// Backend is the Koboldcpp strategy. It holds no state.
type Backend struct{}

// New returns the Koboldcpp backend.
func New() *Backend {
	return &Backend{}
}

var _ ai.Backend = (*Backend)(nil)

func (b *Backend) Kind() ai.ProviderKind {
	return ai.ProviderKoboldcpp
}

func (b *Backend) Endpoints() ai.Endpoints {
	return ai.Endpoints{
		Models: openaicompat.ModelsEndpoint,
		Chat:   openaicompat.ChatCompletionsEndpoint,
	}
}

func (b *Backend) BuildChatPayload(request ai.ChatRequest, images []ai.EncodedImage) (any, error) {
	return openaicompat.BuildChatCompletionRequest(request, images), nil
}

// ParseModels keeps entries tagged koboldcpp and entries with no owner tag.
func (b *Backend) ParseModels(body []byte) ([]string, error) {
	list, err := openaicompat.ParseModelList(body)
	if err != nil {
		return nil, err
	}
	return list.IDsOwnedBy(openaicompat.OwnerKoboldcpp), nil
}

// ParseStreamLine never fails: non-SSE lines, empty payloads and undecodable
// payloads all produce an empty StreamLine.
func (b *Backend) ParseStreamLine(line string) (ai.StreamLine, error) {
	payload, isData := utils.SSEPayload(line)
	if !isData || payload == "" {
		return ai.StreamLine{}, nil
	}
	if payload == utils.DoneSentinel {
		return ai.StreamLine{Done: true}, nil
	}

	content, err := openaicompat.DeltaContent(payload)
	if err != nil {
		return ai.StreamLine{}, nil
	}
	return ai.StreamLine{Content: content}, nil
}

// BuildUnloadPayload is never called: Endpoints().Unload is empty.
func (b *Backend) BuildUnloadPayload(string) any {
	return nil
}
