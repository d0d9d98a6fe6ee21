package ollama

import (
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/tidwall/gjson"

	"github.com/leofalp/localllm/internal/utils"
	"github.com/leofalp/localllm/providers/ai"
	"github.com/leofalp/localllm/providers/ai/openaicompat"
)

const (
	// DefaultBaseURL is where Ollama listens unless OLLAMA_HOST says otherwise.
	DefaultBaseURL = "http://localhost:11434"

	tagsEndpoint   = "/api/tags"
	chatEndpoint   = "/api/chat"
	unloadEndpoint = "/api/unload"
)

// Backend is the Ollama strategy. It holds no state.
type Backend struct{}

// New returns the Ollama backend.
func New() *Backend {
	return &Backend{}
}

var _ ai.LenientBackend = (*Backend)(nil)

func (b *Backend) Kind() ai.ProviderKind {
	return ai.ProviderOllama
}

func (b *Backend) Endpoints() ai.Endpoints {
	return ai.Endpoints{
		Models: tagsEndpoint,
		Chat:   chatEndpoint,
		Unload: unloadEndpoint,
	}
}

// BuildChatPayload produces an api.ChatRequest. Images are attached as raw
// bytes to the last user message; api.ImageData serializes them as base64.
func (b *Backend) BuildChatPayload(request ai.ChatRequest, images []ai.EncodedImage) (any, error) {
	messages := make([]api.Message, len(request.Messages))
	for i, message := range request.Messages {
		messages[i] = api.Message{Role: string(message.Role), Content: message.Content}
	}

	if last := request.LastUserMessageIndex(); last >= 0 && len(images) > 0 {
		imageData := make([]api.ImageData, 0, len(images))
		for _, image := range images {
			imageData = append(imageData, api.ImageData(image.Data))
		}
		messages[last].Images = imageData
	}

	stream := request.StreamEnabled()
	return &api.ChatRequest{
		Model:    request.Model,
		Messages: messages,
		Stream:   &stream,
	}, nil
}

// ParseModels applies the same Koboldcpp guard as LM Studio to OpenAI-style
// listings and otherwise returns the names from the native tag list. Native
// entries are read by path so metadata Ollama adds or retypes (modified_at,
// details) never costs the listing.
func (b *Backend) ParseModels(body []byte) ([]string, error) {
	if !gjson.ValidBytes(body) {
		return nil, ai.NewProtocolError(string(body), fmt.Errorf("invalid JSON in model listing"))
	}

	if gjson.GetBytes(body, "data").IsArray() {
		listing, err := openaicompat.ParseModelList(body)
		if err != nil {
			return nil, err
		}
		if listing.ClaimedBy(openaicompat.OwnerKoboldcpp) {
			return []string{}, nil
		}
		if len(listing.Data) > 0 {
			return listing.IDsExcludingOwner(openaicompat.OwnerKoboldcpp), nil
		}
	}

	entries := gjson.GetBytes(body, "models").Array()
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Get("name").String()
		if name == "" {
			name = entry.Get("model").String()
		}
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func (b *Backend) ParseStreamLine(line string) (ai.StreamLine, error) {
	return parseLine(line, false)
}

// ParseStreamLineLenient is ParseStreamLine with jsonrepair applied to
// frames that fail to decode.
func (b *Backend) ParseStreamLineLenient(line string) (ai.StreamLine, error) {
	return parseLine(line, true)
}

type unloadRequest struct {
	Name string `json:"name"`
}

func (b *Backend) BuildUnloadPayload(model string) any {
	return unloadRequest{Name: model}
}

// parseLine accepts SSE-wrapped frames as well as Ollama's native NDJSON,
// where every line is a bare chat response object.
func parseLine(line string, lenient bool) (ai.StreamLine, error) {
	if payload, isData := utils.SSEPayload(line); isData {
		switch payload {
		case utils.DoneSentinel:
			return ai.StreamLine{Done: true}, nil
		case "":
			return ai.StreamLine{}, nil
		}
		return decodeFrame(payload, lenient)
	}

	// Bare JSON object (NDJSON framing).
	if strings.Contains(line, "{") {
		return decodeFrame(line, lenient)
	}
	return ai.StreamLine{}, nil
}

// decodeFrame reads only message.content and done. The rest of an
// api.ChatResponse (timings, created_at) is not needed and is left unchecked.
func decodeFrame(payload string, lenient bool) (ai.StreamLine, error) {
	if lenient {
		repaired, err := utils.RepairJSON(payload)
		if err != nil {
			return ai.StreamLine{}, ai.NewProtocolError(payload, err)
		}
		payload = repaired
	}

	content, err := openaicompat.MessageContent(payload)
	if err != nil {
		return ai.StreamLine{}, err
	}
	return ai.StreamLine{Content: content, Done: gjson.Get(payload, "done").Bool()}, nil
}
