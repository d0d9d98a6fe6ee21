package openaicompat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/leofalp/localllm/providers/ai"
)

const (
	// ModelsEndpoint lists the models served by an OpenAI-compatible server.
	ModelsEndpoint = "/v1/models"
	// ChatCompletionsEndpoint accepts streaming chat completion requests.
	ChatCompletionsEndpoint = "/v1/chat/completions"

	// OwnerKoboldcpp is the owned_by tag Koboldcpp puts on its model entries.
	OwnerKoboldcpp = "koboldcpp"
)

/*
	##### REQUEST #####
*/

// ChatCompletionRequest is the body posted to /v1/chat/completions.
type ChatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// ChatMessage carries either plain string content or, for a message with
// attached images, a list of ContentPart values.
type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one element of a multi-part message content.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL references an image, here always as a base64 data URI.
type ImageURL struct {
	URL string `json:"url"`
}

// BuildChatCompletionRequest maps a generic request onto the OpenAI chat
// completions shape. When images are present and the final message has the
// user role, that message's content is rewritten into a text part followed
// by one image_url part per image. The input request is left untouched.
func BuildChatCompletionRequest(request ai.ChatRequest, images []ai.EncodedImage) *ChatCompletionRequest {
	messages := make([]ChatMessage, len(request.Messages))
	for i, message := range request.Messages {
		messages[i] = ChatMessage{Role: string(message.Role), Content: message.Content}
	}

	if last := request.LastUserMessageIndex(); last >= 0 && len(images) > 0 {
		parts := make([]ContentPart, 0, len(images)+1)
		parts = append(parts, ContentPart{Type: "text", Text: request.Messages[last].Content})
		for _, image := range images {
			parts = append(parts, ContentPart{
				Type:     "image_url",
				ImageURL: &ImageURL{URL: image.DataURI()},
			})
		}
		messages[last].Content = parts
	}

	return &ChatCompletionRequest{
		Model:    request.Model,
		Messages: messages,
		Stream:   request.StreamEnabled(),
	}
}

/*
	##### MODEL LISTING #####
*/

// ModelList is the body returned by /v1/models.
type ModelList struct {
	Object string       `json:"object"`
	Data   []ModelEntry `json:"data"`
}

// ModelEntry is one served model. OwnedBy is nil when the field is absent.
type ModelEntry struct {
	ID      string  `json:"id"`
	Object  string  `json:"object,omitempty"`
	OwnedBy *string `json:"owned_by,omitempty"`
}

// ParseModelList decodes a /v1/models body.
func ParseModelList(body []byte) (ModelList, error) {
	var list ModelList
	if err := json.Unmarshal(body, &list); err != nil {
		return ModelList{}, ai.NewProtocolError(string(body), err)
	}
	return list, nil
}

// ClaimedBy reports whether this is a list object containing at least one
// entry tagged exactly with owner. A Koboldcpp shim answering on an Ollama or
// LM Studio port is recognised this way.
func (list ModelList) ClaimedBy(owner string) bool {
	if list.Object != "list" {
		return false
	}
	for _, entry := range list.Data {
		if entry.OwnedBy != nil && *entry.OwnedBy == owner {
			return true
		}
	}
	return false
}

// IDsExcludingOwner returns the ids of entries not owned by owner
// (case-insensitive). Entries without owned_by are kept; entries without an
// id are dropped.
func (list ModelList) IDsExcludingOwner(owner string) []string {
	ids := make([]string, 0, len(list.Data))
	for _, entry := range list.Data {
		if entry.ID == "" {
			continue
		}
		if entry.OwnedBy != nil && strings.EqualFold(*entry.OwnedBy, owner) {
			continue
		}
		ids = append(ids, entry.ID)
	}
	return ids
}

// IDsOwnedBy returns the ids of entries owned by owner (case-insensitive)
// or carrying no owned_by field at all. Entries without an id are dropped.
func (list ModelList) IDsOwnedBy(owner string) []string {
	ids := make([]string, 0, len(list.Data))
	for _, entry := range list.Data {
		if entry.ID == "" {
			continue
		}
		if entry.OwnedBy == nil || strings.EqualFold(*entry.OwnedBy, owner) {
			ids = append(ids, entry.ID)
		}
	}
	return ids
}

/*
	##### STREAMING #####
*/

// DeltaContent extracts choices[0].delta.content from a chat completion
// chunk. Invalid JSON is a *ProtocolError; a valid chunk without that path
// (usage-only chunks, keep-alives) yields "".
func DeltaContent(payload string) (string, error) {
	if !gjson.Valid(payload) {
		return "", ai.NewProtocolError(payload, fmt.Errorf("invalid JSON in stream chunk"))
	}
	return gjson.Get(payload, "choices.0.delta.content").String(), nil
}

// MessageContent extracts message.content from a JSON frame, the shape used
// by Ollama's native stream. Invalid JSON is a *ProtocolError.
func MessageContent(payload string) (string, error) {
	if !gjson.Valid(payload) {
		return "", ai.NewProtocolError(payload, fmt.Errorf("invalid JSON in stream frame"))
	}
	return gjson.Get(payload, "message.content").String(), nil
}
