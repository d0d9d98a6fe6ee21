package ai

import (
	"fmt"
	"strings"
)

/*
	##### PROVIDER IDENTITY #####
*/

// ProviderKind identifies which local LLM server an adapter talks to. It is
// chosen at construction time and never changes for the adapter's lifetime.
type ProviderKind int

const (
	ProviderOllama ProviderKind = iota + 1
	ProviderLMStudio
	ProviderKoboldcpp
)

// ProviderKinds lists every supported provider in display order.
var ProviderKinds = []ProviderKind{ProviderOllama, ProviderLMStudio, ProviderKoboldcpp}

// String returns the human-readable provider name ("Ollama", "LM Studio", "Koboldcpp").
func (k ProviderKind) String() string {
	switch k {
	case ProviderOllama:
		return "Ollama"
	case ProviderLMStudio:
		return "LM Studio"
	case ProviderKoboldcpp:
		return "Koboldcpp"
	default:
		return fmt.Sprintf("ProviderKind(%d)", int(k))
	}
}

// Slug returns a lowercase identifier suitable for metric labels and config files.
func (k ProviderKind) Slug() string {
	switch k {
	case ProviderOllama:
		return "ollama"
	case ProviderLMStudio:
		return "lmstudio"
	case ProviderKoboldcpp:
		return "koboldcpp"
	default:
		return "unknown"
	}
}

// ParseProviderKind maps a user supplied provider name to a ProviderKind.
// Matching ignores case, spaces, dashes and underscores, so "LM Studio",
// "lm-studio" and "lmstudio" all resolve to ProviderLMStudio.
func ParseProviderKind(name string) (ProviderKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(normalized)

	switch normalized {
	case "ollama":
		return ProviderOllama, nil
	case "lmstudio":
		return ProviderLMStudio, nil
	case "koboldcpp", "kobold":
		return ProviderKoboldcpp, nil
	default:
		return 0, fmt.Errorf("unknown provider %q (expected Ollama, LM Studio or Koboldcpp)", name)
	}
}

// Endpoints holds the request paths a backend exposes, relative to the base URL.
// An empty Unload path means the backend cannot unload models.
type Endpoints struct {
	Models string
	Chat   string
	Unload string
}

/*
	##### PROVIDER INPUT #####
*/

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message represents a single message in a conversation
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// ChatRequest is the provider-agnostic chat completion request.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	// Images are local file paths attached to the final message when it has the user role.
	Images []string `json:"images,omitempty"`
	// Stream is forwarded verbatim to the backend. Leave it nil to request streaming.
	Stream *bool `json:"stream,omitempty"`
}

// StreamEnabled reports the stream flag sent to the backend. Streaming is the default.
func (r ChatRequest) StreamEnabled() bool {
	return r.Stream == nil || *r.Stream
}

// LastUserMessageIndex returns the index of the final message when it carries
// the user role, or -1 when images must not be attached.
func (r ChatRequest) LastUserMessageIndex() int {
	last := len(r.Messages) - 1
	if last < 0 || r.Messages[last].Role != RoleUser {
		return -1
	}
	return last
}

/*
	##### PROVIDER OUTPUT #####
*/

// StreamLine is the outcome of parsing one line of a streaming response body.
type StreamLine struct {
	Content string // Delta text, empty when the line carried nothing to show
	Done    bool   // Terminal marker seen; no further fragments may be produced
}

// UnloadStatus is the outcome category of an unload request.
type UnloadStatus string

const (
	UnloadSuccess     UnloadStatus = "success"
	UnloadError       UnloadStatus = "error"
	UnloadUnsupported UnloadStatus = "unsupported"
)

// UnloadResult is the structured, never-failing result of an unload request.
type UnloadResult struct {
	Status  UnloadStatus `json:"status" yaml:"status"`
	Message string       `json:"message" yaml:"message"`
}
