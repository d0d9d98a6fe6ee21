package adapter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/leofalp/localllm/internal/utils"
	"github.com/leofalp/localllm/providers/ai"
	"github.com/leofalp/localllm/providers/ai/koboldcpp"
	"github.com/leofalp/localllm/providers/ai/lmstudio"
	"github.com/leofalp/localllm/providers/ai/ollama"
	"github.com/leofalp/localllm/providers/observability"
)

// Adapter talks to one local LLM server through its provider strategy.
type Adapter struct {
	backend    ai.Backend
	baseURL    string
	httpClient *http.Client
	observer   observability.Provider
	timeouts   Timeouts
	lenient    bool

	middlewares []StreamMiddleware
	streamChain StreamFunc
}

// New creates an Adapter for one of the built-in providers. An empty baseURL
// selects the provider's usual local address.
func New(kind ai.ProviderKind, baseURL string, opts ...Option) (*Adapter, error) {
	backend, err := NewBackend(kind)
	if err != nil {
		return nil, err
	}
	return NewWithBackend(backend, baseURL, opts...), nil
}

// NewWithBackend creates an Adapter around any ai.Backend implementation.
func NewWithBackend(backend ai.Backend, baseURL string, opts ...Option) *Adapter {
	baseURL = utils.TrimBaseURL(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL(backend.Kind())
	}

	a := &Adapter{
		backend:    backend,
		baseURL:    baseURL,
		httpClient: &http.Client{},
		timeouts:   DefaultTimeouts(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.streamChain = buildStreamChain(a.streamChat, a.middlewares)
	return a
}

// NewBackend returns the built-in strategy for kind.
func NewBackend(kind ai.ProviderKind) (ai.Backend, error) {
	switch kind {
	case ai.ProviderOllama:
		return ollama.New(), nil
	case ai.ProviderLMStudio:
		return lmstudio.New(), nil
	case ai.ProviderKoboldcpp:
		return koboldcpp.New(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownProvider, int(kind))
	}
}

// DefaultBaseURL returns the address a provider listens on out of the box,
// or "" for an unknown kind.
func DefaultBaseURL(kind ai.ProviderKind) string {
	switch kind {
	case ai.ProviderOllama:
		return ollama.DefaultBaseURL
	case ai.ProviderLMStudio:
		return lmstudio.DefaultBaseURL
	case ai.ProviderKoboldcpp:
		return koboldcpp.DefaultBaseURL
	default:
		return ""
	}
}

func (a *Adapter) Kind() ai.ProviderKind {
	return a.backend.Kind()
}

func (a *Adapter) BaseURL() string {
	return a.baseURL
}

func (a *Adapter) endpointURL(path string) string {
	return a.baseURL + path
}

/*
	##### LIST MODELS #####
*/

// ListModels returns the identifiers of the models the server offers. Any
// failure (unreachable server, non-2xx status, undecodable body) is logged
// and yields an empty, non-nil slice.
func (a *Adapter) ListModels(ctx context.Context) []string {
	url := a.endpointURL(a.backend.Endpoints().Models)
	ctx, op := a.begin(ctx, observability.SpanListModels, opListModels,
		observability.String(observability.AttrLLMEndpoint, url),
	)

	ctx, cancel := context.WithTimeout(ctx, a.timeouts.List)
	defer cancel()

	models, err := a.listModels(ctx, url)
	if err != nil {
		op.end(ctx, statusError, err)
		return []string{}
	}

	op.end(ctx, statusSuccess, nil, observability.Int(observability.AttrModelsCount, len(models)))
	return models
}

func (a *Adapter) listModels(ctx context.Context, url string) ([]string, error) {
	body, err := utils.DoGet(ctx, a.httpClient, url)
	if err != nil {
		return nil, newTransportError(opListModels, url, err)
	}

	models, err := a.backend.ParseModels(body)
	if err != nil {
		return nil, err
	}
	if models == nil {
		models = []string{}
	}
	return models, nil
}

/*
	##### STREAM CHAT #####
*/

// StreamChat sends a chat request and returns its reply as a lazy stream of
// text fragments. Nothing is sent until the first fragment is pulled. A
// failure ends the stream with one Markdown fragment starting with "---"
// that describes it.
func (a *Adapter) StreamChat(ctx context.Context, request ai.ChatRequest) *ai.TextStream {
	return a.streamChain(ctx, request)
}

/*
	##### UNLOAD MODEL #####
*/

// UnloadModel asks the server to release model from memory. Backends without
// an unload endpoint get an "unsupported" result without any network I/O.
func (a *Adapter) UnloadModel(ctx context.Context, model string) ai.UnloadResult {
	path := a.backend.Endpoints().Unload
	url := a.endpointURL(path)
	ctx, op := a.begin(ctx, observability.SpanUnloadModel, opUnloadModel,
		observability.String(observability.AttrLLMModel, model),
	)

	if path == "" {
		result := ai.UnloadResult{Status: ai.UnloadUnsupported, Message: UnsupportedUnloadMessage}
		op.end(ctx, statusUnsupported, nil, observability.String(observability.AttrUnloadStatus, string(result.Status)))
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeouts.Unload)
	defer cancel()

	if _, err := utils.DoPostJSON(ctx, a.httpClient, url, a.backend.BuildUnloadPayload(model)); err != nil {
		transportErr := newTransportError(opUnloadModel, url, err)
		op.end(ctx, statusError, transportErr,
			observability.String(observability.AttrUnloadStatus, string(ai.UnloadError)),
		)
		return ai.UnloadResult{Status: ai.UnloadError, Message: transportErr.Error()}
	}

	op.end(ctx, statusSuccess, nil, observability.String(observability.AttrUnloadStatus, string(ai.UnloadSuccess)))
	return ai.UnloadResult{Status: ai.UnloadSuccess, Message: fmt.Sprintf("'%s' unloaded.", model)}
}
