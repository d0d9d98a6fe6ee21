package ai

// Backend captures everything that differs between the supported local LLM
// servers. The adapter owns HTTP and lifecycle concerns; a Backend only knows
// its own paths, request shape and response framing, which keeps each server's
// wire quirks isolated and testable without a network.
type Backend interface {
	// Kind returns the provider identity this backend implements.
	Kind() ProviderKind

	// Endpoints returns the request paths relative to the base URL.
	Endpoints() Endpoints

	// BuildChatPayload converts a generic request into the JSON body posted to
	// the chat endpoint. Images have already been read and encoded; they belong
	// to the final user message. The request's Messages must not be mutated.
	BuildChatPayload(request ChatRequest, images []EncodedImage) (any, error)

	// ParseModels extracts model identifiers from the body returned by the
	// models endpoint, applying the backend's ownership filter. An unparseable
	// body is reported as a *ProtocolError.
	ParseModels(body []byte) ([]string, error)

	// ParseStreamLine interprets a single non-empty line of the streaming chat
	// response. A *ProtocolError aborts the stream; backends that tolerate
	// malformed lines return a zero StreamLine instead.
	ParseStreamLine(line string) (StreamLine, error)

	// BuildUnloadPayload returns the JSON body posted to the unload endpoint.
	// It is only called when Endpoints().Unload is non-empty.
	BuildUnloadPayload(model string) any
}

// LenientBackend is implemented by backends that can retry a failed line
// decode on repaired JSON. The adapter switches to it when lenient JSON
// handling is enabled.
type LenientBackend interface {
	Backend
	ParseStreamLineLenient(line string) (StreamLine, error)
}
