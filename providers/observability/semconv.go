package observability

// Semantic conventions for observability attributes.
// These constants define standard attribute names to ensure consistency
// across the adapter, its middleware and the metric backends.

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the provider slug ("ollama", "lmstudio", "koboldcpp")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API base URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrOperation is the adapter operation ("list_models", "stream_chat", "unload_model")
	AttrOperation = "llm.operation"

	// AttrRequestID is the per-call identifier generated by the adapter
	AttrRequestID = "llm.request.id"
)

// --- Request/Response Attributes ---

const (
	// AttrRequestMessagesCount is the number of messages in the request
	AttrRequestMessagesCount = "request.messages_count"

	// AttrRequestImagesCount is the number of images attached to the request
	AttrRequestImagesCount = "request.images_count"

	// AttrModelsCount is the number of models returned by a listing
	AttrModelsCount = "response.models_count"

	// AttrStreamFragments is the number of fragments produced by a stream
	AttrStreamFragments = "stream.fragments"

	// AttrStreamAbandoned is true when the consumer stopped iterating early
	AttrStreamAbandoned = "stream.abandoned"

	// AttrUnloadStatus is the status of an unload request
	AttrUnloadStatus = "unload.status"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, etc.)
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"

	// AttrHTTPDuration is the time to receive response headers
	AttrHTTPDuration = "http.request.duration"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrErrorType is "transport" or "protocol"
	AttrErrorType = "error.type"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status ("ok" or "error")
	AttrStatus = "status"
)

// --- Span Names ---

const (
	SpanListModels  = "adapter.list_models"
	SpanStreamChat  = "adapter.stream_chat"
	SpanUnloadModel = "adapter.unload_model"
)

// --- Event Names ---

const (
	// EventHTTPRequestPrepared marks a serialized request about to be sent
	EventHTTPRequestPrepared = "http.request.prepared"

	// EventHTTPRequestError marks a request that never produced a response
	EventHTTPRequestError = "http.request.error"

	// EventHTTPResponseStarted marks the arrival of response headers
	EventHTTPResponseStarted = "http.response.started"

	// EventStreamFirstFragment marks the first fragment of a stream
	EventStreamFirstFragment = "stream.first_fragment"
)

// --- Metric Names ---

const (
	// MetricRequestCount counts adapter operations by provider, operation and status
	MetricRequestCount = "localllm.request.count"

	// MetricRequestDuration records adapter operation duration in seconds
	MetricRequestDuration = "localllm.request.duration"

	// MetricStreamFragments counts fragments yielded to callers
	MetricStreamFragments = "localllm.stream.fragments"
)
