// Package openaicompat holds the OpenAI-compatible wire format shared by the
// LM Studio and Koboldcpp backends: the /v1/chat/completions request with
// multi-part image content, the /v1/models listing with owned_by tags, and
// extraction of delta text from streamed chunks.
package openaicompat
