// Package ollama implements the ai.Backend strategy for an Ollama server,
// using the request and response types from github.com/ollama/ollama/api.
//
// Ollama is the only backend with an unload endpoint. Its chat stream is
// NDJSON; SSE-wrapped frames are accepted too.
package ollama
