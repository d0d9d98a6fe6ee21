// Package ai defines the shared, provider-agnostic types used by every local
// LLM backend (Ollama, LM Studio, Koboldcpp). Each backend package maps these
// types to its own wire format, keeping the adapter decoupled from
// provider-specific details.
//
// The central interface is [Backend], a small strategy that knows a server's
// endpoints, request payload shape and streaming line format. Requests flow in
// as [ChatRequest]; streamed replies come back as a [TextStream] of plain text
// fragments. Failures are classified as [TransportError] or [ProtocolError].
package ai
