// Package utils provides shared low-level helpers used throughout the localllm
// internals. It covers HTTP request helpers for both synchronous and
// streaming communication with local LLM servers, error body rendering,
// lenient JSON decoding and string helpers.
//
// Key entry points: [DoGet] and [DoPostJSON] for synchronous round-trips,
// [DoPostStream] together with [LineScanner] and [SSEPayload] for streamed
// responses, and [RepairJSON] for repairing malformed JSON.
package utils
