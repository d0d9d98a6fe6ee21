package ai

import (
	"errors"
	"fmt"
)

// TransportError reports a failure to talk to the backend: connection refused,
// timeout, a non-2xx status or a broken read mid-stream.
type TransportError struct {
	Op         string // "list_models", "stream_chat" or "unload_model"
	URL        string
	StatusCode int    // Zero when no response was received
	Body       string // Rendered error body for non-2xx responses
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("%s %s: status %d: %s", e.Op, e.URL, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("%s %s: status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a response body that could not be decoded into the
// shape the backend is expected to produce.
type ProtocolError struct {
	Raw string // The offending payload
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// NewProtocolError wraps a decode failure together with the payload that caused it.
func NewProtocolError(raw string, err error) *ProtocolError {
	return &ProtocolError{Raw: raw, Err: err}
}

// IsTransportError reports whether err is, or wraps, a *TransportError.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// IsProtocolError reports whether err is, or wraps, a *ProtocolError.
func IsProtocolError(err error) bool {
	var protocolErr *ProtocolError
	return errors.As(err, &protocolErr)
}
