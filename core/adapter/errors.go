package adapter

import (
	"errors"
	"fmt"

	"github.com/leofalp/localllm/internal/utils"
	"github.com/leofalp/localllm/providers/ai"
)

// ErrUnknownProvider is returned by New for a ProviderKind it cannot serve.
var ErrUnknownProvider = errors.New("unknown provider kind")

// UnsupportedUnloadMessage is the message of the result returned when the
// backend has no unload endpoint.
const UnsupportedUnloadMessage = "Unsupported for LM Studio and Koboldcpp"

const (
	opListModels  = "list_models"
	opStreamChat  = "stream_chat"
	opUnloadModel = "unload_model"
)

// newTransportError wraps a failure from the HTTP helpers, lifting status and
// body out of a *utils.StatusError when there is one.
func newTransportError(op, url string, err error) *ai.TransportError {
	transportErr := &ai.TransportError{Op: op, URL: url, Err: err}

	var statusErr *utils.StatusError
	if errors.As(err, &statusErr) {
		transportErr.StatusCode = statusErr.StatusCode
		transportErr.Body = statusErr.Body
	}
	return transportErr
}

/*
	##### STREAM ERROR FRAGMENTS #####
*/

func connectionErrorFragment(err error) string {
	return fmt.Sprintf("--- \n**API Connection Error:**\n\n`%v`", err)
}

func requestErrorFragment(err error) string {
	return fmt.Sprintf("--- \n**Request Error:**\n\n`%v`", err)
}

// decodeErrorFragment renders a protocol failure together with every line
// received so far, so the user can see what the server actually sent.
func decodeErrorFragment(err error, transcript string) string {
	if transcript == "" {
		transcript = "Response was empty."
	}
	return fmt.Sprintf(
		"--- \n**API Error: Failed to decode the server's response.**\n\n"+
			"**Decode Error:** `%v`\n\n"+
			"**Full raw response from server:**\n\n```\n%s\n```",
		err, transcript,
	)
}

// errorType classifies err for the error.type attribute.
func errorType(err error) string {
	switch {
	case ai.IsTransportError(err):
		return "transport"
	case ai.IsProtocolError(err):
		return "protocol"
	default:
		return "request"
	}
}
