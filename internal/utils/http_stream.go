package utils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DoPostStream performs an HTTP POST request and returns the raw response with body
// left open for line-by-line reading. The caller is responsible for closing the
// response body when done reading. On error paths the body is read and closed
// before returning, and non-2xx statuses are reported as *StatusError.
func DoPostStream(ctx context.Context, client *http.Client, url string, body any) (*http.Response, error) {
	req, err := newJSONRequest(ctx, url, body)
	if err != nil {
		return nil, err
	}
	// Ollama streams NDJSON, the OpenAI-compatible servers stream SSE.
	req.Header.Set("Accept", "text/event-stream, application/x-ndjson")

	response, err := send(ctx, client, req)
	if err != nil {
		return nil, err
	}

	if err := checkStatus(response); err != nil {
		CloseWithLog(response.Body)
		return nil, err
	}

	return response, nil
}

// maxLineSize is the maximum size of a single streamed line (1 MB).
// The default bufio.Scanner limit is 64 KiB, which is too small for long
// completions delivered in one frame. If a line exceeds this limit Next
// returns an error wrapping bufio.ErrTooLong.
const maxLineSize = 1 * 1024 * 1024

// ssePrefix marks a server-sent-event data line.
const ssePrefix = "data: "

// DoneSentinel is the SSE payload that ends an OpenAI-style stream.
const DoneSentinel = "[DONE]"

// LineScanner reads a streaming response body one non-empty line at a time.
// Framing (SSE "data: " lines or bare NDJSON objects) is left to the caller so
// that each backend can apply its own rules.
type LineScanner struct {
	scanner *bufio.Scanner
}

// NewLineScanner creates a LineScanner over reader, accepting lines up to maxLineSize.
func NewLineScanner(reader io.Reader) *LineScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &LineScanner{scanner: scanner}
}

// Next returns the next non-empty line without its line terminator.
// Returns io.EOF when the reader is exhausted.
func (lineScanner *LineScanner) Next() (string, error) {
	for lineScanner.scanner.Scan() {
		line := strings.TrimRight(lineScanner.scanner.Text(), "\r")
		if line == "" {
			continue
		}
		return line, nil
	}

	if err := lineScanner.scanner.Err(); err != nil {
		return "", fmt.Errorf("stream read error: %w", err)
	}
	return "", io.EOF
}

// SSEPayload returns the trimmed payload of a "data: " line. The boolean is
// false for lines that are not SSE data lines.
func SSEPayload(line string) (string, bool) {
	if !strings.HasPrefix(line, ssePrefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(ssePrefix):]), true
}
