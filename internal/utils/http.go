package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/localllm/providers/observability"
)

// maxResponseBodySize is the maximum response body size (10 MB). Enforced via
// io.LimitReader to prevent unbounded memory allocation from rogue responses.
const maxResponseBodySize int64 = 10 * 1024 * 1024

// maxErrorBodyLength caps the rendered error body carried by a StatusError.
const maxErrorBodyLength = 500

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string // Error body, HTML rendered to Markdown and truncated
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("non-2xx status %d", e.StatusCode)
	}
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, e.Body)
}

// DoGet performs an HTTP GET request and returns the response body.
// Non-2xx responses are returned as *StatusError.
func DoGet(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return doSync(ctx, client, req)
}

// DoPostJSON performs an HTTP POST request with a JSON body and returns the
// response body. Non-2xx responses are returned as *StatusError.
func DoPostJSON(ctx context.Context, client *http.Client, url string, body any) ([]byte, error) {
	req, err := newJSONRequest(ctx, url, body)
	if err != nil {
		return nil, err
	}

	return doSync(ctx, client, req)
}

// doSync sends req and reads the whole (capped) body, closing it before
// returning. It reports request progress to the span found in ctx, if any.
func doSync(ctx context.Context, client *http.Client, req *http.Request) ([]byte, error) {
	response, err := send(ctx, client, req)
	if err != nil {
		return nil, err
	}
	defer CloseWithLog(response.Body)

	if err := checkStatus(response); err != nil {
		return nil, err
	}

	respBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(observability.Int(observability.AttrHTTPResponseBodySize, len(respBody)))
	}

	return respBody, nil
}

func newJSONRequest(ctx context.Context, url string, body any) (*http.Request, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling body: %w", err)
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventHTTPRequestPrepared,
			observability.String(observability.AttrHTTPMethod, http.MethodPost),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPRequestBodySize, len(jsonBody)),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

// send executes req, recording either the failure or the response headers on
// the span found in ctx.
func send(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	span := observability.SpanFromContext(ctx)

	requestStart := time.Now()
	response, err := httpClient.Do(req)
	requestDuration := time.Since(requestStart)

	if err != nil {
		if span != nil {
			span.AddEvent(observability.EventHTTPRequestError,
				observability.Error(err),
				observability.Duration(observability.AttrHTTPDuration, requestDuration),
			)
		}
		return nil, fmt.Errorf("error sending request: %w", err)
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPResponseStarted,
			observability.Int(observability.AttrHTTPStatusCode, response.StatusCode),
			observability.Duration(observability.AttrHTTPDuration, requestDuration),
		)
	}

	return response, nil
}

// checkStatus converts a non-2xx response into a *StatusError. The body is
// read for the error message but not closed; callers own the body.
func checkStatus(response *http.Response) error {
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}

	errorBody, readErr := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
	if readErr != nil {
		return &StatusError{StatusCode: response.StatusCode, Status: response.Status}
	}

	return &StatusError{
		StatusCode: response.StatusCode,
		Status:     response.Status,
		Body:       RenderErrorBody(response.Header.Get("Content-Type"), errorBody),
	}
}

// RenderErrorBody turns an error response body into short readable text.
// HTML pages (reverse proxies, misrouted ports) are converted to Markdown so
// they read well inside chat output; everything is trimmed and truncated.
func RenderErrorBody(contentType string, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}

	if strings.Contains(strings.ToLower(contentType), "text/html") || strings.HasPrefix(text, "<") {
		if markdown, err := htmltomarkdown.ConvertString(text); err == nil {
			text = strings.TrimSpace(markdown)
		}
	}

	return TruncateString(text, maxErrorBodyLength)
}

// CloseWithLog closes c and logs a warning if that fails. Close errors on a
// response body never override the primary result of a call.
func CloseWithLog(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}
