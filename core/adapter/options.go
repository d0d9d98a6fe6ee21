package adapter

import (
	"net/http"
	"time"

	"github.com/leofalp/localllm/providers/observability"
)

const (
	DefaultListTimeout   = 10 * time.Second
	DefaultChatTimeout   = 300 * time.Second
	DefaultUnloadTimeout = 20 * time.Second
)

// Timeouts bounds each operation. The chat timeout covers the whole stream,
// from the request until the last fragment is read. Zero fields keep their
// defaults.
type Timeouts struct {
	List   time.Duration `mapstructure:"list" yaml:"list"`
	Chat   time.Duration `mapstructure:"chat" yaml:"chat"`
	Unload time.Duration `mapstructure:"unload" yaml:"unload"`
}

// DefaultTimeouts returns 10s for listing, 300s for chat and 20s for unloading.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		List:   DefaultListTimeout,
		Chat:   DefaultChatTimeout,
		Unload: DefaultUnloadTimeout,
	}
}

func (t Timeouts) withDefaults() Timeouts {
	defaults := DefaultTimeouts()
	if t.List <= 0 {
		t.List = defaults.List
	}
	if t.Chat <= 0 {
		t.Chat = defaults.Chat
	}
	if t.Unload <= 0 {
		t.Unload = defaults.Unload
	}
	return t
}

// Option configures an Adapter at construction time.
type Option func(*Adapter)

// WithHTTPClient replaces the HTTP client used for every request. Timeouts
// are still applied per operation through the request context.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Adapter) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// WithObserver enables tracing spans, metrics and structured logs for every
// operation.
func WithObserver(observer observability.Provider) Option {
	return func(a *Adapter) {
		a.observer = observer
	}
}

// WithTimeouts overrides the per-operation timeouts.
func WithTimeouts(timeouts Timeouts) Option {
	return func(a *Adapter) {
		a.timeouts = timeouts.withDefaults()
	}
}

// WithLenientJSON makes streamed frames that fail to decode go through JSON
// repair before being reported as a protocol error. Backends that do not
// implement ai.LenientBackend are unaffected.
func WithLenientJSON(enabled bool) Option {
	return func(a *Adapter) {
		a.lenient = enabled
	}
}

// WithStreamMiddleware appends middlewares to the StreamChat chain. The first
// middleware given is the outermost wrapper.
func WithStreamMiddleware(middlewares ...StreamMiddleware) Option {
	return func(a *Adapter) {
		a.middlewares = append(a.middlewares, middlewares...)
	}
}
