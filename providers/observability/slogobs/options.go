package slogobs

import (
	"io"
	"log/slog"
	"os"

	"github.com/leofalp/localllm/providers/observability"
)

// Option is a functional option for configuring the Observer.
type Option func(*config)

// config holds the configuration for creating an Observer.
type config struct {
	format  Format
	level   slog.Level
	output  io.Writer
	logger  *slog.Logger // If provided, use this logger directly (bypass handler construction)
	metrics observability.Metrics
}

// WithFormat sets the log output format.
func WithFormat(format Format) Option {
	return func(c *config) {
		c.format = format
	}
}

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithOutput sets the output writer for logs.
func WithOutput(output io.Writer) Option {
	return func(c *config) {
		c.output = output
	}
}

// WithLogger uses an existing slog.Logger instead of creating a handler.
// This option takes precedence over format/level/output options.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics forwards Counter and Histogram calls to the given backend,
// typically a promobs.Collector.
func WithMetrics(metrics observability.Metrics) Option {
	return func(c *config) {
		c.metrics = metrics
	}
}

func defaultConfig() *config {
	return &config{
		format: GetFormatFromEnv(),
		level:  GetLogLevelFromEnv(),
		output: os.Stderr,
	}
}

func applyOptions(opts ...Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// newHandler builds the slog.Handler for the configured format.
func newHandler(cfg *config) slog.Handler {
	handlerOptions := &slog.HandlerOptions{Level: cfg.level}
	if cfg.format == FormatJSON {
		return slog.NewJSONHandler(cfg.output, handlerOptions)
	}
	return slog.NewTextHandler(cfg.output, handlerOptions)
}
