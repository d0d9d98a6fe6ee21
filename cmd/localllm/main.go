// Command localllm lists, chats with and unloads models on a local Ollama,
// LM Studio or Koboldcpp server.
//
// Usage:
//
//	localllm [global flags] models|chat|unload|probe [flags]
//
// Configuration is read from an optional YAML file (-config), LOCALLLM_*
// environment variables and a .env file in the working directory; global
// flags override all of them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leofalp/localllm/core/adapter"
	"github.com/leofalp/localllm/internal/config"
	"github.com/leofalp/localllm/providers/observability"
	"github.com/leofalp/localllm/providers/observability/promobs"
	"github.com/leofalp/localllm/providers/observability/slogobs"
)

const usage = `Usage: localllm [global flags] <command> [flags]

Commands:
  models    list the models the server offers
  chat      stream a chat reply (one-shot or -interactive)
  unload    release a model from memory (Ollama only)
  probe     list models on every provider concurrently

Global flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// env is what every command needs: resolved configuration, the observer and
// the streams to talk to the user on.
type env struct {
	cfg      *config.Config
	observer observability.Provider
	logger   *slog.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

type command func(ctx context.Context, e *env, args []string) error

var commands = map[string]command{
	"models": runModels,
	"chat":   runChat,
	"unload": runUnload,
	"probe":  runProbe,
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("localllm", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		_, _ = fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}

	configPath := flags.String("config", "", "path to a YAML configuration file")
	provider := flags.String("provider", "", "Ollama, LM Studio or Koboldcpp")
	baseURL := flags.String("base-url", "", "server address (default: the provider's usual local port)")
	logLevel := flags.String("log-level", "", "debug, info, warn or error")
	logFormat := flags.String("log-format", "", "compact or json")
	metricsAddr := flags.String("metrics-addr", "", "serve Prometheus metrics on this address")

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	name := flags.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		flags.Usage()
		return 2
	}

	if err := config.LoadDotEnv(); err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	override(&cfg.Provider, *provider)
	override(&cfg.BaseURL, *baseURL)
	override(&cfg.Log.Level, *logLevel)
	override(&cfg.Log.Format, *logFormat)
	override(&cfg.Metrics.Addr, *metricsAddr)

	var metrics observability.Metrics
	if cfg.Metrics.Addr != "" {
		collector, shutdown, err := serveMetrics(cfg.Metrics.Addr, stderr)
		if err != nil {
			_, _ = fmt.Fprintln(stderr, "error:", err)
			return 1
		}
		defer shutdown()
		metrics = collector
	}

	observerOptions := []slogobs.Option{
		slogobs.WithOutput(stderr),
		slogobs.WithFormat(slogobs.ParseFormat(cfg.Log.Format)),
		slogobs.WithLevel(slogobs.ParseLogLevel(cfg.Log.Level)),
	}
	if metrics != nil {
		observerOptions = append(observerOptions, slogobs.WithMetrics(metrics))
	}

	observer := slogobs.New(observerOptions...)
	e := &env{
		cfg:      cfg,
		observer: observer,
		logger:   observer.Logger(),
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
	}

	if err := cmd(ctx, e, flags.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func override(target *string, value string) {
	if value != "" {
		*target = value
	}
}

// newAdapter builds the adapter for the configured provider.
func (e *env) newAdapter(opts ...adapter.Option) (*adapter.Adapter, error) {
	kind, err := e.cfg.ProviderKind()
	if err != nil {
		return nil, err
	}

	opts = append([]adapter.Option{
		adapter.WithObserver(e.observer),
		adapter.WithTimeouts(e.cfg.Timeouts),
		adapter.WithLenientJSON(e.cfg.LenientJSON),
	}, opts...)
	return adapter.New(kind, e.cfg.BaseURL, opts...)
}

// serveMetrics exposes a fresh registry on addr/metrics. The returned
// function stops the server.
func serveMetrics(addr string, stderr io.Writer) (*promobs.Collector, func(), error) {
	registry := prometheus.NewRegistry()
	collector, err := promobs.NewCollector(registry, "localllm")
	if err != nil {
		return nil, nil, fmt.Errorf("registering metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			_, _ = fmt.Fprintln(stderr, "metrics server:", err)
		}
	}()

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
	return collector, shutdown, nil
}
