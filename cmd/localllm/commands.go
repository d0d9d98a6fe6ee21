package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/leofalp/localllm/core/adapter"
	"github.com/leofalp/localllm/core/adapter/middleware"
	"github.com/leofalp/localllm/providers/ai"
)

func newFlagSet(e *env, name string) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(e.stderr)
	return flags
}

/*
	##### MODELS #####
*/

func runModels(ctx context.Context, e *env, args []string) error {
	flags := newFlagSet(e, "models")
	output := flags.String("o", "text", "output format: text, json or yaml")
	if err := flags.Parse(args); err != nil {
		return err
	}
	format, err := parseOutputFormat(*output)
	if err != nil {
		return err
	}

	llm, err := e.newAdapter()
	if err != nil {
		return err
	}

	models := llm.ListModels(ctx)
	return render(e.stdout, format, models, func(w io.Writer) error {
		if len(models) == 0 {
			_, err := fmt.Fprintf(w, "no models found on %s (%s)\n", llm.BaseURL(), llm.Kind())
			return err
		}
		for _, model := range models {
			if _, err := fmt.Fprintln(w, model); err != nil {
				return err
			}
		}
		return nil
	})
}

/*
	##### CHAT #####
*/

// stringList collects a repeatable string flag.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func runChat(ctx context.Context, e *env, args []string) error {
	flags := newFlagSet(e, "chat")
	model := flags.String("model", e.cfg.Model, "model to chat with")
	system := flags.String("system", "", "system prompt")
	interactive := flags.Bool("interactive", false, "keep reading prompts from stdin until EOF or /exit")
	var images stringList
	flags.Var(&images, "image", "image file to attach to the prompt (repeatable)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *model == "" {
		return errors.New("no model given (use -model or set model in the configuration)")
	}

	llm, err := e.newAdapter(adapter.WithStreamMiddleware(
		middleware.NewLoggingMiddleware(e.logger, middleware.LogLevelStandard),
	))
	if err != nil {
		return err
	}

	var history []ai.Message
	if *system != "" {
		history = append(history, ai.Message{Role: ai.RoleSystem, Content: *system})
	}

	if !*interactive {
		prompt := strings.Join(flags.Args(), " ")
		if prompt == "" {
			return errors.New("no prompt given")
		}
		history = append(history, ai.Message{Role: ai.RoleUser, Content: prompt})
		_, err := streamReply(ctx, e.stdout, llm, ai.ChatRequest{Model: *model, Messages: history, Images: images})
		return err
	}

	return chatLoop(ctx, e, llm, *model, history, images)
}

// chatLoop runs a read-prompt/stream-reply loop. The conversation lives here,
// not in the adapter. Images go with the first prompt only.
func chatLoop(ctx context.Context, e *env, llm *adapter.Adapter, model string, history []ai.Message, images []string) error {
	scanner := bufio.NewScanner(e.stdin)
	for {
		if _, err := fmt.Fprint(e.stdout, "> "); err != nil {
			return err
		}
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(e.stdout)
			return scanner.Err()
		}

		prompt := strings.TrimSpace(scanner.Text())
		switch prompt {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		}

		history = append(history, ai.Message{Role: ai.RoleUser, Content: prompt})
		reply, err := streamReply(ctx, e.stdout, llm, ai.ChatRequest{Model: model, Messages: history, Images: images})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			// The failure was printed in-band; keep the conversation going
			// without the turn that failed.
			history = history[:len(history)-1]
			continue
		}
		images = nil
		history = append(history, ai.Message{Role: ai.RoleAssistant, Content: reply})
	}
}

// streamReply prints fragments as they arrive and returns the full reply.
// The returned error is the typed failure behind an error fragment.
func streamReply(ctx context.Context, w io.Writer, llm *adapter.Adapter, request ai.ChatRequest) (string, error) {
	stream := llm.StreamChat(ctx, request)
	defer stream.Close()

	var reply strings.Builder
	for fragment := range stream.Iter() {
		reply.WriteString(fragment)
		if _, err := fmt.Fprint(w, fragment); err != nil {
			return reply.String(), err
		}
	}
	_, _ = fmt.Fprintln(w)

	return reply.String(), stream.Err()
}

/*
	##### UNLOAD #####
*/

func runUnload(ctx context.Context, e *env, args []string) error {
	flags := newFlagSet(e, "unload")
	model := flags.String("model", e.cfg.Model, "model to unload")
	output := flags.String("o", "text", "output format: text, json or yaml")
	if err := flags.Parse(args); err != nil {
		return err
	}
	format, err := parseOutputFormat(*output)
	if err != nil {
		return err
	}
	if *model == "" {
		return errors.New("no model given (use -model or set model in the configuration)")
	}

	llm, err := e.newAdapter()
	if err != nil {
		return err
	}

	result := llm.UnloadModel(ctx, *model)
	if err := render(e.stdout, format, result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s: %s\n", result.Status, result.Message)
		return err
	}); err != nil {
		return err
	}

	if result.Status == ai.UnloadError {
		return fmt.Errorf("unload of %q failed", *model)
	}
	return nil
}

/*
	##### PROBE #####
*/

type probeResult struct {
	Provider string   `json:"provider" yaml:"provider"`
	BaseURL  string   `json:"base_url" yaml:"base_url"`
	Models   []string `json:"models" yaml:"models"`
}

// runProbe lists models on every provider at once, one adapter each.
func runProbe(ctx context.Context, e *env, args []string) error {
	flags := newFlagSet(e, "probe")
	output := flags.String("o", "text", "output format: text, json or yaml")
	baseURLs := make(map[ai.ProviderKind]*string, len(ai.ProviderKinds))
	for _, kind := range ai.ProviderKinds {
		baseURLs[kind] = flags.String(kind.Slug(), adapter.DefaultBaseURL(kind), kind.String()+" address")
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	format, err := parseOutputFormat(*output)
	if err != nil {
		return err
	}

	results := make([]probeResult, len(ai.ProviderKinds))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, kind := range ai.ProviderKinds {
		llm, err := adapter.New(kind, *baseURLs[kind],
			adapter.WithObserver(e.observer),
			adapter.WithTimeouts(e.cfg.Timeouts),
		)
		if err != nil {
			return err
		}

		group.Go(func() error {
			results[i] = probeResult{
				Provider: kind.String(),
				BaseURL:  llm.BaseURL(),
				Models:   llm.ListModels(groupCtx),
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	return render(e.stdout, format, results, func(w io.Writer) error {
		for _, result := range results {
			status := fmt.Sprintf("%d models", len(result.Models))
			if len(result.Models) == 0 {
				status = "unreachable or empty"
			}
			if _, err := fmt.Fprintf(w, "%-10s %-26s %s\n", result.Provider, result.BaseURL, status); err != nil {
				return err
			}
		}
		return nil
	})
}
