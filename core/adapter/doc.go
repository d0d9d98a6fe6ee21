// Package adapter provides the Backend Adapter: a single, stateless client
// that speaks to one local LLM server (Ollama, LM Studio or Koboldcpp) through
// a provider strategy ([ai.Backend]) and exposes three operations:
//
//   - [Adapter.ListModels] returns the model identifiers the server offers.
//   - [Adapter.StreamChat] streams a chat reply as text fragments.
//   - [Adapter.UnloadModel] asks the server to release a model (Ollama only).
//
// None of the operations return Go errors. Failures are converted at this
// boundary: listing yields an empty slice, streaming yields one final
// Markdown fragment describing the problem, and unloading yields an
// [ai.UnloadResult] with an error status. The typed failure behind a stream
// fragment remains available through [ai.TextStream.Err].
//
// # Usage
//
//	llm, err := adapter.New(ai.ProviderOllama, "",
//	    adapter.WithObserver(slogobs.New()),
//	)
//	if err != nil {
//	    return err
//	}
//
//	stream := llm.StreamChat(ctx, ai.ChatRequest{
//	    Model:    "llama3:8b",
//	    Messages: []ai.Message{{Role: ai.RoleUser, Content: "Hello"}},
//	})
//	for fragment := range stream.Iter() {
//	    fmt.Print(fragment)
//	}
//
// An Adapter holds no mutable state after construction and can be shared
// between goroutines; each returned stream belongs to a single consumer.
package adapter
