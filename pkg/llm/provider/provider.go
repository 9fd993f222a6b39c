package provider

import (
	"context"
	"io"

	"github.com/papercomputeco/gita/pkg/llm"
)

// Provider issues single-shot generation calls against one AI API family.
type Provider interface {
	// Name returns the canonical provider name (e.g., "gemini", "openai")
	Name() string

	// Complete sends one generation request and returns the first
	// candidate's text, trimmed. A response without candidates is not an
	// error: Complete returns an empty string.
	Complete(ctx context.Context, req llm.CompletionRequest) (string, error)
}

// Streamer is implemented by providers that can stream a chat completion
// as OpenAI-style server-sent events.
type Streamer interface {
	Provider

	// OpenStream starts a streamed completion and returns the raw event
	// stream body. The caller owns the body and must close it.
	// A non-success status is returned as *llm.StatusError.
	OpenStream(ctx context.Context, req llm.StreamRequest) (io.ReadCloser, error)
}
