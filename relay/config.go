package relay

import (
	"context"
	"io"
	"log/slog"

	"github.com/papercomputeco/gita/pkg/llm"
)

// Streamer opens an upstream chat completion stream. *generation.Dispatcher
// implements it.
type Streamer interface {
	Stream(ctx context.Context, system string, messages []llm.Message) (io.ReadCloser, error)
}

// Config is the relay configuration.
type Config struct {
	// Streamer opens the upstream gateway stream. Required.
	Streamer Streamer

	// Logger is the configured slog logger. Defaults to a no-op logger.
	Logger *slog.Logger
}
