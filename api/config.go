// Package api provides the HTTP server for AI content generation and the
// streaming chat relay.
package api

import (
	"context"
	"log/slog"

	"github.com/papercomputeco/gita/pkg/generation"
	"github.com/papercomputeco/gita/relay"
)

// Generator produces generation results. *generation.Dispatcher implements it.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (*generation.Result, error)
}

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8787")
	ListenAddr string

	// Generator serves POST /generate and the MCP generate_content tool.
	Generator Generator

	// Streamer serves POST /chat. When nil the chat route is not mounted.
	Streamer relay.Streamer

	// DisableMCP leaves the /mcp endpoint without tools.
	DisableMCP bool

	// Logger is the configured slog logger. Defaults to a no-op logger.
	Logger *slog.Logger
}
