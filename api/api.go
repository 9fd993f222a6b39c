package api

import (
	"errors"
	"log/slog"
	"net"
	"strings"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/papercomputeco/gita/api/mcp"
	"github.com/papercomputeco/gita/pkg/logger"
	"github.com/papercomputeco/gita/relay"
)

// AllowedHeaders are the request headers browsers may send cross-origin.
const AllowedHeaders = "authorization, x-client-info, apikey, content-type"

// Server is the API server for content generation and chat.
type Server struct {
	config Config
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
func NewServer(config Config) (*Server, error) {
	if config.Generator == nil {
		return nil, errors.New("generator is required")
	}
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		logger: config.Logger,
		app:    app,
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: AllowedHeaders,
	}))
	app.Use(requestid.New(requestid.Config{
		Header:    relay.RequestIDHeader,
		Generator: uuid.NewString,
	}))
	app.Use(compress.New(compress.Config{
		// Compressing an event stream would hold chunks back until the
		// encoder flushes.
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/chat")
		},
	}))

	app.Get("/ping", s.handlePing)
	app.Post("/generate", s.handleGenerate)

	if config.Streamer != nil {
		r, err := relay.New(relay.Config{
			Streamer: config.Streamer,
			Logger:   config.Logger.With("component", "relay"),
		})
		if err != nil {
			return nil, err
		}
		app.Post("/chat", r.Handle)
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Generator: config.Generator,
		Noop:      config.DisableMCP,
		Logger:    config.Logger.With("component", "mcp"),
	})
	if err != nil {
		return nil, err
	}
	app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the API server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting API server",
		"listen", listener.Addr().String(),
	)
	return s.app.Listener(listener)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
