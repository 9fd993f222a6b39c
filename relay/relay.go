// Package relay is the server half of the streaming chat: it opens a
// streamed completion on the AI gateway and forwards the event stream to the
// client byte for byte.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/gita/pkg/llm"
	"github.com/papercomputeco/gita/pkg/logger"
	"github.com/papercomputeco/gita/pkg/sse"
)

// RequestIDHeader is the header carrying the client-assigned request id.
const RequestIDHeader = "X-Request-Id"

// Relay forwards chat requests to the gateway and streams the reply back.
type Relay struct {
	streamer Streamer
	logger   *slog.Logger
}

// New creates a Relay.
func New(config Config) (*Relay, error) {
	if config.Streamer == nil {
		return nil, errors.New("streamer is required")
	}

	log := config.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Relay{
		streamer: config.Streamer,
		logger:   log,
	}, nil
}

// Handle serves POST /chat.
//
// Errors raised before the upstream stream opens are answered with a JSON
// {"error": ...} body: 429 and 402 keep their status, everything else is a
// 500. Once streaming starts the status is 200 and upstream bytes are
// relayed verbatim as text/event-stream.
func (r *Relay) Handle(c *fiber.Ctx) error {
	startTime := time.Now()
	requestID := c.GetRespHeader(RequestIDHeader, c.Get(RequestIDHeader))

	var req llm.ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	messages := conversation(req.Messages)
	if len(messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "messages are required"})
	}

	log := r.logger.With("request_id", requestID, "language", req.PreferredLanguage)

	// The stream outlives this handler: fasthttp recycles its RequestCtx once
	// the handler returns but the body is written afterwards from a separate
	// goroutine. The relay goroutine cancels ctx when it is done.
	ctx, cancel := context.WithCancel(context.Background())

	body, err := r.streamer.Stream(ctx, SystemPrompt(req.PreferredLanguage), messages)
	if err != nil {
		cancel()
		log.Warn("chat stream failed to open", "error", err)
		return c.Status(llm.HTTPStatus(err)).JSON(llm.ErrorResponse{Error: llm.UserMessage(err)})
	}

	log.Debug("chat stream opened", "message_count", len(messages))

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")

	// io.Pipe gives per-chunk backpressure: pw.Write blocks until fasthttp
	// has read the chunk and flushed it to the socket.
	pr, pw := io.Pipe()
	go r.forward(body, pw, cancel, log, startTime)

	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

// forward copies the upstream body into pw while observing the frames that
// pass through for logging.
func (r *Relay) forward(body io.ReadCloser, pw *io.PipeWriter, cancel context.CancelFunc, log *slog.Logger, startTime time.Time) {
	defer cancel()
	defer body.Close()

	var (
		frames     int
		terminated bool
	)

	tr := sse.NewTeeReader(body, pw)
	for {
		frame, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A write error means the client went away. Cancelling ctx
			// closes the upstream connection.
			log.Warn("chat relay interrupted", "error", err, "frames", frames)
			pw.CloseWithError(err)
			return
		}

		switch frame.Kind {
		case sse.FrameData:
			frames++
		case sse.FrameTerminator:
			terminated = true
		}
	}

	log.Debug("chat relay complete",
		"frames", frames,
		"terminated", terminated,
		"duration", time.Since(startTime),
	)
	pw.Close()
}

// conversation keeps the user and assistant turns of a client history. The
// system prompt is always the server's own.
func conversation(in []llm.Message) []llm.Message {
	out := make([]llm.Message, 0, len(in))
	for _, m := range in {
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}
