// Package stream consumes a streamed chat completion on the client side: it
// opens the request, decodes the event stream incrementally, folds deltas
// into a live message and publishes each update.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/papercomputeco/gita/pkg/llm"
	"github.com/papercomputeco/gita/pkg/logger"
	"github.com/papercomputeco/gita/pkg/sse"
)

const (
	defaultReadSize = 4 * 1024
	maxErrorBody    = 64 * 1024
)

var (
	// ErrConsumerUsed is returned when Run is called on a consumer that has
	// already run. Consumers are single use.
	ErrConsumerUsed = errors.New("stream consumer already used")

	// ErrCancelled is returned when the caller abandons the stream.
	ErrCancelled = errors.New("stream cancelled")
)

// State is a position in the consumer lifecycle.
type State int32

const (
	StateIdle State = iota
	StateOpening
	StateStreaming
	StateCompleted
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpening:
		return "opening"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// PublishFunc receives the full message each time a non-empty delta lands.
type PublishFunc func(snapshot string)

// Config configures a Consumer.
type Config struct {
	// Endpoint is the streaming chat URL.
	Endpoint string

	// APIKey is sent as the bearer credential.
	APIKey string

	// HTTPClient defaults to http.DefaultClient. It should not carry an
	// overall Timeout, which would cut long replies short.
	HTTPClient *http.Client

	// ReadSize is the size of each body read. Defaults to 4 KiB.
	ReadSize int

	Logger *slog.Logger
}

// Consumer owns the lifecycle of one streamed chat request:
// Idle, Opening, Streaming and then exactly one of Completed, Failed or
// Cancelled. It never retries.
type Consumer struct {
	endpoint string
	apiKey   string
	client   *http.Client
	readSize int
	logger   *slog.Logger

	state atomic.Int32
	buf   *MessageBuffer
	acc   *Accumulator
}

// NewConsumer returns an idle Consumer.
func NewConsumer(cfg Config) *Consumer {
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	readSize := cfg.ReadSize
	if readSize <= 0 {
		readSize = defaultReadSize
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	buf := &MessageBuffer{}
	return &Consumer{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   client,
		readSize: readSize,
		logger:   log,
		buf:      buf,
		acc:      NewAccumulator(buf),
	}
}

// State returns the current lifecycle state.
func (c *Consumer) State() State {
	return State(c.state.Load())
}

// Buffer returns the message buffer. It is sealed once Run returns.
func (c *Consumer) Buffer() *MessageBuffer {
	return c.buf
}

// Run posts req and streams the reply, calling publish after every
// non-empty delta. It returns the complete message when the stream ends at
// EOF or at the terminator.
//
// A non-200 response fails with *llm.StatusError (429 and 402 are
// classified). Cancelling ctx stops the read loop at the next iteration,
// closes the body and returns an error wrapping ErrCancelled; publish is not
// called after cancellation is observed.
func (c *Consumer) Run(ctx context.Context, req llm.ChatRequest, publish PublishFunc) (string, error) {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateOpening)) {
		return "", ErrConsumerUsed
	}

	requestID := uuid.NewString()
	log := c.logger.With("request_id", requestID)

	body, err := c.open(ctx, req, requestID)
	if err != nil {
		return "", c.fail(ctx, log, err)
	}
	defer body.Close()

	c.setState(StateStreaming)
	log.Debug("stream opened", "endpoint", c.endpoint)

	lines := sse.NewLineReader()
	chunk := make([]byte, c.readSize)

	for {
		if err := ctx.Err(); err != nil {
			body.Close()
			return "", c.cancel(log, err)
		}

		n, readErr := body.Read(chunk)
		if n > 0 {
			lines.Write(chunk[:n])
			if c.drain(ctx, lines, publish) {
				return c.complete(log, "terminator"), nil
			}
		}

		if errors.Is(readErr, io.EOF) {
			if line, ok := lines.Finish(); ok {
				c.apply(ctx, line, publish)
			}
			c.acc.Discard()
			return c.complete(log, "eof"), nil
		}

		if readErr != nil {
			if ctx.Err() != nil {
				return "", c.cancel(log, ctx.Err())
			}
			return "", c.fail(ctx, log, fmt.Errorf("reading stream: %w", readErr))
		}
	}
}

// drain applies every complete buffered line and reports whether a
// terminator was seen.
func (c *Consumer) drain(ctx context.Context, lines *sse.LineReader, publish PublishFunc) bool {
	for {
		line, ok := lines.Next()
		if !ok {
			return false
		}

		out := c.acc.Apply(sse.Classify(line))
		switch out.Kind {
		case Terminate:
			return true
		case Recoverable:
			lines.Unread(out.Reparse)
		case Continue:
			c.publish(ctx, out, publish)
		}
	}
}

// apply handles the final unterminated line. There is no more input to
// re-join a fragment with, so a Recoverable outcome is dropped.
func (c *Consumer) apply(ctx context.Context, line string, publish PublishFunc) {
	out := c.acc.Apply(sse.Classify(line))
	if out.Kind == Continue {
		c.publish(ctx, out, publish)
	}
}

func (c *Consumer) publish(ctx context.Context, out Outcome, publish PublishFunc) {
	if publish == nil || out.Delta == "" || ctx.Err() != nil {
		return
	}
	publish(out.Snapshot)
}

func (c *Consumer) open(ctx context.Context, req llm.ChatRequest, requestID string) (io.ReadCloser, error) {
	if req.PreferredLanguage == "" {
		req.PreferredLanguage = llm.LanguageEnglish
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("X-Request-Id", requestID)
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, llm.NewStatusError(resp.StatusCode, respBody)
	}

	return resp.Body, nil
}

func (c *Consumer) complete(log *slog.Logger, reason string) string {
	c.buf.Seal()
	c.setState(StateCompleted)

	log.Debug("stream completed",
		"reason", reason,
		"bytes", c.buf.Len(),
		"dropped_fragments", c.acc.Dropped(),
	)

	return c.buf.Snapshot()
}

func (c *Consumer) fail(ctx context.Context, log *slog.Logger, err error) error {
	if ctx.Err() != nil {
		return c.cancel(log, ctx.Err())
	}

	c.buf.Seal()
	c.setState(StateFailed)
	log.Warn("stream failed", "error", err)

	return err
}

func (c *Consumer) cancel(log *slog.Logger, cause error) error {
	c.buf.Seal()
	c.setState(StateCancelled)
	log.Debug("stream cancelled", "cause", cause)

	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

func (c *Consumer) setState(s State) {
	c.state.Store(int32(s))
}
