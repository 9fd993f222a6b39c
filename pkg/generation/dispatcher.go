package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/papercomputeco/gita/pkg/llm"
	"github.com/papercomputeco/gita/pkg/llm/provider"
	"github.com/papercomputeco/gita/pkg/llm/provider/gemini"
	"github.com/papercomputeco/gita/pkg/llm/provider/openai"
	"github.com/papercomputeco/gita/pkg/logger"
)

// ErrInvalidConfig is returned for a PipelineConfig that fails validation.
var ErrInvalidConfig = errors.New("invalid pipeline config")

// Defaults for PipelineConfig.
const (
	DefaultDirectModel    = "gemini-2.5-flash"
	DefaultGatewayModel   = "google/gemini-2.5-flash"
	DefaultTemperature    = 0.7
	DefaultMaxTokensShort = 1024
	DefaultMaxTokensLong  = 4096
	DefaultTimeout        = 60 * time.Second
)

// Branch names which provider family serves a call.
type Branch string

const (
	BranchNone    Branch = ""
	BranchDirect  Branch = "direct"
	BranchGateway Branch = "gateway"
)

// PipelineConfig carries everything the dispatcher needs: credentials,
// models, sampling temperature, token caps and the per-call deadline.
// It is built by the process entry point and passed in explicitly.
type PipelineConfig struct {
	// DirectAPIKey is the operator's key for the direct (Gemini) provider.
	// When non-blank it takes precedence over the gateway.
	DirectAPIKey  string
	DirectModel   string
	DirectBaseURL string

	// GatewayAPIKey is the key for the OpenAI-style gateway.
	GatewayAPIKey  string
	GatewayModel   string
	GatewayBaseURL string

	// Temperature in [0, 1].
	Temperature float64

	MaxTokensShort int
	MaxTokensLong  int

	// Timeout bounds each single-shot call. Zero disables it.
	Timeout time.Duration
}

// DefaultPipelineConfig returns a config with no credentials and default
// models, caps and timeout.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		DirectModel:    DefaultDirectModel,
		DirectBaseURL:  gemini.DefaultBaseURL,
		GatewayModel:   DefaultGatewayModel,
		GatewayBaseURL: openai.DefaultBaseURL,
		Temperature:    DefaultTemperature,
		MaxTokensShort: DefaultMaxTokensShort,
		MaxTokensLong:  DefaultMaxTokensLong,
		Timeout:        DefaultTimeout,
	}
}

// Validate checks the scalar settings. Missing credentials are not a
// validation error: they are reported per call as llm.ErrNoCredential.
func (c PipelineConfig) Validate() error {
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("%w: temperature %v outside [0, 1]", ErrInvalidConfig, c.Temperature)
	}
	if c.MaxTokensShort <= 0 || c.MaxTokensLong <= 0 {
		return fmt.Errorf("%w: token caps must be positive", ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}
	return nil
}

// Branch returns the provider family a call would use: direct when a direct
// key is set, otherwise gateway when a gateway key is set, otherwise none.
func (c PipelineConfig) Branch() Branch {
	switch {
	case strings.TrimSpace(c.DirectAPIKey) != "":
		return BranchDirect
	case strings.TrimSpace(c.GatewayAPIKey) != "":
		return BranchGateway
	default:
		return BranchNone
	}
}

// MaxTokens returns the token cap for a budget class.
func (c PipelineConfig) MaxTokens(b Budget) int {
	if b == BudgetShort {
		return c.MaxTokensShort
	}
	return c.MaxTokensLong
}

// Dispatcher routes generation calls to exactly one provider per call.
type Dispatcher struct {
	cfg     atomic.Pointer[PipelineConfig]
	direct  provider.Provider
	gateway provider.Streamer
	client  *http.Client
	logger  *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithDirectProvider replaces the direct (Gemini) provider.
func WithDirectProvider(p provider.Provider) Option {
	return func(d *Dispatcher) { d.direct = p }
}

// WithGatewayProvider replaces the gateway provider.
func WithGatewayProvider(p provider.Streamer) Option {
	return func(d *Dispatcher) { d.gateway = p }
}

// WithHTTPClient sets the client used by the default providers.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) { d.client = c }
}

// WithLogger sets the dispatcher logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher validates cfg and returns a Dispatcher.
func NewDispatcher(cfg PipelineConfig, opts ...Option) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Dispatcher{logger: logger.Nop()}
	for _, opt := range opts {
		opt(d)
	}

	if d.direct == nil {
		direct, err := provider.New(provider.Gemini, d.client)
		if err != nil {
			return nil, err
		}
		d.direct = direct
	}
	if d.gateway == nil {
		d.gateway = provider.NewStreamer(d.client)
	}

	d.cfg.Store(&cfg)
	return d, nil
}

// Config returns the active configuration.
func (d *Dispatcher) Config() PipelineConfig {
	return *d.cfg.Load()
}

// UpdateConfig swaps the configuration for subsequent calls. Calls already
// in flight keep the configuration they started with.
func (d *Dispatcher) UpdateConfig(cfg PipelineConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	d.cfg.Store(&cfg)
	d.logger.Info("pipeline config updated", "branch", cfg.Branch())
	return nil
}

// Generate builds the prompt for req and dispatches it.
func (d *Dispatcher) Generate(ctx context.Context, req Request) (*Result, error) {
	prompt, err := Build(req)
	if err != nil {
		return nil, err
	}
	return d.Dispatch(ctx, prompt, req.Type)
}

// Dispatch sends prompt to the provider selected by the active credentials
// and normalizes the reply for tag.
//
// With no credential at all it returns llm.ErrNoCredential without touching
// the network. Gateway 429 and 402 responses come back classified as
// llm.ErrRateLimited and llm.ErrQuotaExhausted. A reply without candidates
// yields an empty RawText, not an error.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt Prompt, tag ContentType) (*Result, error) {
	cfg := d.cfg.Load()

	branch := cfg.Branch()
	if branch == BranchNone {
		return nil, llm.ErrNoCredential
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	req := llm.CompletionRequest{
		System:      prompt.System,
		User:        prompt.User,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens(tag.Budget()),
	}

	var p provider.Provider
	if branch == BranchDirect {
		p = d.direct
		req.APIKey, req.Model, req.BaseURL = cfg.DirectAPIKey, cfg.DirectModel, cfg.DirectBaseURL
	} else {
		p = d.gateway
		req.APIKey, req.Model, req.BaseURL = cfg.GatewayAPIKey, cfg.GatewayModel, cfg.GatewayBaseURL
	}

	log := d.logger.With("type", string(tag), "branch", string(branch), "model", req.Model)
	start := time.Now()

	text, err := p.Complete(ctx, req)
	if err != nil {
		log.Warn("generation failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("%s: %w", p.Name(), err)
	}

	log.Debug("generation completed", "chars", len(text), "duration", time.Since(start))

	result := Normalize(tag, strings.TrimSpace(text))
	return &result, nil
}

// Stream opens a streamed chat completion through the gateway. Streaming is
// only available on the gateway branch, so it needs a gateway key even when
// a direct key is configured. The caller owns the returned body.
func (d *Dispatcher) Stream(ctx context.Context, system string, messages []llm.Message) (io.ReadCloser, error) {
	cfg := d.cfg.Load()
	if strings.TrimSpace(cfg.GatewayAPIKey) == "" {
		return nil, llm.ErrNoCredential
	}

	body, err := d.gateway.OpenStream(ctx, llm.StreamRequest{
		BaseURL:     cfg.GatewayBaseURL,
		APIKey:      cfg.GatewayAPIKey,
		Model:       cfg.GatewayModel,
		System:      system,
		Messages:    messages,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokensLong,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.gateway.Name(), err)
	}

	return body, nil
}
