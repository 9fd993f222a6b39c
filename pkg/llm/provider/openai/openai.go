// Package openai implements the gateway provider: an OpenAI-compatible chat
// completions API, used both for single-shot generation and for streaming
// chat.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/papercomputeco/gita/pkg/llm"
)

// DefaultBaseURL is the AI gateway endpoint root.
const DefaultBaseURL = "https://ai.gateway.lovable.dev/v1"

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 * 1024

// ErrMalformedChunk is returned by ParseStreamChunk for a payload that is
// not syntactically valid JSON.
var ErrMalformedChunk = errors.New("malformed stream chunk")

// Provider implements the gateway provider over the chat completions API.
type Provider struct {
	client *http.Client
}

// New returns a Provider. A nil client uses http.DefaultClient.
func New(client *http.Client) *Provider {
	if client == nil {
		client = http.DefaultClient
	}
	return &Provider{client: client}
}

func (p *Provider) Name() string {
	return "openai"
}

// Complete sends the system and user prompts as distinct chat roles.
// HTTP 429 and 402 are returned as *llm.StatusError classified as
// llm.ErrRateLimited and llm.ErrQuotaExhausted.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	body := openaiRequest{
		Model: req.Model,
		Messages: []openaiMessage{
			{Role: llm.RoleSystem, Content: req.System},
			{Role: llm.RoleUser, Content: req.User},
		},
		Temperature: &req.Temperature,
	}
	if req.MaxTokens > 0 {
		body.MaxTokens = &req.MaxTokens
	}

	resp, err := p.post(ctx, req.BaseURL, req.APIKey, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding gateway response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", nil
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// OpenStream starts a streamed chat completion. The returned body carries
// "data: <json>" lines ending with "data: [DONE]".
func (p *Provider) OpenStream(ctx context.Context, req llm.StreamRequest) (io.ReadCloser, error) {
	messages := make([]openaiMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openaiMessage{Role: llm.RoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, openaiMessage{Role: m.Role, Content: m.Content})
	}

	body := openaiRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: &req.Temperature,
		Stream:      true,
	}
	if req.MaxTokens > 0 {
		body.MaxTokens = &req.MaxTokens
	}

	resp, err := p.post(ctx, req.BaseURL, req.APIKey, body)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

// post sends body to the chat completions endpoint and returns the response
// only when the status is 200.
func (p *Provider) post(ctx context.Context, baseURL, apiKey string, body openaiRequest) (*http.Response, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimRight(baseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	if body.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, llm.NewStatusError(resp.StatusCode, respBody)
	}

	return resp, nil
}

// ParseStreamChunk decodes one "data:" payload of a streamed completion.
//
// Decoding fails closed: a syntactically valid payload whose shape does not
// match (no choices, no delta, non-string content) yields a chunk with an
// empty Delta. Only invalid JSON returns an error, wrapping
// ErrMalformedChunk.
func ParseStreamChunk(payload []byte) (*llm.StreamChunk, error) {
	var chunk openaiStreamChunk
	if err := json.Unmarshal(payload, &chunk); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %w", ErrMalformedChunk, err)
		}
		return &llm.StreamChunk{}, nil
	}

	result := &llm.StreamChunk{Model: chunk.Model}
	if len(chunk.Choices) == 0 {
		return result, nil
	}

	choice := chunk.Choices[0]
	if choice.Delta.Content != nil {
		result.Delta = *choice.Delta.Content
	}
	if choice.FinishReason != nil {
		result.FinishReason = *choice.FinishReason
	}

	return result, nil
}
