// Package gemini implements the direct provider: Google's generateContent
// API called with an operator-supplied key.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/papercomputeco/gita/pkg/llm"
)

// DefaultBaseURL is the Generative Language API root.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const maxErrorBody = 64 * 1024

// Provider implements the direct provider over generateContent.
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
	return "gemini"
}

// Complete sends both prompts concatenated as one user instruction block and
// returns the text of the first candidate.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	baseURL := req.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	body := generateContentRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: joinPrompts(req.System, req.User)}},
		}},
		GenerationConfig: &generationConfig{Temperature: &req.Temperature},
	}
	if req.MaxTokens > 0 {
		body.GenerationConfig.MaxOutputTokens = &req.MaxTokens
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(baseURL, "/"), req.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", req.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", llm.NewStatusError(resp.StatusCode, respBody)
	}

	var parsed generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding gemini response: %w", err)
	}

	return firstCandidateText(parsed), nil
}

func joinPrompts(system, user string) string {
	switch {
	case system == "":
		return user
	case user == "":
		return system
	default:
		return system + "\n\n" + user
	}
}

func firstCandidateText(resp generateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Thought {
			continue
		}
		sb.WriteString(p.Text)
	}

	return strings.TrimSpace(sb.String())
}
