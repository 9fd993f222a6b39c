package generation

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

const maxErrorBody = 64 * 1024

// Generator produces a Result for a Request. Both Dispatcher and Client
// implement it.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// Client calls a remote gita server's POST /generate endpoint.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewClient returns a Client for the server at baseURL. A nil httpClient
// uses http.DefaultClient.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + "/generate",
		apiKey:   apiKey,
		http:     httpClient,
	}
}

// Generate posts req and decodes the result. Error statuses are returned as
// *llm.StatusError, so 429 and 402 stay classified end to end.
func (c *Client) Generate(ctx context.Context, req Request) (*Result, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, llm.NewStatusError(resp.StatusCode, body)
	}

	var decoded Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return decoded.Result(), nil
}
