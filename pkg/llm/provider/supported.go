package provider

import (
	"fmt"
	"net/http"

	"github.com/papercomputeco/gita/pkg/llm/provider/gemini"
	"github.com/papercomputeco/gita/pkg/llm/provider/openai"
)

// Supported provider type constants
const (
	Gemini = "gemini"
	OpenAI = "openai"
)

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{Gemini, OpenAI}
}

// New creates a new Provider instance for the given provider type.
// A nil client uses http.DefaultClient.
// Returns an error if the provider type is not recognized.
func New(providerType string, client *http.Client) (Provider, error) {
	switch providerType {
	case Gemini:
		return gemini.New(client), nil
	case OpenAI:
		return openai.New(client), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", providerType, SupportedProviders())
	}
}

// NewStreamer creates the streaming-capable provider. Only the OpenAI-style
// gateway streams.
func NewStreamer(client *http.Client) Streamer {
	return openai.New(client)
}
