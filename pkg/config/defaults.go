package config

import (
	"github.com/papercomputeco/gita/pkg/generation"
	"github.com/papercomputeco/gita/pkg/llm"
)

const (
	defaultListen = ":8787"

	defaultClientChatTarget = "http://localhost:8787/chat"
	defaultClientAPITarget  = "http://localhost:8787"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	p := generation.DefaultPipelineConfig()

	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen: defaultListen,
		},
		Provider: ProviderConfig{
			DirectModel:    p.DirectModel,
			DirectBaseURL:  p.DirectBaseURL,
			GatewayModel:   p.GatewayModel,
			GatewayBaseURL: p.GatewayBaseURL,
		},
		Generation: GenerationConfig{
			Temperature:     p.Temperature,
			MaxTokensShort:  p.MaxTokensShort,
			MaxTokensLong:   p.MaxTokensLong,
			TimeoutSeconds:  int(p.Timeout.Seconds()),
			BatchIntervalMS: int(generation.DefaultBatchInterval.Milliseconds()),
		},
		Client: ClientConfig{
			ChatTarget:        defaultClientChatTarget,
			APITarget:         defaultClientAPITarget,
			PreferredLanguage: llm.LanguageEnglish,
		},
	}
}
