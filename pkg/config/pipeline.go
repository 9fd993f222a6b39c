package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/papercomputeco/gita/pkg/generation"
)

// FromViper reads the effective configuration out of v, with flags,
// environment and config file already layered in.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Server: ServerConfig{
			Listen:  v.GetString("server.listen"),
			LogFile: v.GetString("server.log_file"),
		},
		Provider: ProviderConfig{
			DirectAPIKey:   v.GetString("provider.direct_api_key"),
			DirectModel:    v.GetString("provider.direct_model"),
			DirectBaseURL:  v.GetString("provider.direct_base_url"),
			GatewayAPIKey:  v.GetString("provider.gateway_api_key"),
			GatewayModel:   v.GetString("provider.gateway_model"),
			GatewayBaseURL: v.GetString("provider.gateway_base_url"),
		},
		Generation: GenerationConfig{
			Temperature:     v.GetFloat64("generation.temperature"),
			MaxTokensShort:  v.GetInt("generation.max_tokens_short"),
			MaxTokensLong:   v.GetInt("generation.max_tokens_long"),
			TimeoutSeconds:  v.GetInt("generation.timeout_seconds"),
			BatchIntervalMS: v.GetInt("generation.batch_interval_ms"),
		},
		Client: ClientConfig{
			ChatTarget:        v.GetString("client.chat_target"),
			APITarget:         v.GetString("client.api_target"),
			APIKey:            v.GetString("client.api_key"),
			PreferredLanguage: v.GetString("client.preferred_language"),
		},
	}
}

// Pipeline projects the provider and generation sections onto the
// dispatcher's configuration.
func (c *Config) Pipeline() generation.PipelineConfig {
	return generation.PipelineConfig{
		DirectAPIKey:   c.Provider.DirectAPIKey,
		DirectModel:    c.Provider.DirectModel,
		DirectBaseURL:  c.Provider.DirectBaseURL,
		GatewayAPIKey:  c.Provider.GatewayAPIKey,
		GatewayModel:   c.Provider.GatewayModel,
		GatewayBaseURL: c.Provider.GatewayBaseURL,
		Temperature:    c.Generation.Temperature,
		MaxTokensShort: c.Generation.MaxTokensShort,
		MaxTokensLong:  c.Generation.MaxTokensLong,
		Timeout:        time.Duration(c.Generation.TimeoutSeconds) * time.Second,
	}
}

// BatchInterval is the pause between bulk generation calls.
func (c *Config) BatchInterval() time.Duration {
	return time.Duration(c.Generation.BatchIntervalMS) * time.Millisecond
}
