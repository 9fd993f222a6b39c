package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/papercomputeco/gita/pkg/llm"
)

// Config represents the persistent gita configuration stored as config.toml
// in the .gita/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version    int              `toml:"version"`
	Server     ServerConfig     `toml:"server"`
	Provider   ProviderConfig   `toml:"provider"`
	Generation GenerationConfig `toml:"generation"`
	Client     ClientConfig     `toml:"client"`
}

// ServerConfig holds settings for gita serve.
type ServerConfig struct {
	Listen  string `toml:"listen,omitempty"`
	LogFile string `toml:"log_file,omitempty"`
}

// ProviderConfig holds AI provider credentials and models. A non-empty
// direct key routes generation to the direct (Gemini) API; otherwise the
// gateway key is used.
type ProviderConfig struct {
	DirectAPIKey   string `toml:"direct_api_key,omitempty"`
	DirectModel    string `toml:"direct_model,omitempty"`
	DirectBaseURL  string `toml:"direct_base_url,omitempty"`
	GatewayAPIKey  string `toml:"gateway_api_key,omitempty"`
	GatewayModel   string `toml:"gateway_model,omitempty"`
	GatewayBaseURL string `toml:"gateway_base_url,omitempty"`
}

// GenerationConfig holds sampling and pacing settings.
type GenerationConfig struct {
	Temperature     float64 `toml:"temperature"`
	MaxTokensShort  int     `toml:"max_tokens_short,omitempty"`
	MaxTokensLong   int     `toml:"max_tokens_long,omitempty"`
	TimeoutSeconds  int     `toml:"timeout_seconds,omitempty"`
	BatchIntervalMS int     `toml:"batch_interval_ms,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// gita server (gita chat, gita generate). Targets are full URLs.
type ClientConfig struct {
	ChatTarget        string `toml:"chat_target,omitempty"`
	APITarget         string `toml:"api_target,omitempty"`
	APIKey            string `toml:"api_key,omitempty"`
	PreferredLanguage string `toml:"preferred_language,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error

	// secret values are masked by gita config list
	secret bool
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func secretKey(field func(c *Config) *string) configKeyInfo {
	info := stringKey(field)
	info.secret = true
	return info
}

func intKey(name string, field func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.Itoa(*field(c))
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			if n <= 0 {
				return fmt.Errorf("invalid value for %s: must be positive", name)
			}
			*field(c) = n
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"server.listen":   stringKey(func(c *Config) *string { return &c.Server.Listen }),
	"server.log_file": stringKey(func(c *Config) *string { return &c.Server.LogFile }),

	"provider.direct_api_key":   secretKey(func(c *Config) *string { return &c.Provider.DirectAPIKey }),
	"provider.direct_model":     stringKey(func(c *Config) *string { return &c.Provider.DirectModel }),
	"provider.direct_base_url":  stringKey(func(c *Config) *string { return &c.Provider.DirectBaseURL }),
	"provider.gateway_api_key":  secretKey(func(c *Config) *string { return &c.Provider.GatewayAPIKey }),
	"provider.gateway_model":    stringKey(func(c *Config) *string { return &c.Provider.GatewayModel }),
	"provider.gateway_base_url": stringKey(func(c *Config) *string { return &c.Provider.GatewayBaseURL }),

	"generation.temperature": {
		get: func(c *Config) string {
			return strconv.FormatFloat(c.Generation.Temperature, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for generation.temperature: %w", err)
			}
			if f < 0 || f > 1 {
				return fmt.Errorf("invalid value for generation.temperature: %v outside [0, 1]", f)
			}
			c.Generation.Temperature = f
			return nil
		},
	},
	"generation.max_tokens_short":  intKey("generation.max_tokens_short", func(c *Config) *int { return &c.Generation.MaxTokensShort }),
	"generation.max_tokens_long":   intKey("generation.max_tokens_long", func(c *Config) *int { return &c.Generation.MaxTokensLong }),
	"generation.timeout_seconds":   intKey("generation.timeout_seconds", func(c *Config) *int { return &c.Generation.TimeoutSeconds }),
	"generation.batch_interval_ms": intKey("generation.batch_interval_ms", func(c *Config) *int { return &c.Generation.BatchIntervalMS }),

	"client.chat_target": stringKey(func(c *Config) *string { return &c.Client.ChatTarget }),
	"client.api_target":  stringKey(func(c *Config) *string { return &c.Client.APITarget }),
	"client.api_key":     secretKey(func(c *Config) *string { return &c.Client.APIKey }),
	"client.preferred_language": {
		get: func(c *Config) string { return c.Client.PreferredLanguage },
		set: func(c *Config, v string) error {
			lang := strings.ToLower(strings.TrimSpace(v))
			if lang != llm.LanguageEnglish && lang != llm.LanguageHindi {
				return fmt.Errorf("invalid value for client.preferred_language: %q (expected %s or %s)", v, llm.LanguageEnglish, llm.LanguageHindi)
			}
			c.Client.PreferredLanguage = lang
			return nil
		},
	},
}
