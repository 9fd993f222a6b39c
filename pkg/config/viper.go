package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/gita/pkg/dotdir"
)

// EnvPrefix prefixes every environment variable gita reads.
const EnvPrefix = "GITA"

// Conventional provider key variables, accepted alongside the GITA_ names.
const (
	EnvGeminiAPIKey  = "GEMINI_API_KEY"
	EnvGatewayAPIKey = "LOVABLE_API_KEY"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the GITA_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (GITA_SERVER_LISTEN, GITA_PROVIDER_GATEWAY_API_KEY, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: GITA_SERVER_LISTEN, GITA_GENERATION_TEMPERATURE, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("provider.direct_api_key", EnvPrefix+"_PROVIDER_DIRECT_API_KEY", EnvGeminiAPIKey)
	_ = v.BindEnv("provider.gateway_api_key", EnvPrefix+"_PROVIDER_GATEWAY_API_KEY", EnvGatewayAPIKey)

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	for _, key := range orderedKeys {
		if value := configKeys[key].get(d); value != "" {
			v.SetDefault(key, value)
		}
	}
}
