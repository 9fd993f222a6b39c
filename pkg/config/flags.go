package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --language
// on both "gita chat" and "gita generate").
type Flag struct {
	// Name is the long flag name (e.g. "listen").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "server.listen").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddIntFlag, AddFloatFlag
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen        = "listen"
	FlagLogFile       = "log-file"
	FlagDirectModel   = "direct-model"
	FlagGatewayModel  = "gateway-model"
	FlagTemperature   = "temperature"
	FlagTimeout       = "timeout"
	FlagBatchInterval = "batch-interval"
	FlagChatTarget    = "chat-target"
	FlagAPITarget     = "api-target"
	FlagLanguage      = "language"
)

// Flags is the registry of every config-backed flag.
var Flags = FlagSet{
	FlagListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "server.listen",
		Description: "Address for the API server to listen on",
	},
	FlagLogFile: {
		Name:        "log-file",
		ViperKey:    "server.log_file",
		Description: "Also write JSON logs to this file",
	},
	FlagDirectModel: {
		Name:        "direct-model",
		ViperKey:    "provider.direct_model",
		Description: "Model used with the direct Gemini API",
	},
	FlagGatewayModel: {
		Name:        "gateway-model",
		ViperKey:    "provider.gateway_model",
		Description: "Model used with the AI gateway",
	},
	FlagTemperature: {
		Name:        "temperature",
		ViperKey:    "generation.temperature",
		Description: "Sampling temperature in [0, 1]",
	},
	FlagTimeout: {
		Name:        "timeout",
		ViperKey:    "generation.timeout_seconds",
		Description: "Per-call provider timeout in seconds",
	},
	FlagBatchInterval: {
		Name:        "batch-interval",
		ViperKey:    "generation.batch_interval_ms",
		Description: "Pause between batch generation calls in milliseconds",
	},
	FlagChatTarget: {
		Name:        "chat-target",
		ViperKey:    "client.chat_target",
		Description: "Streaming chat endpoint URL",
	},
	FlagAPITarget: {
		Name:        "api-target",
		ViperKey:    "client.api_target",
		Description: "Gita API server URL",
	},
	FlagLanguage: {
		Name:        "language",
		ViperKey:    "client.preferred_language",
		Description: "Preferred response language (english or hindi)",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, key string, target *int) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddFloatFlag registers a float64 flag on cmd from the given FlagSet.
func AddFloatFlag(cmd *cobra.Command, fs FlagSet, key string, target *float64) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetFloat64(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().Float64VarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().Float64Var(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaults returns a viper holding only the registered defaults.
func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
