// Package configcmder provides the config command for managing persistent
// gita configuration stored in the .gita/ directory.
package configcmder

import (
	"strings"

	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent gita configuration.

Configuration is stored as config.toml in the .gita/ directory and provides
default values for command flags. Environment variables (GITA_<SECTION>_<KEY>,
GEMINI_API_KEY, LOVABLE_API_KEY) override the file, and CLI flags override
both.

Keys use dotted notation matching the TOML section structure:
  server.listen, server.log_file,
  provider.direct_api_key, provider.direct_model, provider.direct_base_url,
  provider.gateway_api_key, provider.gateway_model, provider.gateway_base_url,
  generation.temperature, generation.max_tokens_short, generation.max_tokens_long,
  generation.timeout_seconds, generation.batch_interval_ms,
  client.chat_target, client.api_target, client.api_key, client.preferred_language

Use subcommands to get, set, or list configuration values:
  gita config set <key> <value>    Set a configuration value
  gita config get <key>            Get a configuration value
  gita config list                 List all configuration values

Examples:
  gita config set generation.temperature 0.4
  gita config set client.preferred_language hindi
  gita config get provider.gateway_model
  gita config list`

const configShortDesc string = "Manage persistent gita configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// mask hides all but the last four characters of a credential.
func mask(value string) string {
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", 8) + value[len(value)-4:]
}
