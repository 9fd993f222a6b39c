// Package authcmder provides the auth command for storing provider API keys
// in the gita config file.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/gita/pkg/cliui"
	"github.com/papercomputeco/gita/pkg/config"
)

// provider names accepted by gita auth, mapped to their config key.
var providerKeys = map[string]string{
	"gemini":  "provider.direct_api_key",
	"gateway": "provider.gateway_api_key",
	"client":  "client.api_key",
}

var providerEnv = map[string]string{
	"gemini":  config.EnvGeminiAPIKey,
	"gateway": config.EnvGatewayAPIKey,
	"client":  config.EnvPrefix + "_CLIENT_API_KEY",
}

const authLongDesc string = `Store API keys for the AI providers.

Keys are written to config.toml in the .gita/ directory, which is created
owner-only. Environment variables still take precedence over stored keys.

Providers:
  gemini    Direct Gemini API key (takes precedence over the gateway)
  gateway   AI gateway key (also used for streaming chat)
  client    Key sent by gita chat and gita generate to a gita server

Examples:
  gita auth gateway              Prompt for the gateway key
  echo $KEY | gita auth gemini   Pipe a key from stdin
  gita auth --remove gemini      Remove the stored Gemini key`

const authShortDesc string = "Store API keys for the AI providers"

func NewAuthCmd() *cobra.Command {
	var removeFlag bool

	cmd := &cobra.Command{
		Use:       "auth <provider>",
		Short:     authShortDesc,
		Long:      authLongDesc,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"gemini", "gateway", "client"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			provider := strings.ToLower(strings.TrimSpace(args[0]))
			key, ok := providerKeys[provider]
			if !ok {
				return fmt.Errorf("unknown provider %q\n\nSupported providers: gemini, gateway, client", provider)
			}

			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if removeFlag {
				if err := cfger.SetConfigValue(key, ""); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %s key\n", cliui.SuccessMark, provider)
				return nil
			}

			apiKey, err := readAPIKey(cmd.InOrStdin(), cmd.OutOrStdout(), provider)
			if err != nil {
				return err
			}

			apiKey = strings.TrimSpace(apiKey)
			if apiKey == "" {
				return errors.New("API key cannot be empty")
			}

			if err := cfger.SetConfigValue(key, apiKey); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Stored %s key in %s\n", cliui.SuccessMark, provider, cfger.GetTarget())
			return nil
		},
	}

	cmd.Flags().BoolVar(&removeFlag, "remove", false, "Remove the stored key for the provider")

	return cmd
}

// readAPIKey reads an API key from in. When in is an interactive terminal it
// prompts with hidden input; otherwise it reads the first line.
func readAPIKey(in io.Reader, out io.Writer, provider string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(out, "Enter API key for %s (%s): ", provider, providerEnv[provider])

		keyBytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out) // newline after hidden input
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return string(keyBytes), nil
	}

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return "", errors.New("no input received on stdin")
}
