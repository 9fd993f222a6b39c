// Package gitacmder
package gitacmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/gita/cmd/gita/auth"
	chatcmder "github.com/papercomputeco/gita/cmd/gita/chat"
	configcmder "github.com/papercomputeco/gita/cmd/gita/config"
	generatecmder "github.com/papercomputeco/gita/cmd/gita/generate"
	servecmder "github.com/papercomputeco/gita/cmd/gita/serve"
	versioncmder "github.com/papercomputeco/gita/cmd/version"
)

const gitaLongDesc string = `Gita is the AI content pipeline for the Bhagavad Gita site.

It serves structured content generation and a streaming spiritual guide,
and talks to a running server from the terminal.

  gita serve             Run the API server (/generate, /chat, /mcp)
  gita chat              Chat with the spiritual guide
  gita generate          Generate verse, problem or chapter content
  gita config            Manage persistent configuration
  gita auth              Store provider API keys`

const gitaShortDesc string = "Gita - Bhagavad Gita AI content pipeline"

func NewGitaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gita",
		Short:         gitaShortDesc,
		Long:          gitaLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .gita/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(generatecmder.NewGenerateCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
