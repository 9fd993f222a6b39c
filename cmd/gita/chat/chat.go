// Package chatcmder provides the chat command, an interactive terminal
// client for the streaming spiritual guide.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/gita/pkg/cliui"
	"github.com/papercomputeco/gita/pkg/config"
	"github.com/papercomputeco/gita/pkg/llm"
	"github.com/papercomputeco/gita/pkg/logger"
	"github.com/papercomputeco/gita/pkg/stream"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("guide> ")
)

type chatCommander struct {
	flags config.FlagSet

	chatTarget     string
	language       string
	apiKey         string
	renderMarkdown bool
	debug          bool

	in     io.Reader
	out    io.Writer
	logger *slog.Logger
}

var chatFlags = []string{
	config.FlagChatTarget,
	config.FlagLanguage,
}

const chatLongDesc string = `Start an interactive chat with the spiritual guide.

Replies stream in as they are generated. Press Ctrl+C while a reply is
streaming to stop it; the unanswered question is dropped from the history so
it can be asked again.

Commands:
  /hindi, /english   Switch the reply language
  /clear             Start a new conversation
  /exit              Quit (Ctrl+D also works)

Examples:
  gita chat
  gita chat --language hindi
  gita chat --chat-target https://example.com/functions/v1/spiritual-chat`

const chatShortDesc string = "Chat with the spiritual guide"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{flags: config.Flags}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, cmder.flags, chatFlags)
			cfg := config.FromViper(v)

			cmder.chatTarget = cfg.Client.ChatTarget
			cmder.language = cfg.Client.PreferredLanguage
			cmder.apiKey = cfg.Client.APIKey
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			if !cmd.Flags().Changed("render-markdown") {
				cmder.renderMarkdown = isTerminal(cmder.out)
			}

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, cmder.flags, config.FlagChatTarget, &cmder.chatTarget)
	config.AddStringFlag(cmd, cmder.flags, config.FlagLanguage, &cmder.language)
	cmd.Flags().BoolVar(&cmder.renderMarkdown, "render-markdown", false,
		"Render each finished reply as markdown (default: on when stdout is a terminal)")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithFormat(logger.FormatPretty), logger.WithWriter(os.Stderr))

	conv := stream.NewConversation(c.language)

	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "  %s %s\n", cliui.KeyStyle.Render("Guide:"), cliui.NameStyle.Render(c.chatTarget))
	fmt.Fprintf(c.out, "  %s %s\n\n", cliui.KeyStyle.Render("Language:"), cliui.ValueStyle.Render(conv.Language()))
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Type your question and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(c.in)

	for {
		fmt.Fprint(c.out, userPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch input {
		case "/exit":
			fmt.Fprintln(c.out)
			return nil
		case "/clear":
			conv.Clear()
			fmt.Fprintf(c.out, "  %s New conversation\n\n", cliui.SuccessMark)
			continue
		case "/hindi", "/english":
			conv.SetLanguage(strings.TrimPrefix(input, "/"))
			fmt.Fprintf(c.out, "  %s Replies in %s\n\n", cliui.SuccessMark, conv.Language())
			continue
		}

		c.send(ctx, conv, input)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return nil
}

// send streams one reply. Ctrl+C cancels only the in-flight reply; the
// signal handler is released before returning to the prompt.
func (c *chatCommander) send(ctx context.Context, conv *stream.Conversation, input string) {
	sendCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	consumer := stream.NewConsumer(stream.Config{
		Endpoint: c.chatTarget,
		APIKey:   c.apiKey,
		Logger:   c.logger,
	})

	fmt.Fprint(c.out, assistantPrompt)

	printed := 0
	reply, err := conv.Send(sendCtx, consumer, input, func(snapshot string) {
		if c.renderMarkdown {
			return
		}
		fmt.Fprint(c.out, snapshot[printed:])
		printed = len(snapshot)
	})

	switch {
	case errors.Is(err, stream.ErrCancelled):
		fmt.Fprintf(c.out, "\n  %s\n\n", cliui.DimStyle.Render("(stopped)"))
		return
	case err != nil:
		fmt.Fprintf(c.out, "\n  %s %s\n\n", cliui.FailMark, cliui.ErrorStyle.Render(llm.UserMessage(err)))
		c.logger.Debug("chat send failed", "error", err)
		return
	}

	if c.renderMarkdown {
		rendered, rerr := cliui.RenderMarkdown(reply)
		if rerr != nil {
			c.logger.Debug("markdown render failed", "error", rerr)
		}
		fmt.Fprint(c.out, "\n"+rendered)
	}

	fmt.Fprint(c.out, "\n\n")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
