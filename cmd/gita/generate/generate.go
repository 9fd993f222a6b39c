// Package generatecmder provides the generate command for producing verse,
// problem and chapter content from the terminal.
package generatecmder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/gita/pkg/cliui"
	"github.com/papercomputeco/gita/pkg/config"
	"github.com/papercomputeco/gita/pkg/generation"
	"github.com/papercomputeco/gita/pkg/llm"
	"github.com/papercomputeco/gita/pkg/logger"
	"github.com/papercomputeco/gita/pkg/utils"
)

// remoteTimeout bounds a single call to a gita server. It sits above the
// server's own provider deadline.
const remoteTimeout = 90 * time.Second

type generateCommander struct {
	flags config.FlagSet

	contentType   string
	fields        map[string]string
	chapter       int
	verse         int
	batchFile     string
	local         bool
	jsonOutput    bool
	apiTarget     string
	batchInterval int
	debug         bool

	viper  *viper.Viper
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
}

var generateFlags = []string{
	config.FlagAPITarget,
	config.FlagBatchInterval,
}

const generateLongDesc string = `Generate content for a verse, a life problem or a chapter.

By default the request is sent to a running gita server (client.api_target).
With --local the provider is called directly using the credentials in the
config file or environment.

A batch file is a JSON array of requests in the same flat shape POST /generate
accepts. Batch calls are paced by --batch-interval and stop early when the
provider reports a rate limit or exhausted credits.

Content types:
  ` + "{{TYPES}}" + `

Examples:
  gita generate -t transliteration -f sanskrit_text="कर्मण्येवाधिकारस्ते"
  gita generate -t chapter_description --chapter 2 -f chapter_title="Sankhya Yoga"
  gita generate -t suggest_problems --local --json -f sanskrit_text=... -f english_meaning=...
  gita generate --batch verses.json --batch-interval 1000`

const generateShortDesc string = "Generate verse, problem or chapter content"

func NewGenerateCmd() *cobra.Command {
	cmder := &generateCommander{flags: config.Flags}

	types := make([]string, 0, len(generation.ContentTypes()))
	for _, t := range generation.ContentTypes() {
		types = append(types, string(t))
	}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: generateShortDesc,
		Long:  strings.Replace(generateLongDesc, "{{TYPES}}", strings.Join(types, ", "), 1),
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmder.batchFile == "" && cmder.contentType == "" {
				return errors.New("either --type or --batch is required")
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, cmder.flags, generateFlags)
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return cmder.run(ctx)
		},
		ValidArgsFunction: cobra.NoFileCompletions,
	}

	cmd.Flags().StringVarP(&cmder.contentType, "type", "t", "", "Content type to generate")
	cmd.Flags().StringToStringVarP(&cmder.fields, "field", "f", nil, "Request field as name=value (repeatable)")
	cmd.Flags().IntVar(&cmder.chapter, "chapter", 0, "Chapter number")
	cmd.Flags().IntVar(&cmder.verse, "verse", 0, "Verse number")
	cmd.Flags().StringVar(&cmder.batchFile, "batch", "", "Path to a JSON array of requests")
	cmd.Flags().BoolVar(&cmder.local, "local", false, "Call the provider directly instead of a gita server")
	cmd.Flags().BoolVar(&cmder.jsonOutput, "json", false, "Print the response body as JSON")
	config.AddStringFlag(cmd, cmder.flags, config.FlagAPITarget, &cmder.apiTarget)
	config.AddIntFlag(cmd, cmder.flags, config.FlagBatchInterval, &cmder.batchInterval)

	_ = cmd.RegisterFlagCompletionFunc("type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return types, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *generateCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithFormat(logger.FormatPretty), logger.WithWriter(c.errOut))

	cfg := config.FromViper(c.viper)
	gen, err := c.generator(cfg)
	if err != nil {
		return err
	}

	if c.batchFile != "" {
		return c.runBatch(ctx, gen, cfg.BatchInterval())
	}

	req, err := c.request()
	if err != nil {
		return err
	}

	var result *generation.Result
	err = cliui.Step(c.errOut, "Generating "+string(req.Type), func() error {
		var genErr error
		result, genErr = gen.Generate(ctx, req)
		return genErr
	})
	if err != nil {
		return errors.New(describe(err))
	}

	return c.print(result)
}

func (c *generateCommander) generator(cfg *config.Config) (generation.Generator, error) {
	if !c.local {
		c.logger.Debug("using gita server", "api_target", cfg.Client.APITarget)
		return generation.NewClient(cfg.Client.APITarget, cfg.Client.APIKey, &http.Client{Timeout: remoteTimeout}), nil
	}

	pipeline := cfg.Pipeline()
	if pipeline.Branch() == generation.BranchNone {
		return nil, errors.New("no provider credentials: set GEMINI_API_KEY or LOVABLE_API_KEY, or run gita auth")
	}

	d, err := generation.NewDispatcher(pipeline, generation.WithLogger(c.logger))
	if err != nil {
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}
	c.logger.Debug("calling provider directly", "branch", pipeline.Branch())
	return d, nil
}

func (c *generateCommander) request() (generation.Request, error) {
	t, err := generation.ParseContentType(c.contentType)
	if err != nil {
		return generation.Request{}, err
	}

	req := generation.Request{Type: t}
	for name, value := range c.fields {
		req = req.With(name, value)
	}
	if c.chapter > 0 {
		chapter := c.chapter
		req.ChapterNumber = &chapter
	}
	if c.verse > 0 {
		verse := c.verse
		req.VerseNumber = &verse
	}

	// Fail fast on missing fields before any network call.
	if _, err := generation.Build(req); err != nil {
		return generation.Request{}, err
	}
	return req, nil
}

func (c *generateCommander) runBatch(ctx context.Context, gen generation.Generator, interval time.Duration) error {
	data, err := os.ReadFile(c.batchFile)
	if err != nil {
		return fmt.Errorf("reading batch file: %w", err)
	}

	var reqs []generation.Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		return fmt.Errorf("parsing batch file: %w", err)
	}
	if len(reqs) == 0 {
		return errors.New("batch file has no requests")
	}

	batch := generation.NewBatch(gen, interval, c.logger)
	items, runErr := batch.Run(ctx, reqs, func(done, total int, item generation.BatchItem) {
		c.progress(done, total, item)
	})

	failed := 0
	for _, item := range items {
		if item.Err != nil || item.Skipped {
			failed++
		}
	}

	if c.jsonOutput {
		if err := c.printBatchJSON(items); err != nil {
			return err
		}
	}

	fmt.Fprintf(c.errOut, "\n  %s %d of %d generated\n\n", cliui.Mark(runErr), len(items)-failed, len(items))

	if runErr != nil {
		return runErr
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(items))
	}
	return nil
}

func (c *generateCommander) progress(done, total int, item generation.BatchItem) {
	label := string(item.Request.Type)
	if item.Request.ChapterNumber != nil {
		label += fmt.Sprintf(" %d", *item.Request.ChapterNumber)
		if item.Request.VerseNumber != nil {
			label += fmt.Sprintf(".%d", *item.Request.VerseNumber)
		}
	}

	switch {
	case item.Skipped:
		fmt.Fprintf(c.errOut, "  %s [%d/%d] %s %s\n", cliui.FailMark, done, total, label, cliui.DimStyle.Render("skipped"))
	case item.Err != nil:
		fmt.Fprintf(c.errOut, "  %s [%d/%d] %s %s\n", cliui.FailMark, done, total, label, cliui.ErrorStyle.Render(describe(item.Err)))
	default:
		fmt.Fprintf(c.errOut, "  %s [%d/%d] %s %s\n", cliui.SuccessMark, done, total, label,
			cliui.DimStyle.Render(utils.Truncate(strings.ReplaceAll(item.Result.RawText, "\n", " "), 48)))
	}
}

type batchOutput struct {
	Request  generation.Request   `json:"request"`
	Response *generation.Response `json:"response,omitempty"`
	Error    string               `json:"error,omitempty"`
	Skipped  bool                 `json:"skipped,omitempty"`
}

func (c *generateCommander) printBatchJSON(items []generation.BatchItem) error {
	out := make([]batchOutput, len(items))
	for i, item := range items {
		out[i] = batchOutput{Request: item.Request, Skipped: item.Skipped}
		if item.Result != nil {
			resp := generation.NewResponse(item.Result)
			out[i].Response = &resp
		}
		if item.Err != nil {
			out[i].Error = describe(item.Err)
		}
	}

	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (c *generateCommander) print(result *generation.Result) error {
	if c.jsonOutput {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(generation.NewResponse(result))
	}

	switch {
	case result.Chapter != nil:
		fmt.Fprintf(c.out, "\n%s\n%s\n\n%s\n%s\n\n",
			cliui.KeyStyle.Render("English"), result.Chapter.English,
			cliui.KeyStyle.Render("हिंदी"), result.Chapter.Hindi,
		)
	case result.Problems != nil:
		fmt.Fprintln(c.out)
		for _, p := range result.Problems {
			fmt.Fprintf(c.out, "  %s %s %s\n",
				cliui.NameStyle.Render(p.Name),
				cliui.DimStyle.Render(p.Category),
				cliui.ValueStyle.Render(fmt.Sprintf("%.2f", float64(p.RelevanceScore))),
			)
		}
		fmt.Fprintln(c.out)
	default:
		fmt.Fprintf(c.out, "\n%s\n\n", result.RawText)
	}
	return nil
}

// describe keeps validation errors verbatim and maps provider failures to
// their user-facing message.
func describe(err error) string {
	if errors.Is(err, generation.ErrMissingRequiredField) ||
		errors.Is(err, generation.ErrUnsupportedType) ||
		errors.Is(err, generation.ErrMalformedRequest) {
		return err.Error()
	}
	return llm.UserMessage(err)
}
