// Package servecmder provides the serve command, which runs the gita API
// server: structured generation, the streaming chat relay and the MCP
// endpoint.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/gita/api"
	"github.com/papercomputeco/gita/pkg/config"
	"github.com/papercomputeco/gita/pkg/generation"
	"github.com/papercomputeco/gita/pkg/logger"
)

type serveCommander struct {
	flags config.FlagSet

	listen        string
	logFile       string
	directModel   string
	gatewayModel  string
	temperature   float64
	timeout       int
	disableMCP    bool
	debug         bool
	viper         *viper.Viper
	logger        *slog.Logger
	closeLogFiles func()
}

var serveFlags = []string{
	config.FlagListen,
	config.FlagLogFile,
	config.FlagDirectModel,
	config.FlagGatewayModel,
	config.FlagTemperature,
	config.FlagTimeout,
}

const serveLongDesc string = `Run the gita API server.

Routes:
  POST /generate   Structured content generation
  POST /chat       Streaming spiritual guide (Server-Sent Events)
  ALL  /mcp        MCP endpoint exposing the generate_content tool
  GET  /ping       Health check

Credentials come from the config file or the environment. A direct Gemini key
(GEMINI_API_KEY or provider.direct_api_key) takes precedence over the gateway
key (LOVABLE_API_KEY or provider.gateway_api_key). Streaming chat always uses
the gateway.

Edits to config.toml are picked up while the server runs; they apply to
calls started afterwards.

Examples:
  gita serve
  gita serve --listen :9000 --log-file /var/log/gita.json
  GEMINI_API_KEY=... gita serve --temperature 0.4`

const serveShortDesc string = "Run the gita API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{flags: config.Flags}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, cmder.flags, serveFlags)
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return cmder.run(ctx)
		},
	}

	config.AddStringFlag(cmd, cmder.flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, cmder.flags, config.FlagLogFile, &cmder.logFile)
	config.AddStringFlag(cmd, cmder.flags, config.FlagDirectModel, &cmder.directModel)
	config.AddStringFlag(cmd, cmder.flags, config.FlagGatewayModel, &cmder.gatewayModel)
	config.AddFloatFlag(cmd, cmder.flags, config.FlagTemperature, &cmder.temperature)
	config.AddIntFlag(cmd, cmder.flags, config.FlagTimeout, &cmder.timeout)
	cmd.Flags().BoolVar(&cmder.disableMCP, "no-mcp", false, "Serve /mcp without tools")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	cfg := config.FromViper(c.viper)

	if err := c.setupLogger(cfg.Server.LogFile); err != nil {
		return err
	}
	defer c.closeLogFiles()

	pipeline := cfg.Pipeline()
	dispatcher, err := generation.NewDispatcher(pipeline, generation.WithLogger(c.logger))
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	if pipeline.Branch() == generation.BranchNone {
		c.logger.Warn("no provider credentials configured; generation requests will fail")
	}

	c.watchConfig(dispatcher)

	server, err := api.NewServer(api.Config{
		ListenAddr: cfg.Server.Listen,
		Generator:  dispatcher,
		Streamer:   dispatcher,
		DisableMCP: c.disableMCP,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating api server: %w", err)
	}

	c.logger.Info("starting api server",
		"listen", cfg.Server.Listen,
		"branch", pipeline.Branch(),
		"config_file", c.viper.ConfigFileUsed(),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		c.logger.Info("received signal, shutting down")
		return server.Shutdown()
	}
}

// setupLogger builds the terminal logger and, when logFile is set, tees
// every record as JSON into that file as well.
func (c *serveCommander) setupLogger(logFile string) error {
	console := logger.New(logger.WithDebug(c.debug), logger.WithFormat(logger.FormatPretty), logger.WithWriter(os.Stderr))
	c.closeLogFiles = func() {}

	if logFile == "" {
		c.logger = console
		return nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	c.closeLogFiles = func() { _ = f.Close() }

	c.logger = logger.Multi(console, logger.New(logger.WithDebug(c.debug), logger.WithFormat(logger.FormatJSON), logger.WithWriter(f)))
	return nil
}

// watchConfig reloads the pipeline settings whenever config.toml changes.
// Flags and environment variables still take precedence over the file.
func (c *serveCommander) watchConfig(dispatcher *generation.Dispatcher) {
	if c.viper.ConfigFileUsed() == "" {
		return
	}

	c.viper.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}

		next := config.FromViper(c.viper).Pipeline()
		if err := dispatcher.UpdateConfig(next); err != nil {
			c.logger.Warn("ignoring config change", "file", e.Name, "error", err)
			return
		}
		c.logger.Info("config reloaded", "file", e.Name)
	})
	c.viper.WatchConfig()
}
