// Command botrun is the CLI entrypoint of spec.md §6: it loads a
// config.Config, wires the concrete source/sink/transport collaborators,
// and runs pipeline.Run to completion, exposing /healthz and /metrics over
// internal/health while it does.
//
// Grounded on ManuGH-xg2g/cmd/daemon/main.go's flag-parsing/signal-context/
// version-vars shape, restructured onto github.com/spf13/cobra the way
// ManuGH-xg2g/cmd/daemon/report_cmd.go and status_cmd.go build their own
// subcommands (&cobra.Command{Use, Short, Long, RunE}).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/satori-video/streams/bot"
	"github.com/satori-video/streams/bot/examples/openaivision"
	"github.com/satori-video/streams/codec/gstsource"
	"github.com/satori-video/streams/config"
	"github.com/satori-video/streams/internal/health"
	"github.com/satori-video/streams/metric"
	"github.com/satori-video/streams/pipeline"
	"github.com/satori-video/streams/transport/nats"
	"github.com/satori-video/streams/transport/ws"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

var (
	configPath string
	healthAddr string
	logLevel   string
	logFormat  string
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "botrun",
		Short: "Run a video-processing bot over a configured source",
		Long: `botrun reads frames from a configured source (file, url, camera, or
pubsub), decodes them, feeds them to a bot.Descriptor alongside any
control-channel commands, and routes the bot's analysis/debug/control
output to the configured sinks.`,
		RunE: runRun,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config file (required to run or validate-config)")
	root.PersistentFlags().StringVar(&healthAddr, "health-addr", ":8090", "address to serve /healthz and /metrics on")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format: json|text")

	root.AddCommand(newVersionCmd(), newValidateConfigCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("botrun %s (commit: %s, built: %s)\n", version, commit, buildDate)
			return nil
		},
	}
}

func newValidateConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config",
		Short: "Load and validate the config file without running",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			if _, err := config.Load(configPath); err != nil {
				return err
			}
			fmt.Println("config ok")
			return nil
		},
	}
}

func newLogger() *slog.Logger {
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if logFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func runRun(cmd *cobra.Command, args []string) error {
	if configPath == "" {
		return fmt.Errorf("--config is required")
	}

	logger := newLogger()
	slog.SetDefault(logger)

	holder, cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := holder.Watch(ctx); err != nil {
		logger.Warn("botrun: config hot-reload disabled", "error", err)
	}

	registry := metric.NewRegistry()

	var natsClient *nats.Client
	if cfg.NATSURL != "" {
		natsClient, err = nats.Connect(cfg.NATSURL, logger)
		if err != nil {
			return fmt.Errorf("botrun: connect nats: %w", err)
		}
		defer natsClient.Close()
	}

	hub := ws.NewHub(logger)

	b, err := buildBot(cfg)
	if err != nil {
		return err
	}

	channels := nats.Channels{Base: cfg.Channel}
	deps := pipeline.Dependencies{
		Camera:          gstsource.Config{Width: cfg.BoundingDims.Width, Height: cfg.BoundingDims.Height, TargetFPS: 30},
		Decode:          newRawRGBDecode(cfg.BoundingDims.Width, cfg.BoundingDims.Height),
		Logger:          logger,
		Metrics:         registry,
		AnalysisChannel: channels.Analysis(),
		DebugChannel:    channels.Debug(),
		ControlChannel:  channels.Control(),
		Broadcaster:     hub,
	}
	if natsClient != nil {
		deps.PubSub = natsClient
		deps.Publisher = natsClient
	}

	assembled, err := pipeline.Build(cfg, deps)
	if err != nil {
		return fmt.Errorf("botrun: build pipeline: %w", err)
	}

	var healthy atomicBool
	healthy.set(true)
	healthSrv := health.NewServer(healthAddr, registry, func() health.Status {
		if healthy.get() {
			return health.Status{Healthy: true}
		}
		return health.Status{Healthy: false, Detail: "pipeline terminated"}
	}, logger)
	healthSrv.Handle("/ws", hub.Handler)
	healthSrv.Start()

	prevStop := assembled.Options.StopServices
	assembled.Options.StopServices = func() {
		healthy.set(false)
		if prevStop != nil {
			prevStop()
		}
	}

	done := pipeline.Run(assembled.Frames, assembled.Control, assembled.Decode, b, assembled.Sinks, assembled.Options)

	go func() {
		<-ctx.Done()
		logger.Info("botrun: shutdown signal received")
	}()

	_, runErr := done.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("botrun: health server shutdown error", "error", err)
	}

	return runErr
}

func loadConfig(logger *slog.Logger) (*config.Holder, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("botrun: load config: %w", err)
	}
	return config.NewHolder(cfg, configPath, logger), cfg, nil
}

func buildBot(cfg *config.Config) (bot.Descriptor, error) {
	switch cfg.BotID {
	case "openaivision":
		baseURL, _ := cfg.BotConfig["base_url"].(string)
		apiKey, _ := cfg.BotConfig["api_key"].(string)
		model, _ := cfg.BotConfig["model"].(string)
		return openaivision.New(openaivision.Config{BaseURL: baseURL, APIKey: apiKey, Model: model})
	default:
		return nil, fmt.Errorf("botrun: unknown bot_id %q (see bot/registry.go for why there is no default registry)", cfg.BotID)
	}
}

type atomicBool struct {
	mu sync.Mutex
	v  bool
}

func (b *atomicBool) set(v bool) {
	b.mu.Lock()
	b.v = v
	b.mu.Unlock()
}

func (b *atomicBool) get() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.v
}
