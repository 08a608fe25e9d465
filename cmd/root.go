package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/draftdeck/draftdeck/internal/agent"
	"github.com/draftdeck/draftdeck/internal/assets"
	"github.com/draftdeck/draftdeck/internal/config"
	"github.com/draftdeck/draftdeck/internal/critique"
	"github.com/draftdeck/draftdeck/internal/logger"
	"github.com/draftdeck/draftdeck/internal/mjml"
	"github.com/draftdeck/draftdeck/internal/render"
	"github.com/draftdeck/draftdeck/internal/webui"
)

var (
	logLevel   string
	configPath string
	httpPort   int
)

var rootCmd = &cobra.Command{
	Use:   "draftdeck",
	Short: "AI assistant for drafting and reviewing HTML marketing emails",
	Long: `draftdeck runs a chat assistant that drafts marketing emails, edits
them against rendered screenshots, and critiques them with a vision model.

The web UI and API listen on the configured HTTP port.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	RunE: runServe,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web UI and API server (the default)",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level: trace, debug, info, warn, error, fatal, panic")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: $DRAFTDECK_CONFIG or .draftdeck.yaml)")
	rootCmd.Flags().IntVar(&httpPort, "port", 0,
		"HTTP listen port (overrides config)")
	serveCmd.Flags().IntVar(&httpPort, "port", 0,
		"HTTP listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("port") {
		cfg.HTTP.Port = httpPort
	}
	if !cmd.Flags().Changed("log") && cfg.Logging.Level != "" {
		if level, err := logger.ParseLevel(cfg.Logging.Level); err == nil {
			logger.SetLevel(level)
		}
	}

	// The vision tasks (asset description, edit screenshots, critique) run
	// on OpenAI models regardless of which provider drives the chat.
	describer, err := assets.NewOpenAIDescriber(cfg.AI.OpenAI)
	if err != nil {
		return fmt.Errorf("creating describer: %w", err)
	}
	store, err := assets.NewStore(cfg.Assets, describer)
	if err != nil {
		return fmt.Errorf("creating asset store: %w", err)
	}

	mjmlClient := mjml.NewClient(cfg.MJML)
	renderer := render.NewRenderer(mjmlClient, cfg.Render)

	critic, err := critique.NewCritic(cfg.AI.OpenAI)
	if err != nil {
		return fmt.Errorf("creating critic: %w", err)
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}
	logger.Info("[Main] Using AI provider: %s", provider.Name())

	// The toolset's listener is bound before the server exists; the
	// indirection closes that loop.
	var server *webui.Server
	listener := func(ev agent.ToolRunEvent) {
		if server != nil {
			server.BroadcastEvent(ev)
		}
	}

	tools := agent.NewToolset(provider, renderer, critic, store, agent.NewArtifactRegistry(), listener)
	assistant := agent.New(provider, tools)
	server = webui.NewServer(assistant, store)

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Address(),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("[Main] Listening on http://127.0.0.1:%d", cfg.HTTP.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("[Main] HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("[Main] Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	store.WaitForDescriptors()
	return nil
}

func newProvider(cfg *config.Config) (agent.Provider, error) {
	switch cfg.AI.Provider {
	case config.ProviderAnthropic:
		return agent.NewAnthropicProvider(cfg.AI.Anthropic)
	case config.ProviderOpenAI:
		return agent.NewOpenAIProvider(cfg.AI.OpenAI)
	default:
		return nil, fmt.Errorf("unknown AI provider: %q", cfg.AI.Provider)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
