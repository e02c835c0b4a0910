package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"caseflow-hq/polaris/pkg/audit"
	"caseflow-hq/polaris/pkg/cli"
	"caseflow-hq/polaris/pkg/config"
	"caseflow-hq/polaris/pkg/providerfactory"
	"caseflow-hq/polaris/pkg/providers"
	"caseflow-hq/polaris/pkg/rag"
	"caseflow-hq/polaris/pkg/server"
	"caseflow-hq/polaris/pkg/settings"
	"caseflow-hq/polaris/pkg/suggest"
	"caseflow-hq/polaris/pkg/telemetry/health"
	"caseflow-hq/polaris/pkg/telemetry/logging"
	"caseflow-hq/polaris/pkg/telemetry/metrics"
	"caseflow-hq/polaris/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	watchConfig   bool
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Polaris suggestion server",
	Long: `Start the Polaris suggestion server with the specified configuration.

The server listens on the configured address and serves reply suggestions for
support conversations, backed by the active AI provider, the RAG prompt
builder, and the audit recorder.

Examples:
  # Start with default config
  polaris run

  # Start with custom config
  polaris run --config /etc/polaris/config.yaml

  # Override listen address
  polaris run --listen 0.0.0.0:8080

  # Reload provider defaults when the config file changes
  polaris run --watch-config

  # Validate config without starting server
  polaris run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.watchConfig, "watch-config", false, "reload provider defaults on config file changes")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	// Initialize logging based on config
	logger, err := logging.New(&cfg.Telemetry.Logging, nil)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	// Print startup banner
	printBanner(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize tracing
	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := tracer.Shutdown(flushCtx); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	}()
	if tracer.Enabled() {
		fmt.Printf("✓ Tracing enabled (exporting to %s)\n", cfg.Telemetry.Tracing.Endpoint)
	}

	// Open the settings store so provider switches survive restarts
	var store *settings.Store
	if cfg.Settings.DBPath != "" {
		store, err = settings.NewStore(cfg.Settings.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open settings store: %w", err)
		}
		defer store.Close()
		fmt.Println("✓ Settings store opened")
	} else {
		slog.Warn("settings store disabled, provider switches will not persist")
	}

	resolver := settings.NewResolver(store, providerDefaults(cfg), logger)

	// Provider registry with background health probes
	slog.Info("initializing provider registry",
		"default_kind", cfg.Providers.DefaultKind,
		"probe_interval", cfg.Suggest.ProbeInterval,
	)
	registry := providerfactory.NewRegistry(providerfactory.RegistryOptions{
		DefaultKind:   cfg.Providers.DefaultKind,
		ProbeInterval: cfg.Suggest.ProbeInterval,
		StaleAfter:    cfg.Suggest.HealthStaleAfter,
		Logger:        logger,
	})
	defer registry.Close()

	warmActiveProvider(ctx, resolver, registry)
	fmt.Printf("✓ Providers initialized (%d cached)\n", len(registry.Kinds()))

	// RAG prompt enhancement (if enabled)
	var enhancer suggest.PromptEnhancer
	if cfg.RAG.Enabled && cfg.RAG.SearchEndpoint != "" {
		searcher := rag.NewHTTPSearcher(cfg.RAG.SearchEndpoint, cfg.RAG.SearchAPIKey, cfg.RAG.SearchTimeout)
		enhancer = rag.NewBuilder(searcher, logger)
		fmt.Println("✓ RAG enhancement enabled")
	}

	// Audit recording (if enabled)
	var auditStore *audit.SQLiteStore
	var recorder *audit.Recorder
	if cfg.Audit.Enabled {
		slog.Info("initializing audit recording", "db_path", cfg.Audit.DBPath)

		sqliteConfig := audit.DefaultSQLiteConfig()
		if cfg.Audit.DBPath != "" {
			sqliteConfig.Path = cfg.Audit.DBPath
		}
		auditStore, err = audit.NewSQLiteStore(sqliteConfig, logger)
		if err != nil {
			return fmt.Errorf("failed to open audit store: %w", err)
		}
		defer auditStore.Close()

		recorder = audit.NewRecorder(auditStore, &audit.RecorderConfig{
			BufferSize: cfg.Audit.BufferSize,
		}, logger)
		defer recorder.Close()

		// Start retention pruner if schedule is configured
		if cfg.Audit.Retention.Schedule != "" {
			pruner := audit.NewPruner(auditStore, audit.RetentionConfig{
				Days:       cfg.Audit.Retention.Days,
				Schedule:   cfg.Audit.Retention.Schedule,
				MaxRecords: cfg.Audit.Retention.MaxRecords,
			}, logger)
			if err := pruner.Start(ctx); err != nil {
				slog.Warn("failed to start audit pruner", "error", err)
			} else {
				defer pruner.Stop()
				if next := pruner.NextRun(); next != nil {
					slog.Debug("audit pruner started", "next_run", next)
				}
			}
		}

		fmt.Println("✓ Audit store initialized")
	}

	// Metrics collector
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	// Suggestion orchestrator
	orchestrator, err := suggest.NewOrchestrator(suggest.Options{
		Settings:         resolver,
		Registry:         registry,
		Enhancer:         enhancer,
		MaxRetries:       cfg.Suggest.MaxRetries,
		BaseDelay:        cfg.Suggest.BaseDelay,
		HealthStaleAfter: cfg.Suggest.HealthStaleAfter,
		RequestTimeout:   cfg.Suggest.RequestTimeout,
		RAGTopK:          cfg.RAG.TopK,
		RAGShowSources:   cfg.RAG.ShowSources,
		Tracer:           tracer,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	// Readiness checks for the stores the request path depends on
	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	if store != nil {
		checker.RegisterCheck("settings", store.Ping)
	}
	if auditStore != nil {
		checker.RegisterCheck("audit", auditStore.Ping)
	}
	checker.RegisterCheck("providers", func(ctx context.Context) error {
		if len(registry.Kinds()) == 0 {
			return fmt.Errorf("no provider instances cached")
		}
		return nil
	})

	// Reload provider defaults when the config file changes
	if runFlags.watchConfig {
		watcher, werr := config.NewWatcher(cfgFile, 0, logger)
		if werr != nil {
			slog.Warn("config watcher unavailable", "error", werr)
		} else {
			defer watcher.Stop()
			go func() {
				err := watcher.Watch(ctx, func(next *config.Config) {
					resolver.SetDefaults(providerDefaults(next))
					registry.Reset()
					slog.Info("provider defaults reloaded", "path", cfgFile)
				})
				if err != nil {
					slog.Warn("config watcher exited", "error", err)
				}
			}()
			fmt.Println("✓ Watching configuration for changes")
		}
	}

	// Create HTTP server
	slog.Info("creating HTTP server")
	deps := server.Dependencies{
		Suggester: orchestrator,
		Settings:  resolver,
		Registry:  registry,
		Collector: collector,
		Health:    checker,
		Logger:    logger,
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	}
	if recorder != nil {
		deps.Auditor = recorder
	}
	srv := server.NewServer(&cfg.Server, &cfg.Telemetry, deps)

	// Start server in background goroutine
	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "address", cfg.Server.ListenAddress)
		if err := srv.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for server to be ready
	if err := waitForServerReady(cfg.Server.ListenAddress, cfg.Telemetry.Health.LivenessPath, 5*time.Second); err != nil {
		return fmt.Errorf("server failed to start: %w", err)
	}

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Suggestions endpoint: http://%s/v1/suggestions\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Health.ReadinessPath)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for shutdown signal or server error
	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		// Graceful shutdown with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Server stopped")
		return nil
	}
}

// providerDefaults converts the provider sections of the file config into the
// defaults layer the settings resolver falls back to when the store has no
// saved row for a kind.
func providerDefaults(cfg *config.Config) settings.Defaults {
	shared := providers.Config{
		GenerateTimeout: cfg.Providers.GenerateTimeout,
		ProbeTimeout:    cfg.Providers.ProbeTimeout,
	}

	flowise := shared
	flowise.Kind = providers.KindFlowise
	flowise.Endpoint = cfg.Providers.Flowise.Endpoint
	flowise.APIKey = cfg.Providers.Flowise.APIKey

	openrouter := shared
	openrouter.Kind = providers.KindOpenRouter
	openrouter.Endpoint = cfg.Providers.OpenRouter.Endpoint
	openrouter.APIKey = cfg.Providers.OpenRouter.APIKey
	openrouter.Model = cfg.Providers.OpenRouter.Model
	openrouter.SystemPrompt = cfg.Providers.OpenRouter.SystemPrompt
	openrouter.SiteURL = cfg.Providers.OpenRouter.SiteURL
	openrouter.SiteName = cfg.Providers.OpenRouter.SiteName

	azure := shared
	azure.Kind = providers.KindAzureOpenAI
	azure.APIKey = cfg.Providers.Azure.APIKey
	azure.DeploymentURI = cfg.Providers.Azure.DeploymentURI
	azure.SystemPrompt = cfg.Providers.Azure.SystemPrompt

	return settings.Defaults{
		DefaultKind: providerfactory.NormalizeKind(cfg.Providers.DefaultKind),
		Configs: map[string]providers.Config{
			providers.KindFlowise:     flowise,
			providers.KindOpenRouter:  openrouter,
			providers.KindAzureOpenAI: azure,
		},
	}
}

// warmActiveProvider creates the active provider instance ahead of the first
// request, so readiness reflects provider construction problems at boot
// instead of on the first suggestion.
func warmActiveProvider(ctx context.Context, resolver *settings.Resolver, registry *providerfactory.Registry) {
	warmCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	sel, err := resolver.Active(warmCtx)
	if err != nil {
		slog.Warn("active provider not resolvable at startup", "error", err)
		return
	}
	if _, err := registry.GetOrCreate(sel.Kind, sel.Config); err != nil {
		slog.Warn("failed to create active provider", "kind", sel.Kind, "error", err)
	}
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Polaris v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("default provider", "kind", cfg.Providers.DefaultKind)

	if cfg.RAG.Enabled {
		slog.Debug("rag enabled", "endpoint", cfg.RAG.SearchEndpoint, "top_k", cfg.RAG.TopK)
	}
	if cfg.Audit.Enabled {
		slog.Debug("audit enabled", "db_path", cfg.Audit.DBPath)
	}
}

// waitForServerReady polls the liveness endpoint until it answers or the
// timeout elapses.
func waitForServerReady(address, livenessPath string, timeout time.Duration) error {
	url := fmt.Sprintf("http://%s%s", address, livenessPath)
	client := &http.Client{Timeout: time.Second}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %s", timeout)
}
