package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagekeep/doclink"
	"github.com/pagekeep/doclink/infrastructure/api"
	apimiddleware "github.com/pagekeep/doclink/infrastructure/api/middleware"
	"github.com/pagekeep/doclink/internal/config"
	"github.com/pagekeep/doclink/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                  Server host to bind to (default: 0.0.0.0)
  PORT                  Server port to listen on (default: 8080)
  DATA_DIR              Data directory (default: ~/.doclink)
  DB_URL                Database URL (default: sqlite:///{data_dir}/doclink.db)
  LOG_LEVEL             Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT            Log format: pretty, json (default: pretty)
  API_KEYS              Comma-separated list of valid API keys
  ADMIN_USERNAME        Username bootstrapped as superuser (default: admin)

  CACHE_BACKEND         Access decision cache: memory, redis (default: memory)
  CACHE_REDIS_URL       Redis URL for the redis backend
  CACHE_TTL_SECONDS     Decision cache TTL in seconds (default: 300)
  CACHE_MAX_ENTRIES     Entry cap for the in-memory cache (default: 4096)

  SCHEDULER_ENABLED     Enable the workflow trigger scheduler (default: true)
  SCHEDULER_SCHEDULE    Cron expression for trigger scans (default: @every 1m)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Flags win over environment variables.
	cfg = applyServeOverrides(cfg, host, port)

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := cfg.EnsureVersionDir(); err != nil {
		return fmt.Errorf("create version directory: %w", err)
	}

	logger := log.NewLogger(cfg)
	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	logger.LogAttrs(context.Background(), slog.LevelInfo, "starting doclink", attrs...)

	client, err := doclink.New(clientOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("create doclink client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close doclink client", slog.Any("error", err))
		}
	}()

	apiServer := api.NewAPIServer(client, cfg.APIKeys())
	router := apiServer.Router()

	// Middleware must be installed before MountRoutes. CorrelationID runs
	// first so the request log carries the ID.
	router.Use(apimiddleware.CorrelationID)
	router.Use(apimiddleware.Logging(logger))
	apiServer.MountRoutes()

	router.Get("/health", handleHealth)
	router.Get("/healthz", handleHealth)
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{
			"name":    "doclink",
			"version": version,
			"docs":    "/docs",
		})
	})
	router.Mount("/docs", apiServer.DocsRouter("/docs/openapi.json").Routes())

	server := api.NewServer(cfg.Addr(), logger)
	server.Router().Mount("/", router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	}()

	if err := server.Start(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
