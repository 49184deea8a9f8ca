package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/storyimport/internal/config"
	"github.com/JonMunkholm/storyimport/internal/core"
	"github.com/JonMunkholm/storyimport/internal/logging"
	"github.com/JonMunkholm/storyimport/internal/metrics"
	"github.com/JonMunkholm/storyimport/internal/store"
	"github.com/JonMunkholm/storyimport/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	if !cfg.Security.RequireAPIKey {
		slog.Warn("API key check disabled; anyone who can reach the server can trigger imports")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	if cfg.Database.AutoMigrate {
		if err := store.Migrate(ctx, pool); err != nil {
			slog.Error("failed to migrate schema", "error", err)
			os.Exit(1)
		}
		slog.Info("schema migrated")
	}

	var recorder *metrics.Recorder
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		recorder = metrics.NewDefault()
		metricsHandler = recorder.Handler()
	}

	opts := core.Options{
		SourcePath:  cfg.Import.SourcePath,
		MappingPath: cfg.Import.MappingPath,
	}
	if recorder != nil {
		opts.Recorder = recorder
	}
	service, err := core.NewService(store.NewPostgres(pool), opts)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}
	slog.Info("languages registered", "languages", service.Languages().Labels())

	server := web.NewServer(service, cfg, metricsHandler)

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let a running import finish before the pool is closed.
		if status := service.ImportStatus(); status.Running {
			slog.Info("waiting for import to complete", "started_at", status.StartedAt)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("import did not complete in time", "error", err)
			} else {
				slog.Info("import completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
