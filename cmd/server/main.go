package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/quizdeck/internal/config"
	"github.com/JonMunkholm/quizdeck/internal/core"
	"github.com/JonMunkholm/quizdeck/internal/database"
	"github.com/JonMunkholm/quizdeck/internal/drive"
	"github.com/JonMunkholm/quizdeck/internal/logging"
	"github.com/JonMunkholm/quizdeck/internal/web"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"drive_enabled", cfg.Drive.APIKey != "",
	)
	slog.Debug("configuration detail", "config", cfg.String())

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Drive is optional; without a key its routes answer 503
	var source core.FileSource
	var browser web.DriveBrowser
	if cfg.Drive.APIKey != "" {
		client, err := drive.New(ctx, drive.Config{
			APIKey:            cfg.Drive.APIKey,
			MaxAPICalls:       cfg.Drive.MaxAPICalls,
			MaxRecursiveFiles: cfg.Drive.MaxRecursiveFiles,
			RequestTimeout:    cfg.Drive.RequestTimeout,
			MaxDownloadSize:   cfg.Upload.MaxRequestSize,
		})
		if err != nil {
			slog.Error("failed to create drive client", "error", err)
			os.Exit(1)
		}
		source, browser = client, client
	}

	var rdb *redis.Client
	if cfg.Rate.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Rate.RedisURL)
		if err != nil {
			slog.Error("failed to parse redis url", "error", err)
			os.Exit(1)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			// The upload quota fails open, so keep serving
			slog.Warn("redis unreachable, upload quota will fail open", "error", err)
		}
	}

	service := core.NewService(pool, core.ServiceConfigFrom(cfg), source)
	server := web.NewServer(service, browser, cfg, rdb)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for uploads to complete", "active", status.Active)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
