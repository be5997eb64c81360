package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KyoTung/camera-store-client/internal/app"
	"github.com/KyoTung/camera-store-client/internal/cli"
	"github.com/KyoTung/camera-store-client/internal/config"
	"github.com/KyoTung/camera-store-client/pkg/logger"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger.
	log := logger.New("storefront", cfg.LogLevel)
	log.Info("starting storefront client",
		slog.String("environment", cfg.Environment),
		slog.String("api_base_url", cfg.APIBaseURL),
		slog.String("storage_backend", cfg.StorageBackend),
	)

	// Create the application with all dependencies wired.
	application, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error("shutdown error", slog.String("error", err.Error()))
		}
	}()

	// Create a context that is cancelled on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Run the interactive shell. This blocks until exit or EOF.
	shell := cli.New(application, os.Stdin, os.Stdout)
	if err := shell.Run(ctx); err != nil {
		log.Error("shell error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storefront client stopped")
}
