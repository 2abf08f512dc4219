package main

import (
	"context"
	"log/slog"
	"os"

	"sweet-shop/internal/app"
	"sweet-shop/internal/config"
	"sweet-shop/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}))

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
