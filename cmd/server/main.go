package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"kpidash/internal/app/server"
	"kpidash/internal/platform/config"
	"kpidash/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
