package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/techwatch-auth/internal/app/sender"
	"github.com/magabrotheeeer/techwatch-auth/internal/config"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.SetupLogger(cfg.Env, os.Stdout)
	logger.Info("starting notification-sender", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := sender.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize notification-sender", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("notification-sender stopped with error", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("notification-sender stopped")
}
