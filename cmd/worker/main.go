package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/utafrali/FileIngestGo/internal/app"
	"github.com/utafrali/FileIngestGo/internal/config"
	"github.com/utafrali/FileIngestGo/pkg/logger"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger.
	log := logger.New("fileingest-worker", cfg.LogLevel)
	log.Info("starting file ingest worker",
		slog.String("environment", cfg.Environment),
		slog.String("topic", cfg.UploadTopic),
	)

	// Create the worker with all dependencies wired.
	w, err := app.NewWorker(cfg, log)
	if err != nil {
		log.Error("failed to initialize worker", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create a context that is cancelled on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Run the consumer loop. This blocks until shutdown.
	if err := w.Run(ctx); err != nil {
		log.Error("worker error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("file ingest worker stopped")
}
