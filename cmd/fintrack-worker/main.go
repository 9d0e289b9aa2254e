package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting fintrack-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exporter, err := export.NewWriter(ctx, export.Config{
		Backend:         export.Backend(cfg.ExportBackend),
		ExportDir:       cfg.ExportDir,
		BaseURL:         cfg.BaseURL,
		CredentialsFile: cfg.GoogleCredentialsFile,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize export writer", log.FieldError, err.Error(), "backend", cfg.ExportBackend)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer client.Close()

	audit := worker.NewAuditWorker(exporter, cfg.SyncBatchSize, logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ConsumeRecordEvents(ctx, func(event *amqp.RecordEvent) error {
			return audit.HandleEvent(ctx, event)
		})
	})

	g.Go(func() error {
		return audit.Run(ctx, cfg.SyncInterval)
	})

	logger.Info("Worker running",
		"queue", cfg.AMQPQueue,
		"batch_size", cfg.SyncBatchSize,
		"flush_interval", cfg.SyncInterval.String())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
