package main

import (
	"context"
	"errors"
	"os"

	"txdash/internal/cli"
	applog "txdash/internal/log"
	"txdash/internal/services"
	"txdash/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(applog.ComponentWorker)
	logger.Info("Starting txdash-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.MessagingEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	result := cli.MustOpenBackend(ctx, logger, cfg)
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err.Error())
		}
	}()
	if result.Messaging == nil {
		logger.Error("Message broker unreachable", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		os.Exit(1)
	}

	seeder := services.NewSeeder(result.Store, cfg.SeedURL, cfg.SeedTimeout).WithEvents(result.Messaging)
	seedWorker := worker.NewSeedWorker(seeder, result.Store)

	// On startup, load the dataset if the store has never been seeded
	if cfg.SeedOnEmpty {
		logger.Info("Performing startup seed check...")
		if err := seedWorker.StartupSeedCheck(ctx); err != nil {
			// Don't exit - queued requests can still succeed later
			logger.Error("Startup seed check failed", applog.FieldError, err.Error())
		}
	}

	err := result.Messaging.ConsumeSeedRequests(ctx, seedWorker.HandleSeedRequest)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
