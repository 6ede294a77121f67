package main

import (
	"context"
	"log"
	"time"

	"github.com/fixmate/go_booking/internal/client"
	"github.com/fixmate/go_booking/internal/config"
	"github.com/fixmate/go_booking/internal/database"
	"github.com/fixmate/go_booking/internal/logger"
	"github.com/fixmate/go_booking/internal/queue"
	"github.com/fixmate/go_booking/internal/repository"
	"github.com/fixmate/go_booking/internal/telemetry"
	"github.com/fixmate/go_booking/internal/worker"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	logger.Info(ctx, "Refresh worker starting", "poll_interval", cfg.Worker.PollInterval)

	shutdownTracing := telemetry.Setup(cfg.Telemetry.ServiceName + "-worker")
	defer shutdownTracing(ctx)

	// Initialize database connection
	db, err := database.InitFromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	logger.Info(ctx, "Database connection established")

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize refresh queue
	refreshQueue, err := queue.NewDBQueue(db.DB)
	if err != nil {
		log.Fatalf("Failed to initialize queue: %v", err)
	}
	defer refreshQueue.Close()

	snapshotRepo := repository.NewSnapshotRepository(db.DB)
	marketplace := client.NewMarketplaceClient(cfg.Upstream.URL, cfg.Upstream.Token, cfg.Upstream.Timeout)

	backoff := make([]time.Duration, 0, cfg.Refresh.MaxAttempts)
	for i := 0; i < cfg.Refresh.MaxAttempts; i++ {
		backoff = append(backoff, cfg.Refresh.BackoffBase<<i)
	}

	processor := worker.NewProcessor(worker.ProcessorConfig{
		Queue:        refreshQueue,
		Snapshots:    snapshotRepo,
		Marketplace:  marketplace,
		PollInterval: cfg.Worker.PollInterval,
		MaxAttempts:  cfg.Refresh.MaxAttempts,
		Backoff:      backoff,
	})

	if err := processor.Start(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Worker error: %v", err)
	}

	logger.Info(ctx, "Refresh worker stopped")
}
