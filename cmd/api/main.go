package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fixmate/go_booking/internal/client"
	"github.com/fixmate/go_booking/internal/config"
	"github.com/fixmate/go_booking/internal/database"
	"github.com/fixmate/go_booking/internal/handlers"
	"github.com/fixmate/go_booking/internal/logger"
	"github.com/fixmate/go_booking/internal/queue"
	"github.com/fixmate/go_booking/internal/repository"
	"github.com/fixmate/go_booking/internal/telemetry"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
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

	logger.Info(ctx, "API server starting",
		"host", cfg.API.Host,
		"port", cfg.API.Port,
		"auth_enabled", cfg.Auth.Enabled)

	shutdownTracing := telemetry.Setup(cfg.Telemetry.ServiceName)
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

	logger.Info(ctx, "Database migrations completed")

	// Initialize refresh queue
	refreshQueue, err := queue.NewDBQueue(db.DB)
	if err != nil {
		log.Fatalf("Failed to initialize queue: %v", err)
	}
	defer refreshQueue.Close()

	// Initialize repositories and upstream client
	snapshotRepo := repository.NewSnapshotRepository(db.DB)
	attemptRepo := repository.NewActionAttemptRepository(db.DB)
	kvRepo := repository.NewKVRepository(db.DB)

	marketplace := client.NewMarketplaceClient(cfg.Upstream.URL, cfg.Upstream.Token, cfg.Upstream.Timeout)

	// Initialize handlers
	inflight := handlers.NewInflightRegistry()
	leadHandler := handlers.NewLeadHandler(marketplace, attemptRepo, snapshotRepo, refreshQueue, inflight)
	orderHandler := handlers.NewOrderHandler(marketplace, inflight, time.Now)
	bookingHandler := handlers.NewBookingHandler(kvRepo, time.Now)
	earningsHandler := handlers.NewEarningsHandler(marketplace)
	statsHandler := handlers.NewStatsHandler(snapshotRepo, attemptRepo)
	healthHandler := handlers.NewHealthHandler(db, refreshQueue)

	authMiddleware := handlers.NewAuthMiddleware(cfg)

	// Set up HTTP routes
	router := mux.NewRouter()
	router.Use(handlers.RecoveryMiddleware)
	router.Use(handlers.CorrelationMiddleware)
	router.Use(authMiddleware.Middleware)

	router.HandleFunc("/leads/{id}", leadHandler.HandleGetLead).Methods(http.MethodGet)
	router.HandleFunc("/leads/{id}/actions", leadHandler.HandleLeadActions).Methods(http.MethodGet)
	router.HandleFunc("/leads/{id}/accept", leadHandler.HandleAccept).Methods(http.MethodPost)
	router.HandleFunc("/leads/{id}/cancel", leadHandler.HandleCancel).Methods(http.MethodPost)
	router.HandleFunc("/leads/{id}/complete", leadHandler.HandleComplete).Methods(http.MethodPost)

	router.HandleFunc("/orders/{id}", orderHandler.HandleGetOrder).Methods(http.MethodGet)
	router.HandleFunc("/orders/{id}/actions", orderHandler.HandleOrderActions).Methods(http.MethodGet)
	router.HandleFunc("/orders/{id}/cancel", orderHandler.HandleCancelOrder).Methods(http.MethodPost)
	router.HandleFunc("/orders/{id}/reschedule", orderHandler.HandleReschedule).Methods(http.MethodPost)

	router.HandleFunc("/slots", bookingHandler.HandleSlots).Methods(http.MethodGet)
	router.HandleFunc("/users/{id}/kv/{key}", bookingHandler.HandleGetKV).Methods(http.MethodGet)
	router.HandleFunc("/users/{id}/kv/{key}", bookingHandler.HandlePutKV).Methods(http.MethodPut)
	router.HandleFunc("/users/{id}/kv/{key}", bookingHandler.HandleDeleteKV).Methods(http.MethodDelete)

	router.HandleFunc("/partners/{id}/earnings", earningsHandler.HandleEarnings).Methods(http.MethodGet)

	router.HandleFunc("/stats/leads/counts", statsHandler.HandleLeadCounts).Methods(http.MethodGet)
	router.HandleFunc("/stats/leads/recent", statsHandler.HandleRecentLeads).Methods(http.MethodGet)
	router.HandleFunc("/stats/leads/{id}/history", statsHandler.HandleLeadHistory).Methods(http.MethodGet)

	router.HandleFunc("/health", healthHandler.HandleHealth).Methods(http.MethodGet)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(router, "booking-gateway"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(ctx, "HTTP server listening", "address", addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrors:
		log.Fatalf("Server error: %v", err)

	case sig := <-sigChan:
		logger.Info(ctx, "Received shutdown signal", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Server shutdown error", "error", err.Error())
			server.Close()
		}

		logger.Info(ctx, "Server shutdown complete")
	}
}
