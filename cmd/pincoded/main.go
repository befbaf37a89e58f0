package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"pincode-backend/config"
	"pincode-backend/internal/api"
	"pincode-backend/internal/db"
	"pincode-backend/internal/importer"
	"pincode-backend/internal/notification"
	"pincode-backend/internal/pipeline"
	"pincode-backend/internal/postal"
	"pincode-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "pincode-backend ", log.LstdFlags)

	config.LoadEnv()

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Printf("no configuration at %s; using defaults and environment", configPath)
		cfg = config.Default()
	case err != nil:
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	default:
		logger.Printf("configuration loaded successfully from %s", configPath)
	}

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Println("VAPID keys not configured; scan results will not be pushed")
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Populate the postal table from CSV, now and on schedule
	scheduler, err := importer.NewScheduler(appStore, cfg.Import)
	if err != nil {
		logger.Fatalf("failed to configure csv import: %v", err)
	}
	if err := scheduler.Start(ctx); err != nil {
		logger.Fatalf("failed to start csv import: %v", err)
	}
	defer scheduler.Stop()

	postalClient := postal.NewClient(cfg.Postal)
	deps := api.Deps{
		Store:   appStore,
		Postal:  postalClient,
		WebPush: webpushOptions,
	}

	// Scans need an OCR engine; without one the rest of the API still works.
	var workerPool *notification.WorkerPool
	scanPipeline, err := pipeline.FromConfig(ctx, cfg, postalClient)
	switch {
	case errors.Is(err, pipeline.ErrScanningDisabled):
		logger.Println(err)
	case err != nil:
		logger.Fatalf("failed to initialize scan pipeline: %v", err)
	default:
		workerPool = notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, scanPipeline, webpushOptions, cfg.OCR.Annotate)
		workerPool.Start(ctx)
		deps.Scans = workerPool
		logger.Printf("scan pipeline ready (ocr: %s, workers: %d)", scanPipeline.OCR.Name(), cfg.WorkerPool.Size)
	}

	// Initialize router
	router := api.NewRouter(cfg.Server, deps)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server Shutdown: %v", err)
	}
	cancel()

	// Let in-flight scans return before their clients are closed.
	if workerPool != nil {
		workerPool.Wait()
	}
	if scanPipeline != nil {
		if err := scanPipeline.Close(); err != nil {
			logger.Printf("failed to close scan pipeline: %v", err)
		}
	}

	logger.Println("Server gracefully stopped")
}
