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

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/siteoptic/audit-api/internal/access"
	"github.com/siteoptic/audit-api/internal/api"
	"github.com/siteoptic/audit-api/internal/config"
	"github.com/siteoptic/audit-api/internal/data"
	"github.com/siteoptic/audit-api/internal/ims"
	"github.com/siteoptic/audit-api/internal/notifications"
	"github.com/siteoptic/audit-api/internal/queue"
	"github.com/siteoptic/audit-api/internal/remediation"
	"github.com/siteoptic/audit-api/internal/scheduler"
	"github.com/siteoptic/audit-api/internal/storage"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting Site Audit API")

	ctx := context.Background()

	// Initialize the entity collections
	db, err := data.Open(cfg.DatabasePath)
	if err != nil {
		logrus.Fatalf("Failed to open database: %v", err)
	}
	collections := data.NewCollections(db)

	// Initialize object storage
	storageClient, err := storage.NewS3Storage(ctx, cfg.StorageBucket)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize the job queue
	queueClient, err := queue.NewSQSQueue(ctx)
	if err != nil {
		logrus.Fatalf("Failed to initialize queue: %v", err)
	}

	// Initialize collaborator clients
	imsClient := ims.NewClient(cfg.IMSBaseURL, cfg.IMSClientID, cfg.IMSClientSecret)
	checker := access.NewChecker(collections.Roles, collections.RoleMembers)
	prClient := remediation.NewPRClient(cfg.PRWebhookURL)
	applier := remediation.NewService(storageClient, imsClient, prClient, collections.Fixes, collections.Suggestions)
	notifier := notifications.NewService(cfg)

	// Start the digest scheduler
	schedulerService := scheduler.NewService(cfg, collections, notifier)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	// Set up the HTTP server
	handler := api.NewHandler(cfg, collections, storageClient, queueClient, imsClient, checker, applier, notifier)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
