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

	"github.com/brandradar/visibility-dashboard/internal/api"
	"github.com/brandradar/visibility-dashboard/internal/backend"
	"github.com/brandradar/visibility-dashboard/internal/chat"
	"github.com/brandradar/visibility-dashboard/internal/config"
	"github.com/brandradar/visibility-dashboard/internal/dashboard"
	"github.com/brandradar/visibility-dashboard/internal/notifications"
	"github.com/brandradar/visibility-dashboard/internal/scheduler"
	"github.com/brandradar/visibility-dashboard/internal/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting visibility dashboard")

	b, closeBackend, err := backend.Open(cfg)
	if err != nil {
		logrus.Fatalf("Failed to open backend: %v", err)
	}
	defer closeBackend()

	snapshots, err := storage.Open(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}

	var notifier notifications.NotificationInterface
	if cfg.NotificationsEnabled() {
		notifier = notifications.NewService(cfg)
	} else {
		logrus.Info("No notification channel configured, reports will only be stored")
	}

	dashboardService, err := dashboard.NewService(cfg, b, snapshots, notifier)
	if err != nil {
		logrus.Fatalf("Failed to initialize dashboard: %v", err)
	}

	var completer chat.Completer
	if cfg.OpenAIAPIKey != "" {
		completer = chat.NewCompletionClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		logrus.Warn("OPENAI_API_KEY not set, competitor chat is disabled")
	}
	chatService := chat.NewService(b, completer)

	schedulerService, err := scheduler.NewService(cfg, dashboardService)
	if err != nil {
		logrus.Fatalf("Failed to create scheduler: %v", err)
	}
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	router := api.NewServer(cfg, b, dashboardService, chatService).Router()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
