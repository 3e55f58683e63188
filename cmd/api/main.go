package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/ascension-log/internal/config"
	"github.com/jwebster45206/ascension-log/internal/handlers"
	"github.com/jwebster45206/ascension-log/internal/logger"
	"github.com/jwebster45206/ascension-log/internal/middleware"
	"github.com/jwebster45206/ascension-log/internal/queue"
	"github.com/jwebster45206/ascension-log/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Ascension Log API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"turn_iteration", cfg.TurnIteration)

	base, err := cfg.TimelineOptions()
	if err != nil {
		log.Error("Invalid timeline options", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewRedisStorage(cfg.RedisURL, cfg.LogTTL, cfg.RenderCacheTTL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	queueClient, err := queue.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	renderQueue := queue.NewRenderQueue(queueClient)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(map[string]storage.HealthChecker{"storage": store}, log)
	mux.Handle("/health", healthHandler)

	logHandler := handlers.NewLogHandler(store, renderQueue, base, log)
	mux.Handle("/v1/logs", logHandler)
	mux.Handle("/v1/logs/", logHandler)

	handler := middleware.LoggerWith(log, mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := queueClient.Close(); err != nil {
		log.Error("Error closing queue client", "error", err)
	}
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
