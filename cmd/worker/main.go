package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/ascension-log/internal/config"
	"github.com/jwebster45206/ascension-log/internal/logger"
	"github.com/jwebster45206/ascension-log/internal/queue"
	"github.com/jwebster45206/ascension-log/internal/storage"
	"github.com/jwebster45206/ascension-log/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Ascension Log render worker",
		"environment", cfg.Environment,
		"worker_id", cfg.WorkerID)

	base, err := cfg.TimelineOptions()
	if err != nil {
		log.Error("Invalid timeline options", "error", err)
		os.Exit(1)
	}

	// Initialize queue service
	queueClient, err := queue.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()

	renderQueue := queue.NewRenderQueue(queueClient)
	log.Info("Queue service initialized successfully")

	// Initialize storage service
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
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage connection", "error", err)
		}
	}()
	log.Info("Storage service initialized successfully")

	// The queue connection doubles as the lock connection
	w := worker.New(renderQueue, store, queueClient.GetRedisClient(), base, log, cfg.WorkerID)

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Start(); err != nil {
			log.Error("Worker error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("Worker started, waiting for render jobs...", "worker_id", w.ID())

	<-quit
	log.Info("Worker shutdown signal received")

	w.Stop()

	// Give worker time to finish current job
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Warn("Worker did not stop in time")
	}

	log.Info("Worker exited")
}
