package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/ascension-log/internal/logger"
	"github.com/jwebster45206/ascension-log/internal/queue"
	"github.com/jwebster45206/ascension-log/internal/storage"
	"github.com/jwebster45206/ascension-log/pkg/ingest"
	"github.com/jwebster45206/ascension-log/pkg/render"
	"github.com/jwebster45206/ascension-log/pkg/timeline"
)

const (
	workerTimeout = 5 * time.Second
	lockTTL       = 30 * time.Second
)

var releaseLockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Worker renders stored logs into the render cache
type Worker struct {
	id          string
	queue       *queue.RenderQueue
	store       storage.Storage
	redisClient *redis.Client
	base        timeline.Options
	log         *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a new worker instance
func New(renderQueue *queue.RenderQueue, store storage.Storage, redisClient *redis.Client, base timeline.Options, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:          workerID,
		queue:       renderQueue,
		store:       store,
		redisClient: redisClient,
		base:        base,
		log:         log.With("worker_id", workerID),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// ID returns the worker ID
func (w *Worker) ID() string {
	return w.id
}

// Start begins processing jobs from the queue
func (w *Worker) Start() error {
	w.log.Info("Worker starting")

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down")
			return nil
		default:
			if err := w.processNextJob(); err != nil {
				logger.WithError(w.log, err).Error("Error processing render job")
				// Continue processing even on error
				time.Sleep(1 * time.Second)
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested")
	w.cancel()
}

// processNextJob pulls the next job from the queue and processes it
func (w *Worker) processNextJob() error {
	job, err := w.queue.BlockingDequeue(w.ctx, workerTimeout)
	if err != nil {
		return fmt.Errorf("failed to dequeue render job: %w", err)
	}
	if job == nil {
		// Queue is empty or timeout occurred
		return nil
	}

	w.log.Info("Received render job", "job_id", job.JobID, "log_id", job.LogID.String())

	locked, err := w.acquireLogLock(job.LogID)
	if err != nil {
		return fmt.Errorf("failed to acquire log lock: %w", err)
	}
	if !locked {
		// Another worker is rendering this log
		w.log.Info("Log already locked, re-queueing job", "job_id", job.JobID, "log_id", job.LogID.String())
		job.Attempts++
		if err := w.queue.Enqueue(w.ctx, job); err != nil {
			return fmt.Errorf("failed to re-queue render job: %w", err)
		}
		return nil
	}

	defer w.releaseLogLock(job.LogID)
	return w.processJob(job)
}

func lockKey(logID uuid.UUID) string {
	return fmt.Sprintf("log-lock:%s", logID.String())
}

// acquireLogLock returns true if the lock was acquired, false if already held
func (w *Worker) acquireLogLock(logID uuid.UUID) (bool, error) {
	return w.redisClient.SetNX(w.ctx, lockKey(logID), w.id, lockTTL).Result()
}

// releaseLogLock releases the lock only if this worker owns it
func (w *Worker) releaseLogLock(logID uuid.UUID) {
	if err := releaseLockScript.Run(w.ctx, w.redisClient, []string{lockKey(logID)}, w.id).Err(); err != nil {
		logger.WithError(logger.WithLogID(w.log, logID), err).Error("Failed to release log lock")
	}
}

// processJob renders one stored log in every requested format
func (w *Worker) processJob(job *queue.RenderJob) error {
	start := time.Now()

	rec, err := w.store.LoadLog(w.ctx, job.LogID)
	if err != nil {
		return fmt.Errorf("failed to load log %s: %w", job.LogID, err)
	}
	if rec == nil {
		// Deleted or expired since the job was queued
		w.log.Warn("Log not found, dropping render job", "job_id", job.JobID, "log_id", job.LogID.String())
		return nil
	}

	st, rep, err := ingest.Load(rec.Document, ingest.FormatJSON, w.base)
	if err != nil {
		return fmt.Errorf("failed to rebuild log %s: %w", job.LogID, err)
	}
	if err := rep.Err(); err != nil {
		logger.WithError(logger.WithLogID(w.log, job.LogID), err).Warn("Log has rejected records", "rejected", len(rep.Errors))
	}

	formats := job.Formats
	if len(formats) == 0 {
		formats = render.FormatNames()
	}

	var errs []error
	for _, name := range formats {
		f, ok := render.FormatByName(name)
		if !ok {
			w.log.Warn("Skipping unknown render format", "job_id", job.JobID, "format", name)
			continue
		}
		text, err := st.FullTextualLog(f, time.Time{})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to render %s: %w", name, err))
			continue
		}
		if err := w.store.SaveRender(w.ctx, job.LogID, f.Name, text); err != nil {
			errs = append(errs, err)
			continue
		}
		w.log.Debug("Render cached", "log_id", job.LogID.String(), "format", f.Name, "bytes", len(text))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	w.log.Info("Render job processed successfully",
		"job_id", job.JobID,
		"log_id", job.LogID.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
