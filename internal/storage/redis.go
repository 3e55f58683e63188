package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStorage implements the Storage interface using Redis for log
// documents and the render cache
type RedisStorage struct {
	client    *redis.Client
	logger    *slog.Logger
	logTTL    time.Duration
	renderTTL time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, logTTL, renderTTL time.Duration, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &RedisStorage{
		client:    redis.NewClient(opt),
		logger:    logger,
		logTTL:    logTTL,
		renderTTL: renderTTL,
	}, nil
}

func logKey(id uuid.UUID) string {
	return "log:" + id.String()
}

func renderKey(id uuid.UUID, format string) string {
	return fmt.Sprintf("render:%s:%s", id.String(), format)
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Log document operations

func (r *RedisStorage) SaveLog(ctx context.Context, rec *LogRecord) error {
	if rec == nil {
		return errors.New("log record cannot be nil")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		r.logger.Error("Failed to marshal log", "uuid", rec.ID, "error", err)
		return fmt.Errorf("failed to marshal log: %w", err)
	}

	if err := r.client.Set(ctx, logKey(rec.ID), data, r.logTTL).Err(); err != nil {
		r.logger.Error("Failed to save log", "uuid", rec.ID, "error", err)
		return fmt.Errorf("failed to save log: %w", err)
	}

	r.logger.Debug("Log saved", "uuid", rec.ID, "bytes", len(data))
	return nil
}

func (r *RedisStorage) LoadLog(ctx context.Context, id uuid.UUID) (*LogRecord, error) {
	data, err := r.client.Get(ctx, logKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.logger.Error("Failed to load log", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load log: %w", err)
	}

	var rec LogRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		r.logger.Error("Failed to unmarshal log", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal log: %w", err)
	}
	return &rec, nil
}

func (r *RedisStorage) DeleteLog(ctx context.Context, id uuid.UUID) error {
	keys := []string{logKey(id)}

	iter := r.client.Scan(ctx, 0, renderKey(id, "*"), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.logger.Error("Failed to scan render cache", "uuid", id, "error", err)
		return fmt.Errorf("failed to scan render cache: %w", err)
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Error("Failed to delete log", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete log: %w", err)
	}

	r.logger.Debug("Log deleted", "uuid", id, "keys", len(keys))
	return nil
}

// Render cache operations

func (r *RedisStorage) SaveRender(ctx context.Context, id uuid.UUID, format string, text string) error {
	if err := r.client.Set(ctx, renderKey(id, format), text, r.renderTTL).Err(); err != nil {
		r.logger.Error("Failed to cache render", "uuid", id, "format", format, "error", err)
		return fmt.Errorf("failed to cache render: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadRender(ctx context.Context, id uuid.UUID, format string) (string, bool, error) {
	text, err := r.client.Get(ctx, renderKey(id, format)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		r.logger.Error("Failed to load cached render", "uuid", id, "format", format, "error", err)
		return "", false, fmt.Errorf("failed to load cached render: %w", err)
	}
	return text, true, nil
}
