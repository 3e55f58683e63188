package queue

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	redisURL := "redis://" + mr.Addr()

	client, err := NewClient(redisURL, logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create queue client: %v", err)
	}

	return client, mr
}

func TestNewClient_BadURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	_, err := NewClient("not-a-url", logger)
	assert.Error(t, err)
}

func TestRenderQueue_FIFO(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	q := NewRenderQueue(client)
	ctx := context.Background()

	first := NewRenderJob(uuid.New(), []string{"plain"})
	second := NewRenderJob(uuid.New(), []string{"html", "bbcode"})
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, depth)

	got, err := q.BlockingDequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.JobID, got.JobID)
	assert.Equal(t, first.LogID, got.LogID)
	assert.Equal(t, []string{"plain"}, got.Formats)

	got, err = q.BlockingDequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.LogID, got.LogID)
	assert.Equal(t, []string{"html", "bbcode"}, got.Formats)

	depth, err = q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, depth)
}

func TestRenderQueue_EmptyTimesOut(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	q := NewRenderQueue(client)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	got, err := q.BlockingDequeue(ctx, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRenderQueue_CorruptJob(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	_, err := mr.Lpush(RenderJobsKey, "{broken")
	require.NoError(t, err)

	q := NewRenderQueue(client)
	_, err = q.BlockingDequeue(context.Background(), time.Second)
	assert.Error(t, err)
}

func TestRenderQueue_EnqueueNil(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	assert.Error(t, NewRenderQueue(client).Enqueue(context.Background(), nil))
}
