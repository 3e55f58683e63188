package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/ascension-log/internal/queue"
	"github.com/jwebster45206/ascension-log/internal/storage"
	"github.com/jwebster45206/ascension-log/pkg/timeline"
)

const testDocument = `{
	"name": "Test Run",
	"start_date": "2026-10-01",
	"day_changes": [{"day": 1, "turn": 0}, {"day": 2, "turn": 2}],
	"turns": [
		{"turn": 1, "area": "The Spooky Forest", "encounter": "spooky vampire", "type": "combat", "stats": {"muscle": 5}},
		{"turn": 2, "area": "The Spooky Forest", "encounter": "Arboreal Respite", "type": "noncombat"},
		{"turn": 3, "area": "The Haunted Pantry", "encounter": "drunken half-orc hobo", "type": "combat", "meat": {"encounter": 40}}
	]
}`

type testEnv struct {
	mr     *miniredis.Miniredis
	store  *storage.RedisStorage
	queue  *queue.RenderQueue
	worker *Worker
}

func setupTestWorker(t *testing.T) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	redisURL := "redis://" + mr.Addr()

	store, err := storage.NewRedisStorage(redisURL, time.Hour, time.Hour, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	client, err := queue.NewClient(redisURL, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	q := queue.NewRenderQueue(client)
	w := New(q, store, client.GetRedisClient(), timeline.DefaultOptions(), logger, "worker-test")

	return &testEnv{mr: mr, store: store, queue: q, worker: w}
}

func (e *testEnv) saveLog(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, e.store.SaveLog(context.Background(), &storage.LogRecord{
		ID:       id,
		Name:     "Test Run",
		Document: json.RawMessage(testDocument),
	}))
	return id
}

func TestNew_DefaultWorkerID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	w := New(nil, nil, nil, timeline.DefaultOptions(), logger, "")
	assert.Regexp(t, `^worker-[0-9a-f]{8}$`, w.ID())
}

func TestWorker_RendersAllFormats(t *testing.T) {
	env := setupTestWorker(t)
	ctx := context.Background()
	id := env.saveLog(t)

	require.NoError(t, env.queue.Enqueue(ctx, queue.NewRenderJob(id, nil)))
	require.NoError(t, env.worker.processNextJob())

	for _, format := range []string{"plain", "html", "bbcode"} {
		text, ok, err := env.store.LoadRender(ctx, id, format)
		require.NoError(t, err)
		require.True(t, ok, "missing %s render", format)
		assert.Contains(t, text, "Test Run", format)
		assert.Contains(t, text, "The Spooky Forest", format)
	}

	assert.False(t, env.mr.Exists(lockKey(id)), "lock must be released")
}

func TestWorker_SelectedFormatsOnly(t *testing.T) {
	env := setupTestWorker(t)
	ctx := context.Background()
	id := env.saveLog(t)

	require.NoError(t, env.queue.Enqueue(ctx, queue.NewRenderJob(id, []string{"html", "markdown"})))
	require.NoError(t, env.worker.processNextJob())

	_, ok, err := env.store.LoadRender(ctx, id, "html")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = env.store.LoadRender(ctx, id, "plain")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWorker_LockedLogIsRequeued(t *testing.T) {
	env := setupTestWorker(t)
	ctx := context.Background()
	id := env.saveLog(t)

	require.NoError(t, env.mr.Set(lockKey(id), "worker-other"))
	require.NoError(t, env.queue.Enqueue(ctx, queue.NewRenderJob(id, []string{"plain"})))

	require.NoError(t, env.worker.processNextJob())

	depth, err := env.queue.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, depth)

	_, ok, err := env.store.LoadRender(ctx, id, "plain")
	require.NoError(t, err)
	assert.False(t, ok)

	// The other worker's lock survives
	got, err := env.mr.Get(lockKey(id))
	require.NoError(t, err)
	assert.Equal(t, "worker-other", got)

	job, err := env.queue.BlockingDequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, 1, job.Attempts)
}

func TestWorker_MissingLogIsDropped(t *testing.T) {
	env := setupTestWorker(t)
	ctx := context.Background()

	require.NoError(t, env.queue.Enqueue(ctx, queue.NewRenderJob(uuid.New(), nil)))
	require.NoError(t, env.worker.processNextJob())

	depth, err := env.queue.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, depth)
}

func TestWorker_CachesLogStartDateOnly(t *testing.T) {
	env := setupTestWorker(t)
	ctx := context.Background()
	id := env.saveLog(t)

	// a payload from an older producer that still asks for another date
	payload := `{"job_id":"old-job","log_id":"` + id.String() + `","formats":["plain"],"start_date":"1999-01-01"}`
	_, err := env.mr.RPush(queue.RenderJobsKey, payload)
	require.NoError(t, err)
	require.NoError(t, env.worker.processNextJob())

	text, ok, err := env.store.LoadRender(ctx, id, "plain")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, text, "2026")
	assert.NotContains(t, text, "1999")
	assert.False(t, env.mr.Exists(lockKey(id)))
}

func TestWorker_LogsRejectedRecords(t *testing.T) {
	env := setupTestWorker(t)
	ctx := context.Background()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	w := New(env.queue, env.store, env.worker.redisClient, timeline.DefaultOptions(), logger, "worker-warn")

	id := uuid.New()
	doc := `{"turns": [{"turn": 1, "area": "Noob Cave", "type": "combat"}], "pulls": [{"item": "Ur-Donut", "amount": 0, "turn": 1}]}`
	require.NoError(t, env.store.SaveLog(ctx, &storage.LogRecord{ID: id, Document: json.RawMessage(doc)}))
	require.NoError(t, env.queue.Enqueue(ctx, queue.NewRenderJob(id, []string{"plain"})))
	require.NoError(t, w.processNextJob())

	_, ok, err := env.store.LoadRender(ctx, id, "plain")
	require.NoError(t, err)
	assert.True(t, ok)

	out := buf.String()
	assert.Contains(t, out, `"msg":"Log has rejected records"`)
	assert.Contains(t, out, `"log_id":"`+id.String()+`"`)
	assert.Contains(t, out, `"error":"pulls[0]: `)
}

func TestWorker_StartStop(t *testing.T) {
	env := setupTestWorker(t)

	done := make(chan error, 1)
	go func() { done <- env.worker.Start() }()

	env.worker.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not stop")
	}
}
