package storage

import (
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
)

func setupTestRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := NewRedisStorage("redis://"+mr.Addr(), time.Hour, 10*time.Minute, logger)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	return s, mr
}

func TestRedisStorage_Ping(t *testing.T) {
	s, mr := setupTestRedis(t)
	require.NoError(t, s.Ping(context.Background()))

	mr.SetError("LOADING")
	assert.Error(t, s.Ping(context.Background()))
}

func TestRedisStorage_SaveLoadLog(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	id := uuid.New()
	rec := &LogRecord{ID: id, Name: "HCCS run", Document: json.RawMessage(`{"name":"HCCS run"}`)}
	require.NoError(t, s.SaveLog(ctx, rec))
	assert.False(t, rec.CreatedAt.IsZero())

	assert.True(t, mr.Exists("log:"+id.String()))
	assert.Equal(t, time.Hour, mr.TTL("log:"+id.String()))

	got, err := s.LoadLog(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "HCCS run", got.Name)
	assert.JSONEq(t, `{"name":"HCCS run"}`, string(got.Document))
}

func TestRedisStorage_LoadLogMissing(t *testing.T) {
	s, _ := setupTestRedis(t)

	got, err := s.LoadLog(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStorage_LoadLogCorrupt(t *testing.T) {
	s, mr := setupTestRedis(t)
	id := uuid.New()
	require.NoError(t, mr.Set("log:"+id.String(), "not json"))

	_, err := s.LoadLog(context.Background(), id)
	assert.Error(t, err)
}

func TestRedisStorage_RenderCache(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()
	id := uuid.New()

	_, ok, err := s.LoadRender(ctx, id, "html")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SaveRender(ctx, id, "html", "<h1>Ascension Log</h1>"))
	assert.Equal(t, 10*time.Minute, mr.TTL("render:"+id.String()+":html"))

	text, ok, err := s.LoadRender(ctx, id, "html")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "<h1>Ascension Log</h1>", text)
}

func TestRedisStorage_DeleteLogDropsRenders(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()
	id := uuid.New()
	other := uuid.New()

	require.NoError(t, s.SaveLog(ctx, &LogRecord{ID: id, Document: json.RawMessage(`{}`)}))
	require.NoError(t, s.SaveRender(ctx, id, "plain", "a"))
	require.NoError(t, s.SaveRender(ctx, id, "bbcode", "b"))
	require.NoError(t, s.SaveRender(ctx, other, "plain", "c"))

	require.NoError(t, s.DeleteLog(ctx, id))

	assert.False(t, mr.Exists("log:"+id.String()))
	assert.False(t, mr.Exists("render:"+id.String()+":plain"))
	assert.False(t, mr.Exists("render:"+id.String()+":bbcode"))
	assert.True(t, mr.Exists("render:"+other.String()+":plain"))
}

func TestRedisStorage_Expiry(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, s.SaveLog(ctx, &LogRecord{ID: id, Document: json.RawMessage(`{}`)}))
	mr.FastForward(2 * time.Hour)

	got, err := s.LoadLog(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}
