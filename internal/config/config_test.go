package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/ascension-log/pkg/timeline"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 168*time.Hour, cfg.LogTTL)
	assert.Equal(t, 24*time.Hour, cfg.RenderCacheTTL)
	assert.Equal(t, "mafia", cfg.TurnIteration)
	assert.Equal(t, "Your Campsite", cfg.RestArea)
	assert.Empty(t, cfg.WorkerID)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("LOG_TTL", "2h")
	t.Setenv("TURN_ITERATION", "strict")
	t.Setenv("WORKER_ID", "worker-a")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, 2*time.Hour, cfg.LogTTL)
	assert.Equal(t, "strict", cfg.TurnIteration)
	assert.Equal(t, "worker-a", cfg.WorkerID)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("RENDER_CACHE_TTL", "soon")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_NonPositiveTTL(t *testing.T) {
	t.Setenv("LOG_TTL", "0s")
	_, err := Load()
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoad_InvalidTurnIteration(t *testing.T) {
	t.Setenv("TURN_ITERATION", "sideways")
	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_TimelineOptions(t *testing.T) {
	cfg := &Config{TurnIteration: "strict", RestArea: "Your Bedroom"}
	opts, err := cfg.TimelineOptions()
	require.NoError(t, err)
	assert.Equal(t, timeline.IterationStrict, opts.Iteration)
	assert.Equal(t, timeline.ModeTurns, opts.Mode)
	assert.Equal(t, "Your Bedroom", opts.Interleave.RestArea)
}
