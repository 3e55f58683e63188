package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/jwebster45206/ascension-log/pkg/timeline"
)

type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	Environment    string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelName   string        `env:"LOG_LEVEL" envDefault:"info"`
	RedisURL       string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	LogTTL         time.Duration `env:"LOG_TTL" envDefault:"168h"`
	RenderCacheTTL time.Duration `env:"RENDER_CACHE_TTL" envDefault:"24h"`
	TurnIteration  string        `env:"TURN_ITERATION" envDefault:"mafia"`
	RestArea       string        `env:"REST_AREA" envDefault:"Your Campsite"`
	WorkerID       string        `env:"WORKER_ID"`

	LogLevel slog.Level `env:"-"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	if cfg.LogTTL <= 0 {
		return nil, fmt.Errorf("LOG_TTL must be positive, got %s", cfg.LogTTL)
	}
	if cfg.RenderCacheTTL <= 0 {
		return nil, fmt.Errorf("RENDER_CACHE_TTL must be positive, got %s", cfg.RenderCacheTTL)
	}
	if _, err := cfg.TimelineOptions(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TimelineOptions returns the store options every log starts from before its
// own header is applied.
func (c *Config) TimelineOptions() (timeline.Options, error) {
	opts := timeline.DefaultOptions()
	it, err := timeline.ParseTurnIteration(c.TurnIteration)
	if err != nil {
		return opts, fmt.Errorf("invalid TURN_ITERATION: %w", err)
	}
	opts.Iteration = it
	if c.RestArea != "" {
		opts.Interleave.RestArea = c.RestArea
	}
	return opts, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
