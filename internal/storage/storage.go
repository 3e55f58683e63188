package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// LogRecord is a stored ascension log document.
type LogRecord struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Document  json.RawMessage `json:"document"`
}

// Storage persists log documents and their rendered output.
type Storage interface {
	HealthChecker
	Closer

	// SaveLog stores a log document under its ID
	SaveLog(ctx context.Context, rec *LogRecord) error

	// LoadLog retrieves a log document by ID
	// Returns nil if the log doesn't exist
	LoadLog(ctx context.Context, id uuid.UUID) (*LogRecord, error)

	// DeleteLog removes a log document and every cached render of it
	DeleteLog(ctx context.Context, id uuid.UUID) error

	// SaveRender caches the rendered text of a log in one format
	SaveRender(ctx context.Context, id uuid.UUID, format string, text string) error

	// LoadRender returns a cached render; ok is false on a cache miss
	LoadRender(ctx context.Context, id uuid.UUID, format string) (text string, ok bool, err error)
}
