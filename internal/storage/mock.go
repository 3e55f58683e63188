package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	logs      map[uuid.UUID]*LogRecord
	renders   map[string]string
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		logs:    make(map[uuid.UUID]*LogRecord),
		renders: make(map[string]string),
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStorage) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail every save with the given error
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveLog(ctx context.Context, rec *LogRecord) error {
	if rec == nil {
		return errors.New("log record cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	cp := *rec
	m.logs[rec.ID] = &cp
	return nil
}

func (m *MockStorage) LoadLog(ctx context.Context, id uuid.UUID) (*LogRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.logs[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *MockStorage) DeleteLog(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.logs, id)
	prefix := id.String() + ":"
	for k := range m.renders {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			delete(m.renders, k)
		}
	}
	return nil
}

func (m *MockStorage) SaveRender(ctx context.Context, id uuid.UUID, format string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.renders[id.String()+":"+format] = text
	return nil
}

func (m *MockStorage) LoadRender(ctx context.Context, id uuid.UUID, format string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.renders[id.String()+":"+format]
	return text, ok, nil
}

// LogCount returns the number of stored logs
func (m *MockStorage) LogCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.logs)
}
