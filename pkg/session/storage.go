package session

import (
	"context"
	"sync"
)

// Durable storage keys
const (
	AccessTokenKey  = "admin_access_token"
	RefreshTokenKey = "admin_refresh_token"

	// DashboardSessionKey holds the id of the one dashboard sign-in whose
	// credential is currently honored
	DashboardSessionKey = "admin_dashboard_session"
)

// Storage is a durable string key/value store shared by the session store and
// the HTTP client. Values carry no expiry metadata.
type Storage interface {
	// Get returns the value stored under key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the given keys. Missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error

	// Close releases the underlying connection
	Close() error
}

// StatsReporter is implemented by storages that can describe their contents
// for the health endpoint
type StatsReporter interface {
	GetStats() map[string]interface{}
}

// Pinger is implemented by storages behind a network connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// MemoryStorage implements Storage with an in-process map
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// Get returns the value stored under key
func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	return value, ok, nil
}

// Set stores value under key
func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

// Remove deletes the given keys
func (m *MemoryStorage) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

// Close is a no-op for memory storage
func (m *MemoryStorage) Close() error {
	return nil
}

// GetStats reports the key count; values are never included
func (m *MemoryStorage) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"keys":         len(m.values),
		"storage_type": "memory",
	}
}
