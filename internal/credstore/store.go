// Package credstore persists backend credentials per plugin identity.
package credstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when a plugin has no stored credentials.
var ErrNotFound = errors.New("credstore: not found")

// Store holds one credential map per plugin.
type Store interface {
	Get(ctx context.Context, plugin string) (map[string]string, error)
	Put(ctx context.Context, plugin string, data map[string]string) error
	Delete(ctx context.Context, plugin string) error
}

// SQLiteStore keeps credentials in the plugin_credentials table as JSON.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store on db.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get returns the stored credentials, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, plugin string) (map[string]string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM plugin_credentials WHERE plugin = ?`, plugin).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying credentials: %w", err)
	}
	var data map[string]string
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("decoding credentials: %w", err)
	}
	return data, nil
}

// Put replaces the plugin's credentials.
func (s *SQLiteStore) Put(ctx context.Context, plugin string, data map[string]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plugin_credentials (plugin, data) VALUES (?, ?)
		ON CONFLICT(plugin) DO UPDATE SET
			data = excluded.data,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`, plugin, string(raw))
	if err != nil {
		return fmt.Errorf("storing credentials: %w", err)
	}
	return nil
}

// Delete removes the plugin's credentials. Deleting nothing is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, plugin string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM plugin_credentials WHERE plugin = ?`, plugin); err != nil {
		return fmt.Errorf("deleting credentials: %w", err)
	}
	return nil
}

// MemoryStore keeps credentials in memory.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, plugin string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[plugin]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(d), nil
}

func (m *MemoryStore) Put(_ context.Context, plugin string, data map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[plugin] = clone(data)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, plugin string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, plugin)
	return nil
}

func clone(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
