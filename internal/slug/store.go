package slug

import (
	"context"
	"sync"
)

// Document is the persisted form: namespace -> vendor id -> slug.
type Document map[string]map[string]string

// Store persists slug mappings.
//
// Save receives the complete mapping for one namespace. Implementations may
// rewrite the whole document or upsert rows.
type Store interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, namespace string, mappings map[string]string) error
}

// MemoryStore keeps the document in memory. It backs demo mode, where
// mappings must not reach durable storage, and tests.
type MemoryStore struct {
	mu  sync.Mutex
	doc Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{doc: make(Document)}
}

// Load returns a copy of the stored document.
func (m *MemoryStore) Load(_ context.Context) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc.clone(), nil
}

// Save replaces the namespace's mappings.
func (m *MemoryStore) Save(_ context.Context, namespace string, mappings map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc[namespace] = cloneMappings(mappings)
	return nil
}

func (d Document) clone() Document {
	out := make(Document, len(d))
	for ns, m := range d {
		out[ns] = cloneMappings(m)
	}
	return out
}

func cloneMappings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
