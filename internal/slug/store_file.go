package slug

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	dirPermissions  = 0750
	filePermissions = 0600
)

// FileStore persists the whole document as one JSON file.
// Writes go to a temporary file that is renamed over the target, so a
// crash mid-write leaves the previous document intact.
type FileStore struct {
	path string

	mu  sync.Mutex // serialises writers across namespaces
	doc Document   // last written or loaded document
}

// NewFileStore creates a store at path. The file is created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, doc: make(Document)}
}

// Load reads the document. A missing file is an empty document.
func (f *FileStore) Load(_ context.Context) (Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		f.doc = make(Document)
		return make(Document), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading slug store: %w", err)
	}

	doc := make(Document)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCorruptStore, f.path, err)
		}
	}
	f.doc = doc
	return doc.clone(), nil
}

// Save replaces one namespace and rewrites the file.
func (f *FileStore) Save(_ context.Context, namespace string, mappings map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.doc.clone()
	next[namespace] = cloneMappings(mappings)

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding slug store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), dirPermissions); err != nil {
		return fmt.Errorf("creating slug store directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".slugs-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck // already failing
		return fmt.Errorf("writing slug store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing slug store: %w", err)
	}
	if err := os.Chmod(tmpName, filePermissions); err != nil {
		return fmt.Errorf("setting slug store permissions: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replacing slug store: %w", err)
	}

	f.doc = next
	return nil
}
