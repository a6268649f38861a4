package slug

import (
	"context"
	"sort"
	"sync"
)

// Logger defines the logging interface used by the Service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Translator is the read/assign surface consumers depend on.
type Translator interface {
	GetSlug(ctx context.Context, namespace, vendorID, hint string) string
	GetUUID(namespace, slug string) (string, bool)
	HasSlug(namespace, slug string) bool
}

// namespace holds one bidirectional mapping.
//
// writeMu serialises slug creation and flushing so two callers racing on
// the same vendor id get the same slug and flushes reach the store in
// order. mu guards the maps and is never held across I/O.
type namespace struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	bySlug  map[string]string // slug -> vendor id
	byID    map[string]string // vendor id -> slug
}

func newNamespace() *namespace {
	return &namespace{
		bySlug: make(map[string]string),
		byID:   make(map[string]string),
	}
}

// free returns base, or base with the first numeric suffix from 2 that no
// mapping holds. The caller holds mu.
func (n *namespace) free(base string) string {
	slug := base
	for i := 2; ; i++ {
		if _, taken := n.bySlug[slug]; !taken {
			return slug
		}
		slug = withSuffix(base, i)
	}
}

// Service is the identifier translation service.
// All public methods are thread-safe.
type Service struct {
	store  Store
	logger Logger

	mu         sync.Mutex // guards namespaces
	namespaces map[string]*namespace
}

// NewService creates a Service persisting to store. Call Load before use
// to restore previously assigned slugs.
func NewService(store Store) *Service {
	return &Service{
		store:      store,
		logger:     noopLogger{},
		namespaces: make(map[string]*namespace),
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// Load restores mappings from the store, replacing anything in memory.
//
// A document violating injectivity (two vendor ids claiming one slug) keeps
// the first claim in vendor-id order and logs the rest.
func (s *Service) Load(ctx context.Context) error {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	loaded := make(map[string]*namespace, len(doc))
	total := 0
	for nsName, mappings := range doc {
		ns := newNamespace()
		ids := make([]string, 0, len(mappings))
		for id := range mappings {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			slug := mappings[id]
			if owner, taken := ns.bySlug[slug]; taken {
				s.logger.Warn("duplicate slug in mapping store, keeping first",
					"namespace", nsName, "slug", slug, "kept", owner, "dropped", id)
				continue
			}
			ns.bySlug[slug] = id
			ns.byID[id] = slug
			total++
		}
		loaded[nsName] = ns
	}

	s.mu.Lock()
	s.namespaces = loaded
	s.mu.Unlock()

	s.logger.Info("slug mappings loaded", "namespaces", len(loaded), "mappings", total)
	return nil
}

// ns returns the namespace, creating it on first use.
func (s *Service) ns(name string) *namespace {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.namespaces[name]
	if !ok {
		n = newNamespace()
		s.namespaces[name] = n
	}
	return n
}

// lookup returns the namespace without creating it.
func (s *Service) lookup(name string) (*namespace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.namespaces[name]
	return n, ok
}

// GetSlug returns the slug for vendorID in namespace, assigning one derived
// from hint on first observation.
//
// The call is idempotent per (namespace, vendorID): later calls return the
// first slug regardless of hint. A new mapping is flushed to the store
// before the call returns; flush errors are logged, not returned.
//
// An empty vendorID cannot be mapped. It gets a slug that no recorded
// mapping holds, which is not recorded either.
//
// Parameters:
//   - ctx: Context for the store flush
//   - namespace: Slug namespace, usually the plugin identity
//   - vendorID: Opaque backend identifier
//   - hint: Display name the slug is derived from
//
// Returns:
//   - string: The slug mapped to vendorID
func (s *Service) GetSlug(ctx context.Context, namespace, vendorID, hint string) string {
	// 1. Unmappable id: a free slug, not recorded
	if vendorID == "" {
		s.logger.Warn("slug requested for empty vendor id", "namespace", namespace, "hint", hint)
		ns, ok := s.lookup(namespace)
		if !ok {
			return Slugify(hint)
		}
		ns.mu.RLock()
		defer ns.mu.RUnlock()
		return ns.free(Slugify(hint))
	}

	// 2. Fast path: already mapped
	ns := s.ns(namespace)
	ns.mu.RLock()
	slug, ok := ns.byID[vendorID]
	ns.mu.RUnlock()
	if ok {
		return slug
	}

	ns.writeMu.Lock()
	defer ns.writeMu.Unlock()

	// 3. Re-check: a concurrent caller may have assigned it while we waited
	ns.mu.Lock()
	if slug, ok := ns.byID[vendorID]; ok {
		ns.mu.Unlock()
		return slug
	}

	// 4. Assign the first free slug and flush the namespace
	slug = ns.free(Slugify(hint))
	ns.bySlug[slug] = vendorID
	ns.byID[vendorID] = slug
	snapshot := make(map[string]string, len(ns.byID))
	for id, sl := range ns.byID {
		snapshot[id] = sl
	}
	ns.mu.Unlock()

	if err := s.store.Save(ctx, namespace, snapshot); err != nil {
		s.logger.Error("persisting slug mapping failed, keeping in memory",
			"namespace", namespace, "slug", slug, "error", err)
	} else {
		s.logger.Debug("slug assigned", "namespace", namespace, "slug", slug)
	}
	return slug
}

// GetUUID returns the vendor id for slug in namespace.
func (s *Service) GetUUID(namespace, slug string) (string, bool) {
	ns, ok := s.lookup(namespace)
	if !ok {
		return "", false
	}
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	id, ok := ns.bySlug[slug]
	return id, ok
}

// HasSlug reports whether slug is assigned in namespace.
func (s *Service) HasSlug(namespace, slug string) bool {
	_, ok := s.GetUUID(namespace, slug)
	return ok
}

// Count returns the number of mappings per namespace.
func (s *Service) Count() map[string]int {
	s.mu.Lock()
	names := make(map[string]*namespace, len(s.namespaces))
	for k, v := range s.namespaces {
		names[k] = v
	}
	s.mu.Unlock()

	out := make(map[string]int, len(names))
	for name, ns := range names {
		ns.mu.RLock()
		out[name] = len(ns.byID)
		ns.mu.RUnlock()
	}
	return out
}
