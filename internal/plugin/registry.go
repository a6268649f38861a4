package plugin

import (
	"context"
	"fmt"
	"sync"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
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

// Registry holds one real and at most one demo plugin per identity.
//
// Registration happens once at startup; after that the registry is
// read-mostly. All public methods are thread-safe.
type Registry struct {
	mu     sync.RWMutex
	real   map[string]Plugin
	demo   map[string]Plugin
	order  []string // identities in registration order
	logger Logger
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		real:   make(map[string]Plugin),
		demo:   make(map[string]Plugin),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Register adds the real plugin for id.
// Any error is a configuration error and should abort startup.
func (r *Registry) Register(id string, p Plugin) error {
	return r.register(id, p, ModeReal)
}

// RegisterDemo adds the demo plugin for id.
func (r *Registry) RegisterDemo(id string, p Plugin) error {
	return r.register(id, p, ModeDemo)
}

func (r *Registry) register(id string, p Plugin, mode Mode) error {
	if err := Validate(id, p); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	target := r.real
	if mode == ModeDemo {
		target = r.demo
	}
	if _, exists := target[id]; exists {
		return fmt.Errorf("%w: %s plugin %q", ErrDuplicatePlugin, mode, id)
	}
	target[id] = p

	if !r.known(id) {
		r.order = append(r.order, id)
	}

	r.logger.Info("plugin registered", "plugin", id, "mode", mode.String(),
		"capabilities", p.Capabilities().List())
	return nil
}

// known reports whether id has any registration. Caller holds mu.
func (r *Registry) known(id string) bool {
	for _, existing := range r.order {
		if existing == id {
			return true
		}
	}
	return false
}

// Resolve returns the active plugin for id using the mode carried by ctx.
func (r *Registry) Resolve(ctx context.Context, id string) (Plugin, error) {
	return r.ResolveMode(id, ModeFrom(ctx))
}

// ResolveMode returns the plugin for id in the given mode.
// Returns ErrNotRegistered if there is none.
func (r *Registry) ResolveMode(id string, mode Mode) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source := r.real
	if mode == ModeDemo {
		source = r.demo
	}
	p, ok := source[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s plugin %q", ErrNotRegistered, mode, id)
	}
	return p, nil
}

// IDs returns every registered identity in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Has reports whether id has a plugin in any mode.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.known(id)
}

// Active returns the plugins for the mode carried by ctx, in registration
// order. Identities without a plugin in that mode are skipped.
func (r *Registry) Active(ctx context.Context) []Plugin {
	mode := ModeFrom(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()

	source := r.real
	if mode == ModeDemo {
		source = r.demo
	}
	out := make([]Plugin, 0, len(source))
	for _, id := range r.order {
		if p, ok := source[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
