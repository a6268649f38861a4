package heating

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-hub/internal/backend/hive"
	"github.com/nerrad567/gray-logic-hub/internal/credstore"
	"github.com/nerrad567/gray-logic-hub/internal/normalize"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
	"github.com/nerrad567/gray-logic-hub/internal/slug"
)

// Credential keys.
const (
	CredToken        = "token"
	CredRefreshToken = "refreshToken"
)

// DisplayName is shown in connection status.
const DisplayName = "Heating"

// Logger defines the logging interface used by the plugin.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Backend is the part of the heating service the plugin uses.
// *hive.Client and *hive.MemoryBackend both satisfy it.
type Backend interface {
	Products(ctx context.Context) ([]hive.Product, error)
	SetState(ctx context.Context, productType, id string, state map[string]any) error
}

var capabilities = plugin.NewCapabilitySet(
	plugin.CapDevices,
	plugin.CapUpdateDevice,
	plugin.CapChangeDetection,
)

// Plugin adapts the heating service to the plugin contract.
type Plugin struct {
	id     string
	demo   bool
	norm   *normalize.Normalizer
	creds  credstore.Store
	logger Logger

	// newBackend is replaced in tests.
	newBackend func(s hive.Session, onRefresh func(hive.Session)) Backend

	mu        sync.RWMutex
	backend   Backend
	connected bool
	hasCreds  bool
}

// New creates the real plugin talking to baseURL.
func New(id string, tr slug.Translator, creds credstore.Store, baseURL string) *Plugin {
	if baseURL == "" {
		baseURL = hive.DefaultBaseURL
	}
	return &Plugin{
		id:     id,
		norm:   normalize.New(tr, id),
		creds:  creds,
		logger: noopLogger{},
		newBackend: func(s hive.Session, onRefresh func(hive.Session)) Backend {
			auth := hive.NewSessionAuth(baseURL, s)
			auth.OnRefresh = onRefresh
			return hive.NewClient(baseURL, auth)
		},
	}
}

// NewDemo creates a demo plugin bound to backend.
func NewDemo(id string, tr slug.Translator, backend *hive.MemoryBackend) *Plugin {
	return &Plugin{
		id:        id,
		demo:      true,
		norm:      normalize.New(tr, id),
		logger:    noopLogger{},
		backend:   backend,
		connected: true,
		hasCreds:  true,
	}
}

// SetLogger sets the logger for the plugin.
func (p *Plugin) SetLogger(logger Logger) {
	p.logger = logger
}

func (p *Plugin) ID() string                         { return p.id }
func (p *Plugin) Capabilities() plugin.CapabilitySet { return capabilities }

// Restore resumes a stored session without contacting the service.
func (p *Plugin) Restore(ctx context.Context) error {
	if p.demo {
		return nil
	}
	stored, err := p.creds.Get(ctx, p.id)
	if errors.Is(err, credstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading %s credentials: %w", p.id, err)
	}
	s := hive.Session{Token: stored[CredToken], RefreshToken: stored[CredRefreshToken]}
	if s.Token == "" {
		return nil
	}

	p.mu.Lock()
	p.backend = p.newBackend(s, p.persist)
	p.connected = true
	p.hasCreds = true
	p.mu.Unlock()

	p.logger.Info("heating session restored")
	return nil
}

// Connect starts a session from a token pair and verifies it by listing
// products.
func (p *Plugin) Connect(ctx context.Context, creds plugin.Credentials) (plugin.ConnectResult, error) {
	if p.demo {
		p.mu.Lock()
		p.connected = true
		p.mu.Unlock()
		return plugin.ConnectResult{Success: true, Message: "demo heating connected"}, nil
	}

	s := hive.Session{Token: creds[CredToken], RefreshToken: creds[CredRefreshToken]}
	if s.Token == "" {
		return plugin.ConnectResult{Success: false, Message: "a session token is required"}, nil
	}

	backend := p.newBackend(s, p.persist)
	if _, err := backend.Products(ctx); err != nil {
		if errors.Is(err, hive.ErrUnauthorized) {
			return plugin.ConnectResult{Success: false, Message: "session rejected, sign in again"}, nil
		}
		return plugin.ConnectResult{}, fmt.Errorf("verifying heating session: %w", err)
	}
	p.persist(s)

	p.mu.Lock()
	p.backend = backend
	p.connected = true
	p.hasCreds = true
	p.mu.Unlock()

	p.logger.Info("heating connected")
	return plugin.ConnectResult{Success: true}, nil
}

// persist stores a session. Failures are logged; the live session keeps working.
func (p *Plugin) persist(s hive.Session) {
	data := map[string]string{CredToken: s.Token, CredRefreshToken: s.RefreshToken}
	if err := p.creds.Put(context.Background(), p.id, data); err != nil {
		p.logger.Error("storing heating session failed", "error", err)
	}
}

func (p *Plugin) Disconnect(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = false
	if !p.demo {
		p.backend = nil
	}
	return nil
}

func (p *Plugin) IsConnected(_ context.Context) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}

func (p *Plugin) ConnectionStatus(ctx context.Context) plugin.Status {
	return plugin.Status{
		ID:             p.id,
		Name:           DisplayName,
		Connected:      p.IsConnected(ctx),
		HasCredentials: p.HasCredentials(),
		Demo:           p.demo,
	}
}

func (p *Plugin) HasCredentials() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hasCreds
}

func (p *Plugin) ClearCredentials() error {
	if !p.demo {
		if err := p.creds.Delete(context.Background(), p.id); err != nil {
			return fmt.Errorf("clearing %s credentials: %w", p.id, err)
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.demo {
		p.backend = nil
		p.hasCreds = false
	}
	p.connected = false
	return nil
}

func (p *Plugin) session() (Backend, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.connected || p.backend == nil {
		return nil, plugin.ErrNotConnected
	}
	return p.backend, nil
}
