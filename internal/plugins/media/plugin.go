package media

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/nerrad567/gray-logic-hub/internal/backend/sonos"
	"github.com/nerrad567/gray-logic-hub/internal/credstore"
	"github.com/nerrad567/gray-logic-hub/internal/normalize"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
	"github.com/nerrad567/gray-logic-hub/internal/slug"
)

// Credential keys.
const (
	CredAccessToken  = "accessToken"
	CredRefreshToken = "refreshToken"
	CredExpiry       = "expiry"
	CredHousehold    = "householdId"
)

// DisplayName is shown in connection status.
const DisplayName = "Media"

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

// Backend is the part of the control API the plugin uses.
// *sonos.Client and *sonos.MemoryBackend both satisfy it.
type Backend interface {
	Households(ctx context.Context) ([]sonos.Household, error)
	Groups(ctx context.Context, householdID string) (sonos.Groups, error)
	Metadata(ctx context.Context, groupID string) (sonos.Metadata, error)
	GroupVolume(ctx context.Context, groupID string) (sonos.Volume, error)
	Play(ctx context.Context, groupID string) error
	Pause(ctx context.Context, groupID string) error
	SetGroupVolume(ctx context.Context, groupID string, volume int) error
}

var capabilities = plugin.NewCapabilitySet(
	plugin.CapRooms,
	plugin.CapDevices,
	plugin.CapUpdateDevice,
	plugin.CapUpdateRoom,
	plugin.CapChangeDetection,
)

// Plugin adapts the media service to the plugin contract.
type Plugin struct {
	id     string
	demo   bool
	norm   *normalize.Normalizer
	creds  credstore.Store
	logger Logger

	// newBackend is replaced in tests.
	newBackend func(ctx context.Context, tok *oauth2.Token) Backend

	mu        sync.RWMutex
	backend   Backend
	household string
	lastToken string
	connected bool
	hasCreds  bool
}

// New creates the real plugin. cfg is the OAuth2 client configuration used
// to refresh tokens.
func New(id string, tr slug.Translator, creds credstore.Store, baseURL string, cfg *oauth2.Config) *Plugin {
	if baseURL == "" {
		baseURL = sonos.DefaultBaseURL
	}
	return &Plugin{
		id:     id,
		norm:   normalize.New(tr, id),
		creds:  creds,
		logger: noopLogger{},
		newBackend: func(ctx context.Context, tok *oauth2.Token) Backend {
			return sonos.NewClient(ctx, baseURL, cfg, tok)
		},
	}
}

// NewDemo creates a demo plugin bound to backend.
func NewDemo(id string, tr slug.Translator, backend *sonos.MemoryBackend) *Plugin {
	return &Plugin{
		id:        id,
		demo:      true,
		norm:      normalize.New(tr, id),
		logger:    noopLogger{},
		backend:   backend,
		household: sonos.DemoHouseholdID,
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

// Restore resumes a stored token without contacting the service.
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
	tok := tokenFrom(stored)
	if tok.AccessToken == "" || stored[CredHousehold] == "" {
		return nil
	}

	p.mu.Lock()
	p.backend = p.newBackend(context.Background(), tok)
	p.household = stored[CredHousehold]
	p.lastToken = tok.AccessToken
	p.connected = true
	p.hasCreds = true
	p.mu.Unlock()

	p.logger.Info("media session restored", "household", stored[CredHousehold])
	return nil
}

// Connect starts a session from an OAuth2 token and binds to the first
// household, or the one named in the credentials.
func (p *Plugin) Connect(ctx context.Context, creds plugin.Credentials) (plugin.ConnectResult, error) {
	if p.demo {
		p.mu.Lock()
		p.connected = true
		p.mu.Unlock()
		return plugin.ConnectResult{Success: true, Message: "demo speakers connected"}, nil
	}

	tok := tokenFrom(creds)
	if tok.AccessToken == "" {
		return plugin.ConnectResult{Success: false, Message: "an access token is required"}, nil
	}

	// The backend outlives this request, so it must not inherit ctx.
	backend := p.newBackend(context.Background(), tok)
	households, err := backend.Households(ctx)
	if err != nil {
		return plugin.ConnectResult{}, fmt.Errorf("listing households: %w", err)
	}
	household := creds[CredHousehold]
	if household == "" {
		if len(households) == 0 {
			return plugin.ConnectResult{Success: false, Message: sonos.ErrNoHousehold.Error()}, nil
		}
		household = households[0].ID
	}

	data := tokenData(tok)
	data[CredHousehold] = household
	if err := p.creds.Put(ctx, p.id, data); err != nil {
		p.logger.Error("storing media credentials failed", "error", err)
	}

	p.mu.Lock()
	p.backend = backend
	p.household = household
	p.lastToken = tok.AccessToken
	p.connected = true
	p.hasCreds = true
	p.mu.Unlock()

	p.logger.Info("media connected", "household", household)
	return plugin.ConnectResult{Success: true}, nil
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
	p.mu.RLock()
	household := p.household
	p.mu.RUnlock()
	return plugin.Status{
		ID:             p.id,
		Name:           DisplayName,
		Connected:      p.IsConnected(ctx),
		HasCredentials: p.HasCredentials(),
		Demo:           p.demo,
		Detail:         household,
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
		p.household = ""
		p.hasCreds = false
	}
	p.connected = false
	return nil
}

func (p *Plugin) session() (Backend, string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.connected || p.backend == nil {
		return nil, "", plugin.ErrNotConnected
	}
	return p.backend, p.household, nil
}

func tokenFrom(m map[string]string) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  m[CredAccessToken],
		RefreshToken: m[CredRefreshToken],
		TokenType:    "Bearer",
	}
	if exp, err := time.Parse(time.RFC3339, m[CredExpiry]); err == nil {
		tok.Expiry = exp
	}
	return tok
}

func tokenData(tok *oauth2.Token) map[string]string {
	data := map[string]string{
		CredAccessToken:  tok.AccessToken,
		CredRefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		data[CredExpiry] = tok.Expiry.UTC().Format(time.RFC3339)
	}
	return data
}
