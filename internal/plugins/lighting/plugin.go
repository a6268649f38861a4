package lighting

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-hub/internal/backend/hue"
	"github.com/nerrad567/gray-logic-hub/internal/credstore"
	"github.com/nerrad567/gray-logic-hub/internal/normalize"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
	"github.com/nerrad567/gray-logic-hub/internal/slug"
)

// Credential keys.
const (
	CredHost   = "host"
	CredAppKey = "appKey"
)

// DisplayName is shown in connection status.
const DisplayName = "Lighting"

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

var capabilities = plugin.NewCapabilitySet(
	plugin.CapRooms,
	plugin.CapDevices,
	plugin.CapZones,
	plugin.CapUpdateDevice,
	plugin.CapUpdateRoom,
	plugin.CapUpdateZone,
	plugin.CapScenes,
	plugin.CapChangeDetection,
)

// Plugin adapts the lighting bridge to the plugin contract.
type Plugin struct {
	id     string
	demo   bool
	norm   *normalize.Normalizer
	creds  credstore.Store
	logger Logger

	// dial and pair are replaced in tests.
	dial func(host, key string) hue.Client
	pair func(ctx context.Context, host string) (string, error)

	mu        sync.RWMutex
	host      string
	client    hue.Client
	connected bool
	hasCreds  bool
}

// New creates the real plugin. host is the configured bridge address and
// may be overridden by credentials supplied to Connect.
func New(id string, tr slug.Translator, creds credstore.Store, host string) *Plugin {
	return &Plugin{
		id:     id,
		norm:   normalize.New(tr, id),
		creds:  creds,
		logger: noopLogger{},
		dial:   func(h, k string) hue.Client { return hue.NewBridge(h, k) },
		pair:   hue.Pair,
		host:   host,
	}
}

// NewDemo creates a demo plugin bound to bridge. It is connected from the
// start and its credentials are implicit.
func NewDemo(id string, tr slug.Translator, bridge *hue.MemoryBridge) *Plugin {
	return &Plugin{
		id:        id,
		demo:      true,
		norm:      normalize.New(tr, id),
		logger:    noopLogger{},
		client:    bridge,
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

// Restore reconnects from stored credentials without contacting the bridge.
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

	host := stored[CredHost]
	if host == "" {
		host = p.host
	}
	key := stored[CredAppKey]
	if host == "" || key == "" {
		return nil
	}

	p.mu.Lock()
	p.host = host
	p.client = p.dial(host, key)
	p.connected = true
	p.hasCreds = true
	p.mu.Unlock()

	p.logger.Info("lighting bridge restored", "host", host)
	return nil
}

// Connect pairs with the bridge (when no app key is supplied) and verifies
// the connection by listing lights.
func (p *Plugin) Connect(ctx context.Context, creds plugin.Credentials) (plugin.ConnectResult, error) {
	if p.demo {
		p.mu.Lock()
		p.connected = true
		p.mu.Unlock()
		return plugin.ConnectResult{Success: true, Message: "demo bridge connected"}, nil
	}

	p.mu.RLock()
	host := p.host
	p.mu.RUnlock()
	if h := creds[CredHost]; h != "" {
		host = h
	}
	if host == "" {
		return plugin.ConnectResult{Success: false, Message: "bridge host is required"}, nil
	}

	key := creds[CredAppKey]
	if key == "" {
		var err error
		if key, err = p.pair(ctx, host); err != nil {
			p.logger.Warn("bridge pairing failed", "host", host, "error", err)
			return plugin.ConnectResult{Success: false, Message: "press the bridge link button and try again"}, nil
		}
	}

	client := p.dial(host, key)
	if _, err := client.Lights(ctx); err != nil {
		return plugin.ConnectResult{}, fmt.Errorf("verifying bridge %s: %w", host, err)
	}

	if err := p.creds.Put(ctx, p.id, map[string]string{CredHost: host, CredAppKey: key}); err != nil {
		p.logger.Error("storing bridge credentials failed", "error", err)
	}

	p.mu.Lock()
	p.host = host
	p.client = client
	p.connected = true
	p.hasCreds = true
	p.mu.Unlock()

	p.logger.Info("lighting bridge connected", "host", host)
	return plugin.ConnectResult{Success: true}, nil
}

// Disconnect drops the session but keeps stored credentials.
func (p *Plugin) Disconnect(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = false
	if !p.demo {
		p.client = nil
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
	host := p.host
	p.mu.RUnlock()
	st := plugin.Status{
		ID:             p.id,
		Name:           DisplayName,
		Connected:      p.IsConnected(ctx),
		HasCredentials: p.HasCredentials(),
		Demo:           p.demo,
	}
	if host != "" {
		st.Detail = host
	}
	return st
}

func (p *Plugin) HasCredentials() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hasCreds
}

// ClearCredentials forgets the app key and disconnects.
func (p *Plugin) ClearCredentials() error {
	if !p.demo {
		if err := p.creds.Delete(context.Background(), p.id); err != nil {
			return fmt.Errorf("clearing %s credentials: %w", p.id, err)
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.demo {
		p.client = nil
		p.hasCreds = false
	}
	p.connected = false
	return nil
}

// Source returns the bridge for read-only composition, or
// plugin.ErrNotConnected.
func (p *Plugin) Source() (hue.Source, error) {
	c, err := p.session()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Plugin) session() (hue.Client, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.connected || p.client == nil {
		return nil, plugin.ErrNotConnected
	}
	return p.client, nil
}
