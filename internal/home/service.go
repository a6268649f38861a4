package home

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
	"github.com/nerrad567/gray-logic-hub/internal/slug"
)

// Logger defines the logging interface used by the Service.
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

// FetchObserver is told about every per-plugin fetch made by GetHome.
type FetchObserver interface {
	ObserveFetch(pluginID string, mode plugin.Mode, took time.Duration, err error)
}

// Observers fans a fetch observation out to several observers.
type Observers []FetchObserver

// ObserveFetch forwards to every observer.
func (obs Observers) ObserveFetch(pluginID string, mode plugin.Mode, took time.Duration, err error) {
	for _, o := range obs {
		o.ObserveFetch(pluginID, mode, took, err)
	}
}

// Translators holds the slug translator of each mode. Demo mode has its own
// so demo ids never reach the persisted store.
type Translators struct {
	Real slug.Translator
	Demo slug.Translator
}

// For returns the translator for mode m.
func (t Translators) For(m plugin.Mode) slug.Translator {
	if m == plugin.ModeDemo {
		return t.Demo
	}
	return t.Real
}

// Config tunes the Service.
type Config struct {
	// DefaultPlugin receives ids without a plugin prefix.
	DefaultPlugin string

	// FetchTimeout bounds each plugin's contribution to GetHome.
	// Zero disables the bound.
	FetchTimeout time.Duration
}

// Service aggregates plugins into the home model and routes commands.
type Service struct {
	registry *plugin.Registry
	slugs    Translators
	rooms    RoomMapper
	cfg      Config
	logger   Logger
	observer FetchObserver
}

// NewService creates the aggregation service. rooms may be nil.
func NewService(registry *plugin.Registry, slugs Translators, rooms RoomMapper, cfg Config) *Service {
	if rooms == nil {
		rooms = StaticRoomMapper(nil)
	}
	return &Service{
		registry: registry,
		slugs:    slugs,
		rooms:    rooms,
		cfg:      cfg,
		logger:   noopLogger{},
		observer: Observers(nil),
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// SetObserver sets the fetch observer.
func (s *Service) SetObserver(o FetchObserver) {
	s.observer = o
}

// contribution is one plugin's share of the home.
type contribution struct {
	rooms   []device.Room
	devices []device.Device
	zones   []device.Zone
}

// GetHome fetches every connected plugin of the ctx mode in parallel and
// merges their rooms, devices and zones in registration order. A failing
// plugin is logged and left out; GetHome itself never fails.
//
// Parameters:
//   - ctx: Request context; its mode selects the real or demo plugins
//
// Returns:
//   - device.Home: Merged home with flat ids, empty lists when nothing is connected
func (s *Service) GetHome(ctx context.Context) device.Home {
	plugins := s.registry.Active(ctx)
	parts := make([]*contribution, len(plugins))

	// 1. Fetch every plugin. The goroutines never return an error so that
	// one failing plugin cannot cancel the others.
	var g errgroup.Group
	for i, p := range plugins {
		i, p := i, p
		g.Go(func() error {
			parts[i] = s.collect(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	// 2. Merge in registration order
	home := device.Home{
		Rooms:   []device.Room{},
		Devices: []device.Device{},
		Zones:   []device.Zone{},
	}
	for _, c := range parts {
		if c == nil {
			continue
		}
		home.Rooms = append(home.Rooms, c.rooms...)
		home.Devices = append(home.Devices, c.devices...)
		home.Zones = append(home.Zones, c.zones...)
	}
	return home
}

// collect fetches and remaps one plugin. It returns nil when the plugin is
// disconnected or any of its fetches failed.
func (s *Service) collect(ctx context.Context, p plugin.Plugin) *contribution {
	id := p.ID()
	mode := plugin.ModeFrom(ctx)
	if !p.IsConnected(ctx) {
		return nil
	}

	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}

	start := time.Now()
	rooms, devices, zones, err := fetch(ctx, p)
	s.observer.ObserveFetch(id, mode, time.Since(start), err)
	if err != nil {
		s.logger.Warn("plugin excluded from home", "plugin", id, "mode", mode.String(), "error", err)
		return nil
	}

	tr := s.slugs.For(mode)
	c := &contribution{
		rooms:   make([]device.Room, 0, len(rooms)),
		devices: make([]device.Device, 0, len(devices)),
		zones:   make([]device.Zone, 0, len(zones)),
	}
	for _, r := range rooms {
		c.rooms = append(c.rooms, remapRoom(ctx, tr, id, r))
	}
	for _, z := range zones {
		c.zones = append(c.zones, device.Zone(remapRoom(ctx, tr, id, device.Room(z))))
	}

	if p.Capabilities().Has(plugin.CapDevices) {
		for _, d := range devices {
			c.devices = append(c.devices, remapDevice(ctx, tr, id, d))
		}
	} else {
		// Without a device listing, devices are the union of room members.
		seen := make(map[string]struct{})
		for _, r := range c.rooms {
			for _, d := range r.Devices {
				if _, dup := seen[d.ID]; dup {
					continue
				}
				seen[d.ID] = struct{}{}
				c.devices = append(c.devices, d)
			}
		}
	}
	return c
}

func fetch(ctx context.Context, p plugin.Plugin) ([]device.Room, []device.Device, []device.Zone, error) {
	rooms, err := plugin.Rooms(ctx, p)
	if err != nil {
		return nil, nil, nil, err
	}
	devices, err := plugin.Devices(ctx, p)
	if err != nil {
		return nil, nil, nil, err
	}
	zones, err := plugin.Zones(ctx, p)
	if err != nil {
		return nil, nil, nil, err
	}
	return rooms, devices, zones, nil
}

// localID returns the slug for an entity. Plugins normally return slugs
// already; an id the translator does not know is re-derived from the
// vendor reference so no raw vendor id leaves the core.
func localID(ctx context.Context, tr slug.Translator, ns, id, vendorRef, name string) string {
	id = strings.TrimPrefix(id, ns+Separator)
	if vendorRef == "" || tr.HasSlug(ns, id) {
		return id
	}
	return tr.GetSlug(ctx, ns, vendorRef, name)
}

func remapDevice(ctx context.Context, tr slug.Translator, ns string, d device.Device) device.Device {
	out := *d.DeepCopy()
	out.ID = FlatID(ns, localID(ctx, tr, ns, d.ID, d.VendorRef, d.Name))
	if out.ServiceID == "" {
		out.ServiceID = ns
	}
	return out
}

func remapRoom(ctx context.Context, tr slug.Translator, ns string, r device.Room) device.Room {
	out := device.Room{
		ID:        FlatID(ns, localID(ctx, tr, ns, r.ID, r.VendorRef, r.Name)),
		Name:      r.Name,
		ServiceID: r.ServiceID,
		Devices:   make([]device.Device, 0, len(r.Devices)),
		Scenes:    make([]device.Scene, 0, len(r.Scenes)),
		VendorRef: r.VendorRef,
	}
	if out.ServiceID == "" {
		out.ServiceID = ns
	}
	for _, d := range r.Devices {
		out.Devices = append(out.Devices, remapDevice(ctx, tr, ns, d))
	}
	for _, sc := range r.Scenes {
		sc.ID = FlatID(ns, localID(ctx, tr, ns, sc.ID, sc.VendorRef, sc.Name))
		sc.RoomID = out.ID
		if sc.ServiceID == "" {
			sc.ServiceID = ns
		}
		out.Scenes = append(out.Scenes, sc)
	}
	return out
}

// Statuses returns the connection status of every plugin in the ctx mode.
func (s *Service) Statuses(ctx context.Context) []plugin.Status {
	plugins := s.registry.Active(ctx)
	out := make([]plugin.Status, 0, len(plugins))
	for _, p := range plugins {
		out = append(out, p.ConnectionStatus(ctx))
	}
	return out
}

// Connect forwards credentials to the plugin named id.
//
// Parameters:
//   - ctx: Request context; its mode selects the real or demo plugin
//   - id: Plugin identity
//   - creds: Backend credentials; empty reconnects with stored ones
//
// Returns:
//   - plugin.ConnectResult: The plugin's outcome, including a refused login
//   - error: A RoutingError for an unknown plugin, or a backend failure
func (s *Service) Connect(ctx context.Context, id string, creds plugin.Credentials) (plugin.ConnectResult, error) {
	// 1. Resolve the plugin in the ctx mode
	p, err := s.resolve(ctx, "connect", id, id)
	if err != nil {
		return plugin.ConnectResult{}, err
	}

	// 2. Hand the credentials over
	return p.Connect(ctx, creds)
}

// Disconnect ends the plugin's session; with forget it also clears stored
// credentials.
func (s *Service) Disconnect(ctx context.Context, id string, forget bool) error {
	p, err := s.resolve(ctx, "disconnect", id, id)
	if err != nil {
		return err
	}
	if forget {
		return p.ClearCredentials()
	}
	return p.Disconnect(ctx)
}

// resolve finds the plugin for pluginID in the ctx mode.
func (s *Service) resolve(ctx context.Context, op, rawID, pluginID string) (plugin.Plugin, error) {
	p, err := s.registry.Resolve(ctx, pluginID)
	if errors.Is(err, plugin.ErrNotRegistered) {
		return nil, &RoutingError{ID: rawID, Plugin: pluginID, Op: op, Err: ErrUnknownPlugin}
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
