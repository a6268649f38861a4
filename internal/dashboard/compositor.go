package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/gray-logic-hub/internal/backend/hue"
	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/home"
	"github.com/nerrad567/gray-logic-hub/internal/normalize"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
)

// ErrPrimaryUnavailable is returned when the primary plugin is missing,
// disconnected or cannot expose its bridge.
var ErrPrimaryUnavailable = errors.New("dashboard: primary backend unavailable")

// Logger defines the logging interface used by the Compositor.
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

// Primary is implemented by the lighting plugin. Each instance normalizes
// through its own mode's translator.
type Primary interface {
	Source() (hue.Source, error)
	Light(ctx context.Context, l hue.Light) device.Device
	Normalizer() *normalize.Normalizer
}

// Group is a room or zone with its statistics.
type Group struct {
	device.Room
	Stats Stats `json:"stats"`
}

// Dashboard is the composed view. All ids are flat.
type Dashboard struct {
	Rooms       []Group         `json:"rooms"`
	Zones       []Group         `json:"zones"`
	Lights      []device.Device `json:"lights"`
	MotionZones []device.Device `json:"motionZones"`
	Services    []plugin.Status `json:"services"`
	Stats       Stats           `json:"stats"`
	Demo        bool            `json:"demo"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// Compositor builds dashboards for the plugin registered as primary.
type Compositor struct {
	registry *plugin.Registry
	primary  string
	logger   Logger
}

// NewCompositor creates a compositor whose primary backend is the plugin
// registered under primaryID.
func NewCompositor(registry *plugin.Registry, primaryID string) *Compositor {
	return &Compositor{registry: registry, primary: primaryID, logger: noopLogger{}}
}

// SetLogger sets the logger for the compositor.
func (c *Compositor) SetLogger(logger Logger) {
	c.logger = logger
}

// fetched holds the raw results of one composition.
type fetched struct {
	lights  []hue.Light
	rooms   []hue.Group
	devices []hue.Device
	scenes  []hue.Scene
	zones   []hue.Group
	motion  []hue.MotionZone

	lightsErr, roomsErr, devicesErr error
}

// Compose builds the dashboard for the ctx mode.
//
// A failure to list lights, rooms or devices is returned. Scenes fall back
// to none with a warning; zones and motion zones fall back to none silently.
//
// Parameters:
//   - ctx: Request context; its mode selects the real or demo bridge
//
// Returns:
//   - *Dashboard: Lights, rooms, zones and motion zones with flat ids
//   - error: ErrPrimaryUnavailable when there is no bridge, or a failed read
func (c *Compositor) Compose(ctx context.Context) (*Dashboard, error) {
	// 1. Find the primary plugin and its bridge session
	primary, src, err := c.source(ctx)
	if err != nil {
		return nil, err
	}

	// 2. Read everything in parallel; only the core lists are fatal
	f := c.fetch(ctx, src)
	for _, e := range []error{f.lightsErr, f.roomsErr, f.devicesErr} {
		if e != nil {
			return nil, fmt.Errorf("composing dashboard: %w", e)
		}
	}

	norm := primary.Normalizer()
	ns := norm.Namespace()

	// 3. Normalise lights once; groups reference them by vendor id
	lights := make(map[string]device.Device, len(f.lights))
	all := make([]device.Device, 0, len(f.lights))
	for _, l := range f.lights {
		d := primary.Light(ctx, l)
		d.ID = home.FlatID(ns, d.ID)
		lights[l.ID] = d
		all = append(all, d)
	}

	d := &Dashboard{
		Lights:      all,
		MotionZones: make([]device.Device, 0, len(f.motion)),
		Stats:       ComputeStats(all),
		Demo:        plugin.ModeFrom(ctx) == plugin.ModeDemo,
		GeneratedAt: time.Now().UTC(),
	}
	// 4. Assemble groups, motion zones and service status
	d.Rooms = c.groups(ctx, norm, f.rooms, f, lights)
	d.Zones = c.groups(ctx, norm, f.zones, f, lights)
	for _, m := range f.motion {
		md := norm.HueMotionZone(ctx, m)
		md.ID = home.FlatID(ns, md.ID)
		d.MotionZones = append(d.MotionZones, md)
	}
	d.Services = c.services(ctx)
	return d, nil
}

func (c *Compositor) source(ctx context.Context) (Primary, hue.Source, error) {
	p, err := c.registry.Resolve(ctx, c.primary)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrPrimaryUnavailable, err)
	}
	primary, ok := p.(Primary)
	if !ok {
		return nil, nil, fmt.Errorf("%w: plugin %s has no bridge source", ErrPrimaryUnavailable, c.primary)
	}
	src, err := primary.Source()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrPrimaryUnavailable, err)
	}
	return primary, src, nil
}

// fetch runs the six reads in parallel. Each goroutine records its own
// result and never returns an error, so no read cancels another.
func (c *Compositor) fetch(ctx context.Context, src hue.Source) *fetched {
	f := &fetched{}
	var g errgroup.Group

	g.Go(func() error {
		f.lights, f.lightsErr = src.Lights(ctx)
		return nil
	})
	g.Go(func() error {
		f.rooms, f.roomsErr = src.Rooms(ctx)
		return nil
	})
	g.Go(func() error {
		f.devices, f.devicesErr = src.Devices(ctx)
		return nil
	})
	g.Go(func() error {
		scenes, err := src.Scenes(ctx)
		if err != nil {
			c.logger.Warn("scenes unavailable, showing none", "error", err)
			return nil
		}
		f.scenes = scenes
		return nil
	})
	g.Go(func() error {
		if zones, err := src.Zones(ctx); err == nil {
			f.zones = zones
		}
		return nil
	})
	g.Go(func() error {
		if motion, err := src.MotionZones(ctx); err == nil {
			f.motion = motion
		}
		return nil
	})

	_ = g.Wait()
	return f
}

// groups builds rooms or zones with resolved members. Groups without any
// current light are omitted.
func (c *Compositor) groups(ctx context.Context, norm *normalize.Normalizer, groups []hue.Group, f *fetched, lights map[string]device.Device) []Group {
	ns := norm.Namespace()
	members := Memberships(f.lights, f.devices, groups)

	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		ids, ok := members[g.ID]
		if !ok {
			c.logger.Debug("omitting group without lights", "group", g.Name)
			continue
		}
		devs := make([]device.Device, 0, len(ids))
		for _, id := range ids {
			devs = append(devs, lights[id])
		}

		room := norm.HueGroup(ctx, g, devs, nil)
		room.ID = home.FlatID(ns, room.ID)
		for _, s := range f.scenes {
			if s.Group.RID != g.ID {
				continue
			}
			sc := norm.HueScene(ctx, s, room.ID)
			sc.ID = home.FlatID(ns, sc.ID)
			room.Scenes = append(room.Scenes, sc)
		}
		out = append(out, Group{Room: room, Stats: ComputeStats(devs)})
	}
	return out
}

// services returns the connection status of every plugin in the ctx mode.
func (c *Compositor) services(ctx context.Context) []plugin.Status {
	plugins := c.registry.Active(ctx)
	out := make([]plugin.Status, 0, len(plugins))
	for _, p := range plugins {
		out = append(out, p.ConnectionStatus(ctx))
	}
	return out
}
