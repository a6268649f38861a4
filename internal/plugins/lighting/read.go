package lighting

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-hub/internal/backend/hue"
	"github.com/nerrad567/gray-logic-hub/internal/dashboard"
	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/home"
	"github.com/nerrad567/gray-logic-hub/internal/normalize"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
)

// Devices returns every light on the bridge.
func (p *Plugin) Devices(ctx context.Context) ([]device.Device, error) {
	c, err := p.session()
	if err != nil {
		return nil, err
	}
	lights, err := c.Lights(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing lights: %w", err)
	}
	out := make([]device.Device, 0, len(lights))
	for _, l := range lights {
		out = append(out, p.Light(ctx, l))
	}
	return out, nil
}

// Rooms returns the bridge rooms that currently contain at least one light.
func (p *Plugin) Rooms(ctx context.Context) ([]device.Room, error) {
	c, err := p.session()
	if err != nil {
		return nil, err
	}
	groups, err := c.Rooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	return p.groups(ctx, c, groups)
}

// Zones returns the bridge zones that currently contain at least one light.
func (p *Plugin) Zones(ctx context.Context) ([]device.Zone, error) {
	c, err := p.session()
	if err != nil {
		return nil, err
	}
	groups, err := c.Zones(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing zones: %w", err)
	}
	rooms, err := p.groups(ctx, c, groups)
	if err != nil {
		return nil, err
	}
	zones := make([]device.Zone, len(rooms))
	for i, r := range rooms {
		zones[i] = device.Zone(r)
	}
	return zones, nil
}

// groups resolves membership and scenes for groups. Scenes are optional:
// a failure to list them is logged and the groups are returned without.
func (p *Plugin) groups(ctx context.Context, c hue.Source, groups []hue.Group) ([]device.Room, error) {
	lights, err := c.Lights(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing lights: %w", err)
	}
	devices, err := c.Devices(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	scenes, err := c.Scenes(ctx)
	if err != nil {
		p.logger.Warn("listing scenes failed", "plugin", p.id, "error", err)
		scenes = nil
	}

	byID := make(map[string]hue.Light, len(lights))
	for _, l := range lights {
		byID[l.ID] = l
	}
	members := dashboard.Memberships(lights, devices, groups)

	out := make([]device.Room, 0, len(groups))
	for _, g := range groups {
		ids, ok := members[g.ID]
		if !ok {
			continue
		}
		devs := make([]device.Device, 0, len(ids))
		for _, id := range ids {
			devs = append(devs, p.Light(ctx, byID[id]))
		}

		room := p.norm.HueGroup(ctx, g, devs, nil)
		for _, s := range scenes {
			if s.Group.RID == g.ID {
				room.Scenes = append(room.Scenes, p.norm.HueScene(ctx, s, room.ID))
			}
		}
		out = append(out, room)
	}
	return out, nil
}

// Status returns a snapshot of rooms for change detection, with flat ids.
// A disconnected plugin yields an empty snapshot rather than an error.
func (p *Plugin) Status(ctx context.Context) (*plugin.Snapshot, error) {
	snap := &plugin.Snapshot{
		Plugin:    p.id,
		Connected: p.IsConnected(ctx),
		TakenAt:   time.Now().UTC(),
	}
	if !snap.Connected {
		return snap, nil
	}
	rooms, err := p.Rooms(ctx)
	if err != nil {
		return nil, err
	}
	snap.Rooms = rooms
	return home.FlatSnapshot(snap), nil
}

// Light enriches and normalizes a single bridge light.
func (p *Plugin) Light(ctx context.Context, l hue.Light) device.Device {
	return p.norm.EnrichedLight(ctx, enrich(l))
}

// Normalizer returns the normalizer bound to this plugin's translator.
func (p *Plugin) Normalizer() *normalize.Normalizer {
	return p.norm
}
