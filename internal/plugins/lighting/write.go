package lighting

import (
	"context"
	"fmt"

	"github.com/nerrad567/gray-logic-hub/internal/backend/hue"
	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/normalize"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
)

// UpdateDevice applies state to a single light.
func (p *Plugin) UpdateDevice(ctx context.Context, vendorID string, state device.State) (plugin.Result, error) {
	c, err := p.session()
	if err != nil {
		return plugin.Result{}, err
	}
	u, err := toLightUpdate(state)
	if err != nil {
		return plugin.Result{}, err
	}
	if err := c.SetLight(ctx, vendorID, u); err != nil {
		return plugin.Result{}, fmt.Errorf("updating light %s: %w", vendorID, err)
	}
	p.logger.Debug("light updated", "plugin", p.id, "light", vendorID)

	res := plugin.Result{Success: true, Updated: 1}
	if d, ok := p.updated(ctx, c, vendorID, u); ok {
		res.Device = &d
	}
	return res, nil
}

// updated re-reads a light after a write and overlays the update, since
// the bridge may still report the previous state for a moment.
func (p *Plugin) updated(ctx context.Context, c hue.Source, vendorID string, u hue.LightUpdate) (device.Device, bool) {
	lights, err := c.Lights(ctx)
	if err != nil {
		p.logger.Warn("re-reading light failed", "plugin", p.id, "light", vendorID, "error", err)
		return device.Device{}, false
	}
	for _, l := range lights {
		if l.ID == vendorID {
			rec := applyUpdate(normalize.Reenrich(p.Light(ctx, l)), u)
			return p.norm.EnrichedLight(ctx, rec), true
		}
	}
	return device.Device{}, false
}

// applyUpdate overlays u on rec and derives the display fields again.
func applyUpdate(rec normalize.EnrichedLight, u hue.LightUpdate) normalize.EnrichedLight {
	if u.On != nil {
		rec.On = *u.On
	}
	if u.Dimming != nil {
		rec.Dimming = u.Dimming
	}
	if u.Color != nil {
		rec.Color = u.Color
	}
	if u.Mirek != nil {
		rec.Mirek = u.Mirek
	}
	rec.ColorHint = colorHint(rec.Color, rec.Mirek)
	rec.Shadow = rec.On && rec.Reachable
	return rec
}

// UpdateRoomDevices applies state to every light in a room.
func (p *Plugin) UpdateRoomDevices(ctx context.Context, vendorID string, state device.State) (plugin.Result, error) {
	return p.updateGroup(ctx, vendorID, state)
}

// UpdateZoneDevices applies state to every light in a zone.
func (p *Plugin) UpdateZoneDevices(ctx context.Context, vendorID string, state device.State) (plugin.Result, error) {
	return p.updateGroup(ctx, vendorID, state)
}

func (p *Plugin) updateGroup(ctx context.Context, vendorID string, state device.State) (plugin.Result, error) {
	c, err := p.session()
	if err != nil {
		return plugin.Result{}, err
	}
	u, err := toLightUpdate(state)
	if err != nil {
		return plugin.Result{}, err
	}
	if err := c.SetGroup(ctx, vendorID, u); err != nil {
		return plugin.Result{}, fmt.Errorf("updating group %s: %w", vendorID, err)
	}
	p.logger.Debug("group updated", "plugin", p.id, "group", vendorID)
	return plugin.Result{Success: true}, nil
}

// ActivateScene recalls a stored scene.
func (p *Plugin) ActivateScene(ctx context.Context, vendorID string) (plugin.Result, error) {
	c, err := p.session()
	if err != nil {
		return plugin.Result{}, err
	}
	if err := c.RecallScene(ctx, vendorID); err != nil {
		return plugin.Result{}, fmt.Errorf("recalling scene %s: %w", vendorID, err)
	}
	p.logger.Info("scene activated", "plugin", p.id, "scene", vendorID)
	return plugin.Result{Success: true}, nil
}

// toLightUpdate parses the client state patch. Recognised keys are on (or
// isOn), brightness (0-100), color ({x, y}) and colorTemp (mirek).
// Unknown keys are ignored; a patch with no recognised key is rejected.
func toLightUpdate(state device.State) (hue.LightUpdate, error) {
	var u hue.LightUpdate
	set := false

	for _, key := range []string{"on", "isOn"} {
		v, ok := state[key]
		if !ok {
			continue
		}
		b, ok := v.(bool)
		if !ok {
			return u, fmt.Errorf("%w: %s must be a boolean", device.ErrInvalidState, key)
		}
		u.On = &b
		set = true
	}

	if _, ok := state["brightness"]; ok {
		b := state.Float("brightness", -1)
		if b < 0 || b > 100 {
			return u, fmt.Errorf("%w: brightness must be a number between 0 and 100", device.ErrInvalidState)
		}
		u.Dimming = &b
		set = true
	}

	if v, ok := state["color"]; ok {
		m, ok := v.(map[string]any)
		if !ok {
			return u, fmt.Errorf("%w: color must be an object with x and y", device.ErrInvalidState)
		}
		cs := device.State(m)
		x, y := cs.Float("x", -1), cs.Float("y", -1)
		if x < 0 || x > 1 || y < 0 || y > 1 {
			return u, fmt.Errorf("%w: color x and y must be between 0 and 1", device.ErrInvalidState)
		}
		u.Color = &hue.XY{X: x, Y: y}
		set = true
	}

	if _, ok := state["colorTemp"]; ok {
		m := state.Float("colorTemp", -1)
		if m < 153 || m > 500 {
			return u, fmt.Errorf("%w: colorTemp must be between 153 and 500 mirek", device.ErrInvalidState)
		}
		mirek := int(m)
		u.Mirek = &mirek
		set = true
	}

	if !set {
		return u, fmt.Errorf("%w: no supported state keys", device.ErrInvalidState)
	}
	return u, nil
}
