package heating

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-hub/internal/backend/hive"
	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/home"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
)

// Setpoint limits accepted by the service, in °C.
const (
	minTarget = 5.0
	maxTarget = 32.0
)

// Devices returns every modelled product. Unknown product types are skipped.
func (p *Plugin) Devices(ctx context.Context) ([]device.Device, error) {
	b, err := p.session()
	if err != nil {
		return nil, err
	}
	products, err := b.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	out := make([]device.Device, 0, len(products))
	for _, prod := range products {
		if d, ok := p.norm.HiveProduct(ctx, prod); ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// UpdateDevice changes a thermostat or hot water product.
func (p *Plugin) UpdateDevice(ctx context.Context, vendorID string, state device.State) (plugin.Result, error) {
	b, err := p.session()
	if err != nil {
		return plugin.Result{}, err
	}
	products, err := b.Products(ctx)
	if err != nil {
		return plugin.Result{}, fmt.Errorf("listing products: %w", err)
	}

	var target *hive.Product
	for i := range products {
		if products[i].ID == vendorID {
			target = &products[i]
			break
		}
	}
	if target == nil {
		return plugin.Result{}, fmt.Errorf("%w: product %s", plugin.ErrNotFound, vendorID)
	}

	patch, err := toPatch(target.Type, state)
	if err != nil {
		return plugin.Result{}, err
	}
	if err := b.SetState(ctx, target.Type, target.ID, patch); err != nil {
		return plugin.Result{}, fmt.Errorf("updating %s %s: %w", target.Type, vendorID, err)
	}
	p.logger.Debug("heating product updated", "type", target.Type, "product", vendorID)
	return plugin.Result{Success: true, Updated: 1}, nil
}

// toPatch translates a client state patch into the service's node state.
//
// Thermostats accept target (°C), mode (schedule, manual, off), isOn and
// boost (minutes, or false to cancel). Hot water accepts isOn, mode and
// boost. Sensors are read-only.
func toPatch(productType string, state device.State) (map[string]any, error) {
	patch := make(map[string]any)

	switch productType {
	case hive.TypeHeating, hive.TypeTRV:
		if _, ok := state["target"]; ok {
			t := state.Float("target", -1)
			if t < minTarget || t > maxTarget {
				return nil, fmt.Errorf("%w: target must be between %.0f and %.0f", device.ErrInvalidState, minTarget, maxTarget)
			}
			patch["target"] = t
		}
		if v, ok := state["isOn"]; ok {
			on, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: isOn must be a boolean", device.ErrInvalidState)
			}
			if on {
				patch["mode"] = "SCHEDULE"
			} else {
				patch["mode"] = "OFF"
			}
		}
	case hive.TypeHotWater:
		if v, ok := state["isOn"]; ok {
			on, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: isOn must be a boolean", device.ErrInvalidState)
			}
			patch["mode"] = "MANUAL"
			if on {
				patch["status"] = "ON"
			} else {
				patch["status"] = "OFF"
			}
		}
	default:
		return nil, fmt.Errorf("%w: %s is read-only", device.ErrInvalidState, productType)
	}

	if v, ok := state["mode"]; ok {
		mode, ok := v.(string)
		switch strings.ToLower(mode) {
		case "schedule", "manual", "off":
		default:
			ok = false
		}
		if !ok {
			return nil, fmt.Errorf("%w: mode must be schedule, manual or off", device.ErrInvalidState)
		}
		patch["mode"] = strings.ToUpper(mode)
	}

	if v, ok := state["boost"]; ok {
		switch b := v.(type) {
		case bool:
			if b {
				return nil, fmt.Errorf("%w: boost takes a duration in minutes", device.ErrInvalidState)
			}
			patch["boost"] = nil
		default:
			minutes := state.Float("boost", 0)
			if minutes <= 0 || minutes > 240 {
				return nil, fmt.Errorf("%w: boost must be between 1 and 240 minutes", device.ErrInvalidState)
			}
			patch["boost"] = int(minutes)
		}
	}

	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: no supported state keys", device.ErrInvalidState)
	}
	return patch, nil
}

// Status returns a snapshot of devices for change detection, with flat ids.
func (p *Plugin) Status(ctx context.Context) (*plugin.Snapshot, error) {
	snap := &plugin.Snapshot{
		Plugin:    p.id,
		Connected: p.IsConnected(ctx),
		TakenAt:   time.Now().UTC(),
	}
	if !snap.Connected {
		return snap, nil
	}
	devices, err := p.Devices(ctx)
	if err != nil {
		return nil, err
	}
	snap.Devices = devices
	return home.FlatSnapshot(snap), nil
}
