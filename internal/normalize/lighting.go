package normalize

import (
	"context"

	"github.com/nerrad567/gray-logic-hub/internal/backend/hue"
	"github.com/nerrad567/gray-logic-hub/internal/device"
)

// HueGroup converts a room or zone. members are already-normalized lights.
func (n *Normalizer) HueGroup(ctx context.Context, g hue.Group, members []device.Device, scenes []device.Scene) device.Room {
	if members == nil {
		members = []device.Device{}
	}
	if scenes == nil {
		scenes = []device.Scene{}
	}
	return device.Room{
		ID:        n.tr.GetSlug(ctx, n.ns, g.ID, g.Name),
		Name:      fallback(g.Name, "Room"),
		ServiceID: n.ns,
		Devices:   members,
		Scenes:    scenes,
		VendorRef: g.ID,
	}
}

// HueScene converts a scene. roomID is the external id of its group, if known.
func (n *Normalizer) HueScene(ctx context.Context, s hue.Scene, roomID string) device.Scene {
	return device.Scene{
		ID:        n.tr.GetSlug(ctx, n.ns, s.ID, s.Name),
		Name:      fallback(s.Name, "Scene"),
		ServiceID: n.ns,
		RoomID:    roomID,
		VendorRef: s.ID,
	}
}

// lightState builds the state map and capability set of a light.
func lightState(on, reachable bool, dimming *float64, color *hue.XY, mirek *int) (device.State, device.Capabilities) {
	state := device.State{"on": on, "reachable": reachable}
	caps := []device.Capability{device.CapOnOff}

	if dimming != nil {
		state["brightness"] = *dimming
		caps = append(caps, device.CapDim)
	}
	if color != nil {
		state["color"] = map[string]any{"x": color.X, "y": color.Y}
		caps = append(caps, device.CapColor)
	}
	if mirek != nil {
		state["colorTemp"] = *mirek
		caps = append(caps, device.CapColorTemp)
	}
	return state, device.NewCapabilities(caps...)
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// HueMotionZone converts a presence area into a motion sensor.
func (n *Normalizer) HueMotionZone(ctx context.Context, m hue.MotionZone) device.Device {
	return device.Device{
		ID:   n.tr.GetSlug(ctx, n.ns, m.ID, m.Name),
		Name: fallback(m.Name, "Motion"),
		Type: device.DeviceTypeSensor,
		State: device.State{
			"motion":    m.Motion,
			"enabled":   m.Enabled,
			"reachable": m.Reachable,
		},
		ServiceID:    n.ns,
		Capabilities: device.NewCapabilities(device.CapMotionDetect),
		VendorRef:    m.ID,
	}
}
