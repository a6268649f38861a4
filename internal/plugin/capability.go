package plugin

import (
	"context"
	"sort"

	"github.com/nerrad567/gray-logic-hub/internal/device"
)

// Capability names an optional part of the plugin contract.
type Capability string

// Optional capabilities. Each is backed by the interface named alongside it.
const (
	CapRooms           Capability = "rooms"               // RoomProvider
	CapDevices         Capability = "devices"             // DeviceProvider
	CapZones           Capability = "zones"               // ZoneProvider
	CapUpdateDevice    Capability = "update_device"       // DeviceUpdater
	CapUpdateRoom      Capability = "update_room_devices" // RoomUpdater
	CapUpdateZone      Capability = "update_zone_devices" // ZoneUpdater
	CapScenes          Capability = "activate_scene"      // SceneActivator
	CapChangeDetection Capability = "detect_changes"      // ChangeDetector
)

// AllCapabilities lists every optional capability in a stable order.
var AllCapabilities = []Capability{
	CapRooms, CapDevices, CapZones,
	CapUpdateDevice, CapUpdateRoom, CapUpdateZone,
	CapScenes, CapChangeDetection,
}

// CapabilitySet is an immutable set of capabilities.
type CapabilitySet struct {
	caps map[Capability]struct{}
}

// NewCapabilitySet builds a set from caps. Duplicates are ignored.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	m := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		m[c] = struct{}{}
	}
	return CapabilitySet{caps: m}
}

// Has reports whether c is in the set. The zero set has nothing.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s.caps[c]
	return ok
}

// List returns the capabilities in sorted order.
func (s CapabilitySet) List() []Capability {
	out := make([]Capability, 0, len(s.caps))
	for c := range s.caps {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Rooms returns the plugin's rooms, or nil if it does not declare CapRooms.
func Rooms(ctx context.Context, p Plugin) ([]device.Room, error) {
	if !p.Capabilities().Has(CapRooms) {
		return nil, nil
	}
	return p.(RoomProvider).Rooms(ctx) //nolint:forcetypeassert // guaranteed by Validate
}

// Devices returns the plugin's devices, or nil if it does not declare CapDevices.
func Devices(ctx context.Context, p Plugin) ([]device.Device, error) {
	if !p.Capabilities().Has(CapDevices) {
		return nil, nil
	}
	return p.(DeviceProvider).Devices(ctx) //nolint:forcetypeassert // guaranteed by Validate
}

// Zones returns the plugin's zones, or nil if it does not declare CapZones.
func Zones(ctx context.Context, p Plugin) ([]device.Zone, error) {
	if !p.Capabilities().Has(CapZones) {
		return nil, nil
	}
	return p.(ZoneProvider).Zones(ctx) //nolint:forcetypeassert // guaranteed by Validate
}

// UpdateDevice dispatches a device update, or returns ErrUnsupported.
func UpdateDevice(ctx context.Context, p Plugin, vendorID string, state device.State) (Result, error) {
	if !p.Capabilities().Has(CapUpdateDevice) {
		return Result{}, ErrUnsupported
	}
	return p.(DeviceUpdater).UpdateDevice(ctx, vendorID, state) //nolint:forcetypeassert // guaranteed by Validate
}

// UpdateRoomDevices dispatches a room update, or returns ErrUnsupported.
func UpdateRoomDevices(ctx context.Context, p Plugin, vendorID string, state device.State) (Result, error) {
	if !p.Capabilities().Has(CapUpdateRoom) {
		return Result{}, ErrUnsupported
	}
	return p.(RoomUpdater).UpdateRoomDevices(ctx, vendorID, state) //nolint:forcetypeassert // guaranteed by Validate
}

// UpdateZoneDevices dispatches a zone update, or returns ErrUnsupported.
func UpdateZoneDevices(ctx context.Context, p Plugin, vendorID string, state device.State) (Result, error) {
	if !p.Capabilities().Has(CapUpdateZone) {
		return Result{}, ErrUnsupported
	}
	return p.(ZoneUpdater).UpdateZoneDevices(ctx, vendorID, state) //nolint:forcetypeassert // guaranteed by Validate
}

// ActivateScene dispatches a scene recall, or returns ErrUnsupported.
func ActivateScene(ctx context.Context, p Plugin, vendorID string) (Result, error) {
	if !p.Capabilities().Has(CapScenes) {
		return Result{}, ErrUnsupported
	}
	return p.(SceneActivator).ActivateScene(ctx, vendorID) //nolint:forcetypeassert // guaranteed by Validate
}

// DetectChanges runs the plugin's change detector, or returns nil if it has none.
func DetectChanges(p Plugin, prev, curr *Snapshot) Delta {
	if !p.Capabilities().Has(CapChangeDetection) {
		return nil
	}
	d := p.(ChangeDetector).DetectChanges(prev, curr) //nolint:forcetypeassert // guaranteed by Validate
	if len(d) == 0 {
		return nil
	}
	return d
}
