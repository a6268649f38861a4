package home

import (
	"fmt"
	"strings"

	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
)

// Separator divides the plugin identity from the local id.
const Separator = ":"

// FlatID joins a plugin identity and a local id. A local id that already
// carries the prefix is returned unchanged.
func FlatID(pluginID, local string) string {
	if strings.HasPrefix(local, pluginID+Separator) {
		return local
	}
	return pluginID + Separator + local
}

// ParseFlatID splits id into plugin identity and local id. prefixed is false
// for a bare id, in which case pluginID is empty and local is id.
func ParseFlatID(id string) (pluginID, local string, prefixed bool, err error) {
	if id == "" {
		return "", "", false, fmt.Errorf("%w: empty", ErrInvalidID)
	}
	before, after, found := strings.Cut(id, Separator)
	if !found {
		return "", id, false, nil
	}
	if before == "" || after == "" {
		return "", "", false, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return before, after, true, nil
}

// FlatSnapshot rewrites the ids in snap to flat form in place: rooms,
// zones, devices, room members and scenes, including each scene's room
// reference. Ids that are already flat are left alone. A nil snap is
// returned as is.
func FlatSnapshot(snap *plugin.Snapshot) *plugin.Snapshot {
	if snap == nil {
		return nil
	}
	ns := snap.Plugin
	for i := range snap.Rooms {
		flatRoom(ns, &snap.Rooms[i])
	}
	for i := range snap.Zones {
		flatRoom(ns, (*device.Room)(&snap.Zones[i]))
	}
	for i := range snap.Devices {
		flatDevice(ns, &snap.Devices[i])
	}
	return snap
}

func flatRoom(ns string, r *device.Room) {
	r.ID = FlatID(ns, r.ID)
	if r.ServiceID == "" {
		r.ServiceID = ns
	}
	for i := range r.Devices {
		flatDevice(ns, &r.Devices[i])
	}
	for i := range r.Scenes {
		sc := &r.Scenes[i]
		sc.ID = FlatID(ns, sc.ID)
		sc.RoomID = r.ID
		if sc.ServiceID == "" {
			sc.ServiceID = ns
		}
	}
}

func flatDevice(ns string, d *device.Device) {
	d.ID = FlatID(ns, d.ID)
	if d.ServiceID == "" {
		d.ServiceID = ns
	}
}
