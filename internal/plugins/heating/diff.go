package heating

import (
	"reflect"

	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
)

// watched are the state fields whose changes are pushed.
var watched = []string{"temperature", "target", "mode", "isOn"}

// Change lists the watched fields of one device that changed, with their
// new values. A field that disappeared maps to nil.
type Change struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// DetectChanges reports per-device changes to temperature, target, mode
// and on state under "devices", new devices under "added", vanished device
// ids under "removed", and "connected" when the connection flipped.
func (p *Plugin) DetectChanges(prev, curr *plugin.Snapshot) plugin.Delta {
	if prev == nil || curr == nil {
		return nil
	}

	before := make(map[string]device.Device, len(prev.Devices))
	for _, d := range prev.Devices {
		before[d.ID] = d
	}

	var (
		changes []Change
		added   []device.Device
	)
	seen := make(map[string]struct{}, len(curr.Devices))
	for _, d := range curr.Devices {
		seen[d.ID] = struct{}{}
		old, ok := before[d.ID]
		if !ok {
			added = append(added, d)
			continue
		}
		fields := make(map[string]any)
		for _, key := range watched {
			if !reflect.DeepEqual(old.State[key], d.State[key]) {
				fields[key] = d.State[key]
			}
		}
		if len(fields) > 0 {
			changes = append(changes, Change{ID: d.ID, Fields: fields})
		}
	}

	var removed []string
	for _, d := range prev.Devices {
		if _, ok := seen[d.ID]; !ok {
			removed = append(removed, d.ID)
		}
	}

	delta := plugin.Delta{}
	if prev.Connected != curr.Connected {
		delta["connected"] = curr.Connected
	}
	if len(changes) > 0 {
		delta["devices"] = changes
	}
	if len(added) > 0 {
		delta["added"] = added
	}
	if len(removed) > 0 {
		delta["removed"] = removed
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}
