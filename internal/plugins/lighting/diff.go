package lighting

import (
	"reflect"

	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
)

// DetectChanges compares rooms by id. The delta carries "changed" and
// "added" rooms in full and "removed" room ids, plus "connected" when the
// connection state flipped. Empty parts are omitted.
func (p *Plugin) DetectChanges(prev, curr *plugin.Snapshot) plugin.Delta {
	if prev == nil || curr == nil {
		return nil
	}

	before := make(map[string]device.Room, len(prev.Rooms))
	for _, r := range prev.Rooms {
		before[r.ID] = r
	}

	var changed, added []device.Room
	seen := make(map[string]struct{}, len(curr.Rooms))
	for _, r := range curr.Rooms {
		seen[r.ID] = struct{}{}
		old, ok := before[r.ID]
		switch {
		case !ok:
			added = append(added, r)
		case !reflect.DeepEqual(old, r):
			changed = append(changed, r)
		}
	}

	var removed []string
	for _, r := range prev.Rooms {
		if _, ok := seen[r.ID]; !ok {
			removed = append(removed, r.ID)
		}
	}

	delta := plugin.Delta{}
	if prev.Connected != curr.Connected {
		delta["connected"] = curr.Connected
	}
	if len(changed) > 0 {
		delta["changed"] = changed
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
