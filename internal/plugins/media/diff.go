package media

import (
	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
)

// Change is a track or playback transition of one speaker. Only the parts
// that changed are set.
type Change struct {
	ID            string `json:"id"`
	Track         any    `json:"track,omitempty"`
	TrackChanged  bool   `json:"trackChanged,omitempty"`
	PlaybackState string `json:"playbackState,omitempty"`
}

// DetectChanges reports per-speaker track identity changes and play/pause
// transitions under "players", and ids of speakers that vanished under
// "removed". Volume changes are not pushed.
func (p *Plugin) DetectChanges(prev, curr *plugin.Snapshot) plugin.Delta {
	if prev == nil || curr == nil {
		return nil
	}

	before := make(map[string]device.Device, len(prev.Devices))
	for _, d := range prev.Devices {
		before[d.ID] = d
	}

	var changes []Change
	seen := make(map[string]struct{}, len(curr.Devices))
	for _, d := range curr.Devices {
		seen[d.ID] = struct{}{}
		old, ok := before[d.ID]
		if !ok {
			old = device.Device{State: device.State{}}
		}
		c := Change{ID: d.ID}
		if trackID(old.State) != trackID(d.State) {
			c.Track = d.State["track"]
			c.TrackChanged = true
		}
		if was, now := old.State.String("playbackState", ""), d.State.String("playbackState", ""); was != now {
			c.PlaybackState = now
		}
		if c.TrackChanged || c.PlaybackState != "" {
			changes = append(changes, c)
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
		delta["players"] = changes
	}
	if len(removed) > 0 {
		delta["removed"] = removed
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

// trackID returns the object id of the current track, or "" when none.
func trackID(s device.State) string {
	tr, ok := s["track"].(map[string]any)
	if !ok {
		return ""
	}
	id, _ := tr["id"].(string)
	return id
}
