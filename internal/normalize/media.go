package normalize

import (
	"context"
	"strings"

	"github.com/nerrad567/gray-logic-hub/internal/backend/sonos"
	"github.com/nerrad567/gray-logic-hub/internal/device"
)

// SonosPlayer converts a speaker. status is the player's group, or nil if
// the player is not in any group.
func (n *Normalizer) SonosPlayer(ctx context.Context, p sonos.Player, status *sonos.GroupStatus) device.Device {
	state := device.State{
		"playbackState": "idle",
		"isPlaying":     false,
		"track":         nil,
	}
	var caps []device.Capability
	if p.HasCapability("PLAYBACK") {
		caps = append(caps, device.CapPlayback)
	}

	if status != nil {
		pb := playbackState(status.Group.PlaybackState)
		state["playbackState"] = pb
		state["isPlaying"] = pb == "playing"
		state["volume"] = status.Volume.Volume
		state["muted"] = status.Volume.Muted
		state["coordinator"] = status.Group.CoordinatorID == p.ID
		caps = append(caps, device.CapVolume)
		if tr := status.Metadata.Track(); tr != nil {
			state["track"] = map[string]any{
				"id":       tr.ID.ObjectID,
				"name":     tr.Name,
				"artist":   tr.Artist.Name,
				"album":    tr.Album.Name,
				"imageUrl": tr.ImageURL,
			}
		}
	}

	return device.Device{
		ID:           n.tr.GetSlug(ctx, n.ns, p.ID, p.Name),
		Name:         fallback(p.Name, "Speaker"),
		Type:         device.DeviceTypeSpeaker,
		ServiceID:    n.ns,
		State:        state,
		Capabilities: device.NewCapabilities(caps...),
		VendorRef:    p.ID,
	}
}

// SonosGroup converts a group into a room holding its normalized players.
func (n *Normalizer) SonosGroup(ctx context.Context, status sonos.GroupStatus, members []device.Device) device.Room {
	if members == nil {
		members = []device.Device{}
	}
	return device.Room{
		ID:        n.tr.GetSlug(ctx, n.ns, status.Group.ID, status.Group.Name),
		Name:      fallback(status.Group.Name, "Speakers"),
		ServiceID: n.ns,
		Devices:   members,
		Scenes:    []device.Scene{},
		VendorRef: status.Group.ID,
	}
}

// playbackState maps "PLAYBACK_STATE_PLAYING" to "playing".
func playbackState(s string) string {
	switch s {
	case sonos.StatePlaying:
		return "playing"
	case sonos.StatePaused:
		return "paused"
	case sonos.StateBuffering:
		return "buffering"
	case "":
		return "idle"
	default:
		return strings.ToLower(strings.TrimPrefix(s, "PLAYBACK_STATE_"))
	}
}
