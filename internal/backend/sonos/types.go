package sonos

// Playback states reported by a group.
const (
	StatePlaying   = "PLAYBACK_STATE_PLAYING"
	StatePaused    = "PLAYBACK_STATE_PAUSED"
	StateIdle      = "PLAYBACK_STATE_IDLE"
	StateBuffering = "PLAYBACK_STATE_BUFFERING"
)

// Household is one account-level home.
type Household struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Player is a single speaker.
type Player struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	DeviceIDs    []string `json:"deviceIds,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// HasCapability reports whether the player advertises c ("PLAYBACK").
func (p Player) HasCapability(c string) bool {
	for _, have := range p.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// Group is a set of players playing in sync.
type Group struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	CoordinatorID string   `json:"coordinatorId"`
	PlaybackState string   `json:"playbackState"`
	PlayerIDs     []string `json:"playerIds"`
}

// Groups is the response of the groups endpoint.
type Groups struct {
	Groups  []Group  `json:"groups"`
	Players []Player `json:"players"`
}

// Track describes the current item.
type Track struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
	Artist   struct {
		Name string `json:"name"`
	} `json:"artist"`
	Album struct {
		Name string `json:"name"`
	} `json:"album"`
	ID struct {
		ObjectID string `json:"objectId"`
	} `json:"id"`
}

// Metadata is the playback metadata of a group.
type Metadata struct {
	CurrentItem *struct {
		Track *Track `json:"track"`
	} `json:"currentItem,omitempty"`
}

// Track returns the current track, or nil when nothing is loaded.
func (m Metadata) Track() *Track {
	if m.CurrentItem == nil {
		return nil
	}
	return m.CurrentItem.Track
}

// Volume is a group volume reading.
type Volume struct {
	Volume int  `json:"volume"`
	Muted  bool `json:"muted"`
}

// GroupStatus bundles everything the hub shows for one group.
type GroupStatus struct {
	Group    Group
	Metadata Metadata
	Volume   Volume
}
