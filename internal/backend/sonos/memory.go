package sonos

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBackend is an in-memory household for demo mode and tests.
// Play and pause flip the group's playback state; volume writes stick.
type MemoryBackend struct {
	mu       sync.Mutex
	groups   Groups
	metadata map[string]Metadata
	volumes  map[string]Volume
	err      error
}

// DemoHouseholdID is the single household of the demo backend.
const DemoHouseholdID = "Sonos_demo_household"

// NewDemoBackend returns a household with two groups: the living room
// pair playing, the kitchen speaker paused.
func NewDemoBackend() *MemoryBackend {
	m := &MemoryBackend{
		groups: Groups{
			Groups: []Group{
				{ID: "RINCON_demo01:1", Name: "Living Room", CoordinatorID: "RINCON_demo01",
					PlaybackState: StatePlaying, PlayerIDs: []string{"RINCON_demo01", "RINCON_demo02"}},
				{ID: "RINCON_demo03:1", Name: "Kitchen", CoordinatorID: "RINCON_demo03",
					PlaybackState: StatePaused, PlayerIDs: []string{"RINCON_demo03"}},
			},
			Players: []Player{
				{ID: "RINCON_demo01", Name: "Living Room", Capabilities: []string{"PLAYBACK", "AUDIO_CLIP"}},
				{ID: "RINCON_demo02", Name: "Living Room Sub", Capabilities: []string{"PLAYBACK"}},
				{ID: "RINCON_demo03", Name: "Kitchen", Capabilities: []string{"PLAYBACK"}},
			},
		},
		metadata: make(map[string]Metadata),
		volumes: map[string]Volume{
			"RINCON_demo01:1": {Volume: 28},
			"RINCON_demo03:1": {Volume: 15},
		},
	}
	m.metadata["RINCON_demo01:1"] = demoMetadata("track-1", "Blue in Green", "Miles Davis", "Kind of Blue")
	m.metadata["RINCON_demo03:1"] = demoMetadata("track-2", "Teardrop", "Massive Attack", "Mezzanine")
	return m
}

func demoMetadata(id, name, artist, album string) Metadata {
	tr := &Track{Name: name}
	tr.Artist.Name = artist
	tr.Album.Name = album
	tr.ID.ObjectID = id
	md := Metadata{CurrentItem: &struct {
		Track *Track `json:"track"`
	}{Track: tr}}
	return md
}

// Fail makes every read return err. A nil err clears the failure.
func (m *MemoryBackend) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetTrack replaces a group's current track.
func (m *MemoryBackend) SetTrack(groupID, trackID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[groupID] = demoMetadata(trackID, name, "", "")
}

func (m *MemoryBackend) Households(_ context.Context) ([]Household, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return []Household{{ID: DemoHouseholdID}}, nil
}

func (m *MemoryBackend) Groups(_ context.Context, householdID string) (Groups, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Groups{}, m.err
	}
	if householdID != DemoHouseholdID {
		return Groups{}, fmt.Errorf("%w: household %s", ErrNoHousehold, householdID)
	}
	out := Groups{
		Groups:  make([]Group, len(m.groups.Groups)),
		Players: make([]Player, len(m.groups.Players)),
	}
	for i, g := range m.groups.Groups {
		g.PlayerIDs = append([]string(nil), g.PlayerIDs...)
		out.Groups[i] = g
	}
	for i, p := range m.groups.Players {
		p.Capabilities = append([]string(nil), p.Capabilities...)
		out.Players[i] = p
	}
	return out, nil
}

func (m *MemoryBackend) Metadata(_ context.Context, groupID string) (Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Metadata{}, m.err
	}
	md := m.metadata[groupID]
	if tr := md.Track(); tr != nil {
		cp := *tr
		return demoMetadata(cp.ID.ObjectID, cp.Name, cp.Artist.Name, cp.Album.Name), nil
	}
	return md, nil
}

func (m *MemoryBackend) GroupVolume(_ context.Context, groupID string) (Volume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Volume{}, m.err
	}
	return m.volumes[groupID], nil
}

func (m *MemoryBackend) Play(_ context.Context, groupID string) error {
	return m.setPlayback(groupID, StatePlaying)
}

func (m *MemoryBackend) Pause(_ context.Context, groupID string) error {
	return m.setPlayback(groupID, StatePaused)
}

func (m *MemoryBackend) SetGroupVolume(_ context.Context, groupID string, volume int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasGroup(groupID) {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}
	v := m.volumes[groupID]
	v.Volume = volume
	m.volumes[groupID] = v
	return nil
}

func (m *MemoryBackend) setPlayback(groupID, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.groups.Groups {
		if m.groups.Groups[i].ID == groupID {
			m.groups.Groups[i].PlaybackState = state
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
}

// hasGroup reports whether groupID exists. Caller holds mu.
func (m *MemoryBackend) hasGroup(groupID string) bool {
	for _, g := range m.groups.Groups {
		if g.ID == groupID {
			return true
		}
	}
	return false
}
