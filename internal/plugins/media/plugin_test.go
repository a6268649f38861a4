package media

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/oauth2"

	"github.com/nerrad567/gray-logic-hub/internal/backend/sonos"
	"github.com/nerrad567/gray-logic-hub/internal/credstore"
	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
	"github.com/nerrad567/gray-logic-hub/internal/slug"
)

func newDemo(t *testing.T) (*Plugin, *sonos.MemoryBackend, *slug.Service) {
	t.Helper()
	backend := sonos.NewDemoBackend()
	tr := slug.NewService(slug.NewMemoryStore())
	return NewDemo("media", tr, backend), backend, tr
}

func TestPluginSatisfiesContract(t *testing.T) {
	p, _, _ := newDemo(t)
	if err := plugin.Validate("media", p); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestRooms(t *testing.T) {
	p, _, _ := newDemo(t)
	rooms, err := p.Rooms(context.Background())
	if err != nil {
		t.Fatalf("Rooms() error = %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("Rooms() = %d rooms, want 2", len(rooms))
	}

	living := rooms[0]
	if living.VendorRef != "RINCON_demo01:1" {
		t.Fatalf("first room = %q", living.VendorRef)
	}
	if len(living.Devices) != 2 {
		t.Errorf("living room speakers = %d, want 2", len(living.Devices))
	}
	for _, d := range living.Devices {
		if d.State.String("playbackState", "") != "playing" {
			t.Errorf("speaker %q state = %v", d.ID, d.State["playbackState"])
		}
	}
	if living.ID == living.Devices[0].ID {
		t.Error("group and speaker with the same name must get distinct slugs")
	}
}

func TestDevicesSurviveBackendFailure(t *testing.T) {
	p, backend, _ := newDemo(t)
	backend.Fail(errors.New("service down"))
	if _, err := p.Devices(context.Background()); err == nil {
		t.Fatal("Devices() should fail when groups cannot be listed")
	}
}

func TestUpdateDevicePausesGroup(t *testing.T) {
	p, backend, tr := newDemo(t)
	ctx := context.Background()
	devices, err := p.Devices(ctx)
	if err != nil {
		t.Fatalf("Devices() error = %v", err)
	}
	var subID string
	for _, d := range devices {
		if d.Name == "Living Room Sub" {
			subID = d.ID
		}
	}
	vendorID, ok := tr.GetUUID("media", subID)
	if !ok {
		t.Fatalf("slug %q not registered", subID)
	}

	res, err := p.UpdateDevice(ctx, vendorID, device.State{"isPlaying": false, "volume": 40.0})
	if err != nil {
		t.Fatalf("UpdateDevice() error = %v", err)
	}
	if !res.Success {
		t.Errorf("UpdateDevice() = %+v", res)
	}

	groups, _ := backend.Groups(ctx, sonos.DemoHouseholdID)
	if groups.Groups[0].PlaybackState != sonos.StatePaused {
		t.Errorf("living room state = %s, want paused", groups.Groups[0].PlaybackState)
	}
	vol, _ := backend.GroupVolume(ctx, "RINCON_demo01:1")
	if vol.Volume != 40 {
		t.Errorf("volume = %d, want 40", vol.Volume)
	}
}

func TestUpdateRoomDevices(t *testing.T) {
	p, backend, _ := newDemo(t)
	ctx := context.Background()

	res, err := p.UpdateRoomDevices(ctx, "RINCON_demo03:1", device.State{"playbackState": "playing"})
	if err != nil {
		t.Fatalf("UpdateRoomDevices() error = %v", err)
	}
	if res.Updated != 1 {
		t.Errorf("Updated = %d, want 1", res.Updated)
	}
	groups, _ := backend.Groups(ctx, sonos.DemoHouseholdID)
	if groups.Groups[1].PlaybackState != sonos.StatePlaying {
		t.Errorf("kitchen state = %s, want playing", groups.Groups[1].PlaybackState)
	}

	if _, err := p.UpdateRoomDevices(ctx, "missing", device.State{"volume": 5.0}); !errors.Is(err, plugin.ErrNotFound) {
		t.Errorf("UpdateRoomDevices(missing) error = %v, want ErrNotFound", err)
	}
}

func TestToCommandRejectsBadState(t *testing.T) {
	tests := []struct {
		name  string
		state device.State
	}{
		{"empty", device.State{}},
		{"bad playback", device.State{"playbackState": "rewinding"}},
		{"volume too high", device.State{"volume": 120.0}},
		{"isPlaying not bool", device.State{"isPlaying": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := toCommand(tt.state); !errors.Is(err, device.ErrInvalidState) {
				t.Errorf("toCommand() error = %v, want ErrInvalidState", err)
			}
		})
	}
}

type fakeBackend struct {
	*sonos.MemoryBackend
	token *oauth2.Token
}

func (f *fakeBackend) Token() (*oauth2.Token, error) { return f.token, nil }

func TestConnectAndTokenSync(t *testing.T) {
	creds := credstore.NewMemoryStore()
	p := New("media", slug.NewService(slug.NewMemoryStore()), creds, "", nil)
	fb := &fakeBackend{MemoryBackend: sonos.NewDemoBackend(), token: &oauth2.Token{AccessToken: "a1"}}
	p.newBackend = func(context.Context, *oauth2.Token) Backend { return fb }

	ctx := context.Background()
	res, err := p.Connect(ctx, plugin.Credentials{CredAccessToken: "a1", CredRefreshToken: "r1"})
	if err != nil || !res.Success {
		t.Fatalf("Connect() = %+v, %v", res, err)
	}
	if st := p.ConnectionStatus(ctx); st.Detail != sonos.DemoHouseholdID {
		t.Errorf("household = %q", st.Detail)
	}

	fb.token = &oauth2.Token{AccessToken: "a2", RefreshToken: "r2"}
	if _, err := p.Status(ctx); err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	stored, err := creds.Get(ctx, "media")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored[CredAccessToken] != "a2" || stored[CredHousehold] != sonos.DemoHouseholdID {
		t.Errorf("stored = %v, want refreshed token", stored)
	}

	q := New("media", slug.NewService(slug.NewMemoryStore()), creds, "", nil)
	q.newBackend = p.newBackend
	if err := q.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if !q.IsConnected(ctx) {
		t.Error("restored plugin should be connected")
	}
}

func TestConnectRequiresToken(t *testing.T) {
	p := New("media", slug.NewService(slug.NewMemoryStore()), credstore.NewMemoryStore(), "", nil)
	res, err := p.Connect(context.Background(), plugin.Credentials{})
	if err != nil || res.Success {
		t.Errorf("Connect() = %+v, %v", res, err)
	}
}
