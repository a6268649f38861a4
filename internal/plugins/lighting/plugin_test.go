package lighting

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-hub/internal/backend/hue"
	"github.com/nerrad567/gray-logic-hub/internal/credstore"
	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
	"github.com/nerrad567/gray-logic-hub/internal/slug"
)

func newDemo(t *testing.T) (*Plugin, *hue.MemoryBridge, *slug.Service) {
	t.Helper()
	bridge := hue.NewDemoBridge()
	tr := slug.NewService(slug.NewMemoryStore())
	return NewDemo("lighting", tr, bridge), bridge, tr
}

func TestPluginSatisfiesContract(t *testing.T) {
	p, _, _ := newDemo(t)
	if err := plugin.Validate("lighting", p); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestRoomsMembership(t *testing.T) {
	p, _, _ := newDemo(t)
	ctx := context.Background()

	rooms, err := p.Rooms(ctx)
	if err != nil {
		t.Fatalf("Rooms() error = %v", err)
	}

	want := map[string][]string{
		"living-room": {"sofa-lamp", "floor-lamp"},
		"kitchen":     {"kitchen-ceiling", "kitchen-island"},
		"bedroom":     {"bedside", "wardrobe-strip"},
	}
	if len(rooms) != len(want) {
		t.Fatalf("Rooms() returned %d rooms, want %d (garage has no lights)", len(rooms), len(want))
	}
	for _, r := range rooms {
		ids, ok := want[r.ID]
		if !ok {
			t.Fatalf("unexpected room %q", r.ID)
		}
		if len(r.Devices) != len(ids) {
			t.Fatalf("room %q has %d devices, want %d", r.ID, len(r.Devices), len(ids))
		}
		for i, d := range r.Devices {
			if d.ID != ids[i] {
				t.Errorf("room %q device[%d] = %q, want %q", r.ID, i, d.ID, ids[i])
			}
			if d.ServiceID != "lighting" {
				t.Errorf("device %q ServiceID = %q", d.ID, d.ServiceID)
			}
		}
	}
}

func TestRoomsCarryScenes(t *testing.T) {
	p, _, _ := newDemo(t)
	rooms, err := p.Rooms(context.Background())
	if err != nil {
		t.Fatalf("Rooms() error = %v", err)
	}
	for _, r := range rooms {
		if r.ID != "living-room" {
			continue
		}
		if len(r.Scenes) != 2 {
			t.Fatalf("living room scenes = %d, want 2", len(r.Scenes))
		}
		for _, s := range r.Scenes {
			if s.RoomID != "living-room" {
				t.Errorf("scene %q RoomID = %q", s.ID, s.RoomID)
			}
		}
		return
	}
	t.Fatal("living room missing")
}

func TestRoomsSurviveSceneFailure(t *testing.T) {
	p, bridge, _ := newDemo(t)
	bridge.FailOn("scenes", errors.New("scenes down"))

	rooms, err := p.Rooms(context.Background())
	if err != nil {
		t.Fatalf("Rooms() error = %v", err)
	}
	if len(rooms) != 3 {
		t.Fatalf("Rooms() = %d rooms, want 3", len(rooms))
	}
	for _, r := range rooms {
		if r.Scenes == nil || len(r.Scenes) != 0 {
			t.Errorf("room %q scenes = %v, want empty", r.ID, r.Scenes)
		}
	}
}

func TestRoomsFailOnLights(t *testing.T) {
	p, bridge, _ := newDemo(t)
	bridge.FailOn("lights", errors.New("bridge offline"))
	if _, err := p.Rooms(context.Background()); err == nil {
		t.Fatal("Rooms() should fail when lights cannot be listed")
	}
}

func TestDevicesEnriched(t *testing.T) {
	p, _, _ := newDemo(t)
	devices, err := p.Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices() error = %v", err)
	}
	if len(devices) != 6 {
		t.Fatalf("Devices() = %d, want 6", len(devices))
	}
	for _, d := range devices {
		switch d.ID {
		case "sofa-lamp":
			if !d.State.Bool("shadow", false) {
				t.Error("sofa lamp is on and reachable, want shadow")
			}
			if d.State.String("colorHint", "") == "" {
				t.Error("sofa lamp should have a colour hint")
			}
		case "wardrobe-strip":
			if d.State.Bool("shadow", true) {
				t.Error("wardrobe strip is off, want no shadow")
			}
			if d.Capabilities.Has(device.CapDim) {
				t.Error("on/off light should not be dimmable")
			}
		}
	}
}

func TestZones(t *testing.T) {
	p, _, _ := newDemo(t)
	zones, err := p.Zones(context.Background())
	if err != nil {
		t.Fatalf("Zones() error = %v", err)
	}
	if len(zones) != 1 || zones[0].ID != "downstairs" {
		t.Fatalf("Zones() = %+v", zones)
	}
	if len(zones[0].Devices) != 3 {
		t.Errorf("downstairs has %d lights, want 3", len(zones[0].Devices))
	}
}

func TestUpdateDevice(t *testing.T) {
	p, bridge, tr := newDemo(t)
	ctx := context.Background()
	if _, err := p.Devices(ctx); err != nil {
		t.Fatalf("Devices() error = %v", err)
	}
	vendorID, ok := tr.GetUUID("lighting", "floor-lamp")
	if !ok {
		t.Fatal("floor-lamp slug not registered")
	}

	res, err := p.UpdateDevice(ctx, vendorID, device.State{"on": true, "brightness": 35.0})
	if err != nil {
		t.Fatalf("UpdateDevice() error = %v", err)
	}
	if !res.Success || res.Updated != 1 {
		t.Errorf("UpdateDevice() = %+v", res)
	}

	lights, _ := bridge.Lights(ctx)
	for _, l := range lights {
		if l.ID == vendorID {
			if !l.On || l.Dimming == nil || *l.Dimming != 35 {
				t.Errorf("floor lamp = on %v dimming %v, want on at 35", l.On, l.Dimming)
			}
		}
	}
}

func TestUpdateDeviceReportsUpdatedLight(t *testing.T) {
	p, _, tr := newDemo(t)
	ctx := context.Background()
	if _, err := p.Rooms(ctx); err != nil {
		t.Fatalf("Rooms() error = %v", err)
	}
	vendorID, ok := tr.GetUUID("lighting", "bedside")
	if !ok {
		t.Fatal("bedside slug not registered")
	}

	res, err := p.UpdateDevice(ctx, vendorID, device.State{"on": true, "brightness": 60.0, "colorTemp": 250.0})
	if err != nil {
		t.Fatalf("UpdateDevice() error = %v", err)
	}
	d := res.Device
	if d == nil {
		t.Fatal("UpdateDevice() returned no device")
	}
	if d.ID != "bedside" || d.VendorRef != vendorID {
		t.Errorf("device = %q (%q), want bedside (%q)", d.ID, d.VendorRef, vendorID)
	}
	if !d.State.Bool("on", false) {
		t.Error("device should report on")
	}
	if got := d.State["brightness"]; got != 60.0 {
		t.Errorf("brightness = %v, want 60", got)
	}
	if d.State.String("colorHint", "") == "" {
		t.Error("colorHint should be derived again")
	}
	if d.State.Bool("shadow", false) != d.State.Bool("reachable", false) {
		t.Errorf("shadow = %v, want reachable %v", d.State["shadow"], d.State["reachable"])
	}
	if tr.HasSlug("lighting", "bedside-2") {
		t.Error("re-enriching the light minted a second slug")
	}
}

func TestUpdateDeviceRejectsBadState(t *testing.T) {
	p, _, _ := newDemo(t)
	tests := []struct {
		name  string
		state device.State
	}{
		{"empty", device.State{}},
		{"on not bool", device.State{"on": "yes"}},
		{"brightness out of range", device.State{"brightness": 150.0}},
		{"color wrong shape", device.State{"color": "red"}},
		{"colorTemp out of range", device.State{"colorTemp": 20.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.UpdateDevice(context.Background(), "any", tt.state)
			if !errors.Is(err, device.ErrInvalidState) {
				t.Errorf("UpdateDevice() error = %v, want ErrInvalidState", err)
			}
		})
	}
}

func TestUpdateRoomAndScene(t *testing.T) {
	p, bridge, tr := newDemo(t)
	ctx := context.Background()
	if _, err := p.Rooms(ctx); err != nil {
		t.Fatalf("Rooms() error = %v", err)
	}

	roomID, _ := tr.GetUUID("lighting", "kitchen")
	if _, err := p.UpdateRoomDevices(ctx, roomID, device.State{"on": false}); err != nil {
		t.Fatalf("UpdateRoomDevices() error = %v", err)
	}
	lights, _ := bridge.Lights(ctx)
	for _, l := range lights {
		if (l.Name == "Kitchen Ceiling" || l.Name == "Kitchen Island") && l.On {
			t.Errorf("%s still on", l.Name)
		}
	}

	sceneID, ok := tr.GetUUID("lighting", "nightlight")
	if !ok {
		t.Fatal("nightlight scene not registered")
	}
	if _, err := p.ActivateScene(ctx, sceneID); err != nil {
		t.Fatalf("ActivateScene() error = %v", err)
	}
	lights, _ = bridge.Lights(ctx)
	for _, l := range lights {
		if l.Name == "Bedside" && (!l.On || *l.Dimming != 5) {
			t.Errorf("bedside after nightlight = on %v dimming %v", l.On, *l.Dimming)
		}
	}
}

func TestUnknownSceneFails(t *testing.T) {
	p, _, _ := newDemo(t)
	_, err := p.ActivateScene(context.Background(), "missing")
	if !errors.Is(err, hue.ErrNotFound) {
		t.Errorf("ActivateScene() error = %v, want ErrNotFound", err)
	}
}

func TestDisconnectedReadsFail(t *testing.T) {
	p, _, _ := newDemo(t)
	ctx := context.Background()
	if err := p.Disconnect(ctx); err != nil {
		t.Fatalf("Disconnect() error = %v", err)
	}
	if _, err := p.Rooms(ctx); !errors.Is(err, plugin.ErrNotConnected) {
		t.Errorf("Rooms() error = %v, want ErrNotConnected", err)
	}
	snap, err := p.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if snap.Connected || len(snap.Rooms) != 0 {
		t.Errorf("Status() = %+v, want empty disconnected snapshot", snap)
	}
}

func TestConnectPairsAndStoresCredentials(t *testing.T) {
	creds := credstore.NewMemoryStore()
	tr := slug.NewService(slug.NewMemoryStore())
	p := New("lighting", tr, creds, "")
	bridge := hue.NewDemoBridge()

	var dialedKey string
	p.dial = func(_, key string) hue.Client {
		dialedKey = key
		return bridge
	}
	p.pair = func(context.Context, string) (string, error) { return "paired-key", nil }

	ctx := context.Background()
	res, err := p.Connect(ctx, plugin.Credentials{CredHost: "192.168.1.2"})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("Connect() = %+v", res)
	}
	if dialedKey != "paired-key" {
		t.Errorf("dialed with key %q", dialedKey)
	}
	if !p.IsConnected(ctx) || !p.HasCredentials() {
		t.Error("plugin should be connected with credentials")
	}

	stored, err := creds.Get(ctx, "lighting")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored[CredAppKey] != "paired-key" || stored[CredHost] != "192.168.1.2" {
		t.Errorf("stored = %v", stored)
	}

	// A fresh instance restores from the store.
	q := New("lighting", tr, creds, "")
	q.dial = func(_, _ string) hue.Client { return bridge }
	if err := q.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if !q.IsConnected(ctx) {
		t.Error("restored plugin should be connected")
	}

	if err := q.ClearCredentials(); err != nil {
		t.Fatalf("ClearCredentials() error = %v", err)
	}
	if q.HasCredentials() || q.IsConnected(ctx) {
		t.Error("credentials should be cleared")
	}
	if _, err := creds.Get(ctx, "lighting"); !errors.Is(err, credstore.ErrNotFound) {
		t.Errorf("Get() after clear error = %v", err)
	}
}

func TestConnectPairingFailure(t *testing.T) {
	p := New("lighting", slug.NewService(slug.NewMemoryStore()), credstore.NewMemoryStore(), "10.0.0.5")
	p.pair = func(context.Context, string) (string, error) { return "", errors.New("link button not pressed") }

	res, err := p.Connect(context.Background(), nil)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if res.Success || res.Message == "" {
		t.Errorf("Connect() = %+v, want unsuccessful with message", res)
	}
}

func TestConnectRequiresHost(t *testing.T) {
	p := New("lighting", slug.NewService(slug.NewMemoryStore()), credstore.NewMemoryStore(), "")
	res, err := p.Connect(context.Background(), nil)
	if err != nil || res.Success {
		t.Errorf("Connect() = %+v, %v", res, err)
	}
}

func TestColorHint(t *testing.T) {
	warm := 454
	cool := 153
	tests := []struct {
		name  string
		xy    *hue.XY
		mirek *int
		want  string
	}{
		{"none", nil, nil, ""},
		{"warm white", nil, &warm, "#ffb46b"},
		{"cool white", nil, &cool, "#dbe7ff"},
		{"red", &hue.XY{X: 0.67, Y: 0.32}, &warm, "#ff4d4d"},
		{"blue", &hue.XY{X: 0.17, Y: 0.05}, nil, "#4d6bff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := colorHint(tt.xy, tt.mirek); got != tt.want {
				t.Errorf("colorHint() = %q, want %q", got, tt.want)
			}
		})
	}
}
