package heating

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-hub/internal/backend/hive"
	"github.com/nerrad567/gray-logic-hub/internal/credstore"
	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
	"github.com/nerrad567/gray-logic-hub/internal/slug"
)

func newDemo(t *testing.T) (*Plugin, *hive.MemoryBackend, *slug.Service) {
	t.Helper()
	backend := hive.NewDemoBackend()
	tr := slug.NewService(slug.NewMemoryStore())
	return NewDemo("heating", tr, backend), backend, tr
}

func TestPluginSatisfiesContract(t *testing.T) {
	p, _, _ := newDemo(t)
	if err := plugin.Validate("heating", p); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if p.Capabilities().Has(plugin.CapRooms) {
		t.Error("heating should not declare rooms")
	}
}

func TestDevices(t *testing.T) {
	p, _, _ := newDemo(t)
	devices, err := p.Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices() error = %v", err)
	}

	types := make(map[string]device.DeviceType, len(devices))
	for _, d := range devices {
		types[d.ID] = d.Type
	}
	want := map[string]device.DeviceType{
		"heating":          device.DeviceTypeThermostat,
		"hot-water":        device.DeviceTypeHotWater,
		"bedroom-radiator": device.DeviceTypeThermostat,
		"hall-motion":      device.DeviceTypeSensor,
	}
	for id, typ := range want {
		if types[id] != typ {
			t.Errorf("device %q type = %q, want %q", id, types[id], typ)
		}
	}
}

func TestUpdateThermostat(t *testing.T) {
	p, backend, tr := newDemo(t)
	ctx := context.Background()
	if _, err := p.Devices(ctx); err != nil {
		t.Fatalf("Devices() error = %v", err)
	}
	vendorID, ok := tr.GetUUID("heating", "heating")
	if !ok {
		t.Fatal("heating slug not registered")
	}

	res, err := p.UpdateDevice(ctx, vendorID, device.State{"target": 22.5, "isOn": false})
	if err != nil {
		t.Fatalf("UpdateDevice() error = %v", err)
	}
	if !res.Success {
		t.Errorf("UpdateDevice() = %+v", res)
	}

	products, _ := backend.Products(ctx)
	for _, prod := range products {
		if prod.ID != vendorID {
			continue
		}
		if prod.State["target"] != 22.5 {
			t.Errorf("target = %v, want 22.5", prod.State["target"])
		}
		if prod.State["mode"] != "OFF" {
			t.Errorf("mode = %v, want OFF", prod.State["mode"])
		}
	}
}

func TestUpdateHotWater(t *testing.T) {
	p, _, tr := newDemo(t)
	ctx := context.Background()
	if _, err := p.Devices(ctx); err != nil {
		t.Fatalf("Devices() error = %v", err)
	}
	vendorID, _ := tr.GetUUID("heating", "hot-water")

	if _, err := p.UpdateDevice(ctx, vendorID, device.State{"isOn": true}); err != nil {
		t.Fatalf("UpdateDevice() error = %v", err)
	}
	devices, _ := p.Devices(ctx)
	for _, d := range devices {
		if d.ID == "hot-water" && !d.State.Bool("isOn", false) {
			t.Error("hot water should be on")
		}
	}
}

func TestUpdateDeviceErrors(t *testing.T) {
	p, _, tr := newDemo(t)
	ctx := context.Background()
	if _, err := p.Devices(ctx); err != nil {
		t.Fatalf("Devices() error = %v", err)
	}
	heating, _ := tr.GetUUID("heating", "heating")
	motion, _ := tr.GetUUID("heating", "hall-motion")

	tests := []struct {
		name     string
		vendorID string
		state    device.State
		want     error
	}{
		{"unknown product", "missing", device.State{"target": 20.0}, plugin.ErrNotFound},
		{"target too high", heating, device.State{"target": 40.0}, device.ErrInvalidState},
		{"bad mode", heating, device.State{"mode": "turbo"}, device.ErrInvalidState},
		{"boost true", heating, device.State{"boost": true}, device.ErrInvalidState},
		{"nothing recognised", heating, device.State{"colour": "red"}, device.ErrInvalidState},
		{"sensor read-only", motion, device.State{"isOn": true}, device.ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.UpdateDevice(ctx, tt.vendorID, tt.state)
			if !errors.Is(err, tt.want) {
				t.Errorf("UpdateDevice() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestToPatchBoost(t *testing.T) {
	patch, err := toPatch(hive.TypeHeating, device.State{"boost": 30.0})
	if err != nil {
		t.Fatalf("toPatch() error = %v", err)
	}
	if patch["boost"] != 30 {
		t.Errorf("boost = %v, want 30", patch["boost"])
	}

	patch, err = toPatch(hive.TypeHeating, device.State{"boost": false})
	if err != nil {
		t.Fatalf("toPatch() error = %v", err)
	}
	if v, ok := patch["boost"]; !ok || v != nil {
		t.Errorf("boost = %v, want explicit nil", v)
	}
}

type fakeBackend struct {
	products []hive.Product
	err      error
}

func (f *fakeBackend) Products(context.Context) ([]hive.Product, error) { return f.products, f.err }
func (f *fakeBackend) SetState(context.Context, string, string, map[string]any) error {
	return nil
}

func TestConnectStoresSession(t *testing.T) {
	creds := credstore.NewMemoryStore()
	p := New("heating", slug.NewService(slug.NewMemoryStore()), creds, "")
	var got hive.Session
	p.newBackend = func(s hive.Session, _ func(hive.Session)) Backend {
		got = s
		return &fakeBackend{}
	}

	ctx := context.Background()
	res, err := p.Connect(ctx, plugin.Credentials{CredToken: "t1", CredRefreshToken: "r1"})
	if err != nil || !res.Success {
		t.Fatalf("Connect() = %+v, %v", res, err)
	}
	if got.Token != "t1" || got.RefreshToken != "r1" {
		t.Errorf("backend session = %+v", got)
	}
	stored, err := creds.Get(ctx, "heating")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored[CredToken] != "t1" {
		t.Errorf("stored = %v", stored)
	}

	q := New("heating", slug.NewService(slug.NewMemoryStore()), creds, "")
	q.newBackend = p.newBackend
	if err := q.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if !q.IsConnected(ctx) || !q.HasCredentials() {
		t.Error("restored plugin should be connected")
	}
}

func TestConnectRejected(t *testing.T) {
	p := New("heating", slug.NewService(slug.NewMemoryStore()), credstore.NewMemoryStore(), "")
	p.newBackend = func(hive.Session, func(hive.Session)) Backend {
		return &fakeBackend{err: hive.ErrUnauthorized}
	}

	ctx := context.Background()
	res, err := p.Connect(ctx, plugin.Credentials{CredToken: "expired"})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if res.Success || p.IsConnected(ctx) {
		t.Error("rejected session should not connect")
	}

	res, err = p.Connect(ctx, plugin.Credentials{})
	if err != nil || res.Success {
		t.Errorf("Connect() without token = %+v, %v", res, err)
	}
}

func TestRefreshedSessionIsPersisted(t *testing.T) {
	creds := credstore.NewMemoryStore()
	p := New("heating", slug.NewService(slug.NewMemoryStore()), creds, "")
	var onRefresh func(hive.Session)
	p.newBackend = func(_ hive.Session, cb func(hive.Session)) Backend {
		onRefresh = cb
		return &fakeBackend{}
	}

	ctx := context.Background()
	if _, err := p.Connect(ctx, plugin.Credentials{CredToken: "t1", CredRefreshToken: "r1"}); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	onRefresh(hive.Session{Token: "t2", RefreshToken: "r2"})

	stored, _ := creds.Get(ctx, "heating")
	if stored[CredToken] != "t2" || stored[CredRefreshToken] != "r2" {
		t.Errorf("stored = %v, want refreshed session", stored)
	}
}
