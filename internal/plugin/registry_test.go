package plugin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
	"github.com/nerrad567/gray-logic-hub/internal/plugin/plugintest"
)

// coreOnly implements only the mandatory contract.
type coreOnly struct {
	id   string
	caps plugin.CapabilitySet
}

func (c *coreOnly) ID() string                         { return c.id }
func (c *coreOnly) Capabilities() plugin.CapabilitySet { return c.caps }
func (c *coreOnly) Connect(context.Context, plugin.Credentials) (plugin.ConnectResult, error) {
	return plugin.ConnectResult{Success: true}, nil
}
func (c *coreOnly) Disconnect(context.Context) error { return nil }
func (c *coreOnly) IsConnected(context.Context) bool { return true }
func (c *coreOnly) ConnectionStatus(context.Context) plugin.Status {
	return plugin.Status{ID: c.id, Connected: true}
}
func (c *coreOnly) Status(context.Context) (*plugin.Snapshot, error) {
	return &plugin.Snapshot{Plugin: c.id}, nil
}
func (c *coreOnly) HasCredentials() bool    { return true }
func (c *coreOnly) ClearCredentials() error { return nil }

func TestRegisterErrors(t *testing.T) {
	var typedNil *plugintest.Fake

	tests := []struct {
		name    string
		id      string
		p       plugin.Plugin
		wantErr error
	}{
		{"empty identity", "", plugintest.New(""), plugin.ErrInvalidIdentity},
		{"reserved identity", "home", plugintest.New("home"), plugin.ErrInvalidIdentity},
		{"colon in identity", "light:ing", plugintest.New("light:ing"), plugin.ErrInvalidIdentity},
		{"uppercase identity", "Lighting", plugintest.New("Lighting"), plugin.ErrInvalidIdentity},
		{"nil plugin", "lighting", nil, plugin.ErrContractViolation},
		{"typed nil plugin", "lighting", typedNil, plugin.ErrContractViolation},
		{"identity mismatch", "lighting", plugintest.New("heating"), plugin.ErrContractViolation},
		{
			"undeclared backing interface",
			"lighting",
			&coreOnly{id: "lighting", caps: plugin.NewCapabilitySet(plugin.CapRooms)},
			plugin.ErrContractViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := plugin.NewRegistry()
			err := reg.Register(tt.id, tt.p)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	reg := plugin.NewRegistry()

	if err := reg.Register("lighting", plugintest.New("lighting")); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if err := reg.Register("lighting", plugintest.New("lighting")); !errors.Is(err, plugin.ErrDuplicatePlugin) {
		t.Errorf("duplicate real Register() error = %v, want ErrDuplicatePlugin", err)
	}

	// A demo alongside the real plugin is fine; a second demo is not.
	if err := reg.RegisterDemo("lighting", plugintest.New("lighting")); err != nil {
		t.Fatalf("RegisterDemo() error = %v", err)
	}
	if err := reg.RegisterDemo("lighting", plugintest.New("lighting")); !errors.Is(err, plugin.ErrDuplicatePlugin) {
		t.Errorf("duplicate demo Register() error = %v, want ErrDuplicatePlugin", err)
	}

	if ids := reg.IDs(); len(ids) != 1 || ids[0] != "lighting" {
		t.Errorf("IDs() = %v, want [lighting]", ids)
	}
}

func TestCoreOnlyPluginIsValid(t *testing.T) {
	reg := plugin.NewRegistry()
	p := &coreOnly{id: "media"}
	if err := reg.Register("media", p); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	ctx := context.Background()
	rooms, err := plugin.Rooms(ctx, p)
	if err != nil || rooms != nil {
		t.Errorf("Rooms() = %v, %v; want nil, nil", rooms, err)
	}
	if _, err := plugin.UpdateDevice(ctx, p, "x", device.State{"on": true}); !errors.Is(err, plugin.ErrUnsupported) {
		t.Errorf("UpdateDevice() error = %v, want ErrUnsupported", err)
	}
	if d := plugin.DetectChanges(p, &plugin.Snapshot{}, &plugin.Snapshot{Connected: true}); d != nil {
		t.Errorf("DetectChanges() = %v, want nil", d)
	}
}

func TestResolveMode(t *testing.T) {
	reg := plugin.NewRegistry()
	realPlugin := plugintest.New("lighting")
	demo := plugintest.New("lighting")
	heating := plugintest.New("heating")

	for _, step := range []error{
		reg.Register("lighting", realPlugin),
		reg.RegisterDemo("lighting", demo),
		reg.Register("heating", heating),
	} {
		if step != nil {
			t.Fatalf("setup: %v", step)
		}
	}

	ctx := context.Background()

	got, err := reg.Resolve(ctx, "lighting")
	if err != nil || got != realPlugin {
		t.Errorf("Resolve(real ctx) = %p, %v; want real plugin", got, err)
	}

	got, err = reg.Resolve(plugin.WithMode(ctx, plugin.ModeDemo), "lighting")
	if err != nil || got != demo {
		t.Errorf("Resolve(demo ctx) = %p, %v; want demo plugin", got, err)
	}

	// An explicit mode wins over whatever the context says.
	got, err = reg.ResolveMode("lighting", plugin.ModeReal)
	if err != nil || got != realPlugin {
		t.Errorf("ResolveMode(real) = %p, %v; want real plugin", got, err)
	}

	if _, err := reg.ResolveMode("heating", plugin.ModeDemo); !errors.Is(err, plugin.ErrNotRegistered) {
		t.Errorf("ResolveMode(heating, demo) error = %v, want ErrNotRegistered", err)
	}
	if _, err := reg.Resolve(ctx, "media"); !errors.Is(err, plugin.ErrNotRegistered) {
		t.Errorf("Resolve(media) error = %v, want ErrNotRegistered", err)
	}

	if active := reg.Active(plugin.WithMode(ctx, plugin.ModeDemo)); len(active) != 1 {
		t.Errorf("Active(demo) = %d plugins, want 1", len(active))
	}
	if active := reg.Active(ctx); len(active) != 2 {
		t.Errorf("Active(real) = %d plugins, want 2", len(active))
	}
}

func TestModeFromDefaultsToReal(t *testing.T) {
	if m := plugin.ModeFrom(context.Background()); m != plugin.ModeReal {
		t.Errorf("ModeFrom(empty) = %v, want real", m)
	}
	if s := plugin.ModeDemo.String(); s != "demo" {
		t.Errorf("ModeDemo.String() = %q", s)
	}
}

func TestDetectChangesNormalisesEmptyDelta(t *testing.T) {
	f := plugintest.All("lighting")
	f.Detector = func(_, _ *plugin.Snapshot) plugin.Delta { return plugin.Delta{} }

	if d := plugin.DetectChanges(f, &plugin.Snapshot{}, &plugin.Snapshot{}); d != nil {
		t.Errorf("DetectChanges() = %#v, want nil", d)
	}
}
