// Package plugintest provides a configurable in-memory plugin for tests.
package plugintest

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
)

// Call records a mutation received by a Fake.
type Call struct {
	Op       string
	VendorID string
	State    device.State
}

// Fake implements every optional interface; Caps decides which are declared.
// Exported fields may be set before the fake is shared between goroutines.
type Fake struct {
	Identity string
	Caps     plugin.CapabilitySet

	RoomList   []device.Room
	DeviceList []device.Device
	ZoneList   []device.Zone

	RoomsErr   error
	DevicesErr error
	ZonesErr   error
	UpdateErr  error

	// Block, when non-nil, makes fetches wait until it is closed or ctx ends.
	Block chan struct{}

	// Detector replaces the default change detector.
	Detector func(prev, curr *plugin.Snapshot) plugin.Delta

	mu        sync.Mutex
	connected bool
	creds     bool
	calls     []Call
}

// New returns a connected fake declaring caps.
func New(id string, caps ...plugin.Capability) *Fake {
	return &Fake{
		Identity:  id,
		Caps:      plugin.NewCapabilitySet(caps...),
		connected: true,
		creds:     true,
	}
}

// All declares every optional capability.
func All(id string) *Fake {
	return New(id, plugin.AllCapabilities...)
}

// SetConnected changes the reported connection state.
func (f *Fake) SetConnected(connected bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = connected
}

// Calls returns the mutations received so far.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *Fake) ID() string                         { return f.Identity }
func (f *Fake) Capabilities() plugin.CapabilitySet { return f.Caps }

func (f *Fake) Connect(_ context.Context, _ plugin.Credentials) (plugin.ConnectResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	f.creds = true
	return plugin.ConnectResult{Success: true}, nil
}

func (f *Fake) Disconnect(_ context.Context) error {
	f.SetConnected(false)
	return nil
}

func (f *Fake) IsConnected(_ context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *Fake) ConnectionStatus(ctx context.Context) plugin.Status {
	return plugin.Status{
		ID:             f.Identity,
		Name:           f.Identity,
		Connected:      f.IsConnected(ctx),
		HasCredentials: f.HasCredentials(),
		Demo:           plugin.ModeFrom(ctx) == plugin.ModeDemo,
	}
}

func (f *Fake) Status(ctx context.Context) (*plugin.Snapshot, error) {
	return &plugin.Snapshot{
		Plugin:    f.Identity,
		Connected: f.IsConnected(ctx),
		Rooms:     f.RoomList,
		Devices:   f.DeviceList,
		Zones:     f.ZoneList,
		TakenAt:   time.Now(),
	}, nil
}

func (f *Fake) HasCredentials() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creds
}

func (f *Fake) ClearCredentials() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds = false
	f.connected = false
	return nil
}

func (f *Fake) wait(ctx context.Context) error {
	if f.Block == nil {
		return nil
	}
	select {
	case <-f.Block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Fake) Rooms(ctx context.Context) ([]device.Room, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.RoomList, f.RoomsErr
}

func (f *Fake) Devices(ctx context.Context) ([]device.Device, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.DeviceList, f.DevicesErr
}

func (f *Fake) Zones(ctx context.Context) ([]device.Zone, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.ZoneList, f.ZonesErr
}

func (f *Fake) record(op, vendorID string, state device.State) (plugin.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: op, VendorID: vendorID, State: state})
	if f.UpdateErr != nil {
		return plugin.Result{}, f.UpdateErr
	}
	return plugin.Result{Success: true, Updated: 1}, nil
}

// UpdateDevice records the call. When DeviceList holds the device, the
// result carries a copy with state merged in.
func (f *Fake) UpdateDevice(_ context.Context, vendorID string, state device.State) (plugin.Result, error) {
	res, err := f.record("device", vendorID, state)
	if err != nil {
		return res, err
	}
	for _, d := range f.DeviceList {
		if d.VendorRef != vendorID {
			continue
		}
		cpy := d.DeepCopy()
		if cpy.State == nil {
			cpy.State = device.State{}
		}
		for k, v := range state {
			cpy.State[k] = v
		}
		res.Device = cpy
		break
	}
	return res, nil
}

func (f *Fake) UpdateRoomDevices(_ context.Context, vendorID string, state device.State) (plugin.Result, error) {
	return f.record("room", vendorID, state)
}

func (f *Fake) UpdateZoneDevices(_ context.Context, vendorID string, state device.State) (plugin.Result, error) {
	return f.record("zone", vendorID, state)
}

func (f *Fake) ActivateScene(_ context.Context, vendorID string) (plugin.Result, error) {
	return f.record("scene", vendorID, nil)
}

func (f *Fake) DetectChanges(prev, curr *plugin.Snapshot) plugin.Delta {
	if f.Detector != nil {
		return f.Detector(prev, curr)
	}
	if prev == nil || curr == nil || prev.Connected == curr.Connected {
		return nil
	}
	return plugin.Delta{"connected": curr.Connected}
}
