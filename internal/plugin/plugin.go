package plugin

import (
	"context"
	"time"

	"github.com/nerrad567/gray-logic-hub/internal/device"
)

// Credentials carries backend-specific login material (pairing token,
// username/password, OAuth2 authorisation code). Keys are defined by each plugin.
type Credentials map[string]string

// ConnectResult reports the outcome of Connect.
type ConnectResult struct {
	Success bool `json:"success"`

	// RequiresMFA is set when the backend needs a second factor before the
	// session is usable. The client resubmits Connect with the code.
	RequiresMFA bool `json:"requiresMfa,omitempty"`

	Message string `json:"message,omitempty"`
}

// Status is the connection status of a plugin as shown to clients.
type Status struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Connected      bool   `json:"connected"`
	HasCredentials bool   `json:"hasCredentials"`
	Demo           bool   `json:"demo"`
	Detail         string `json:"detail,omitempty"`
}

// Snapshot is a point-in-time view of a backend, used for change detection.
type Snapshot struct {
	Plugin    string          `json:"plugin"`
	Connected bool            `json:"connected"`
	Rooms     []device.Room   `json:"rooms,omitempty"`
	Devices   []device.Device `json:"devices,omitempty"`
	Zones     []device.Zone   `json:"zones,omitempty"`
	TakenAt   time.Time       `json:"takenAt"`
}

// Delta is the changed substructure between two snapshots.
// A nil Delta means nothing observable changed; it is never an empty map.
type Delta map[string]any

// Result reports the outcome of a mutation.
type Result struct {
	Success bool   `json:"success"`
	Updated int    `json:"updated,omitempty"`
	Message string `json:"message,omitempty"`

	// Device is the device as it stands after a single-device update, when
	// the plugin can report it.
	Device *device.Device `json:"device,omitempty"`
}

// Plugin is the mandatory contract every backend adapter implements.
//
// Mandatory methods return errors only for genuine runtime failures, never
// for "not implemented".
type Plugin interface {
	// ID returns the identity the plugin registers under ("lighting").
	ID() string

	// Capabilities returns the optional capabilities this plugin offers.
	Capabilities() CapabilitySet

	Connect(ctx context.Context, creds Credentials) (ConnectResult, error)
	Disconnect(ctx context.Context) error
	IsConnected(ctx context.Context) bool
	ConnectionStatus(ctx context.Context) Status

	// Status returns a snapshot for change detection.
	Status(ctx context.Context) (*Snapshot, error)

	HasCredentials() bool
	ClearCredentials() error
}

// RoomProvider is implemented by plugins declaring CapRooms.
type RoomProvider interface {
	Rooms(ctx context.Context) ([]device.Room, error)
}

// DeviceProvider is implemented by plugins declaring CapDevices.
type DeviceProvider interface {
	Devices(ctx context.Context) ([]device.Device, error)
}

// ZoneProvider is implemented by plugins declaring CapZones.
type ZoneProvider interface {
	Zones(ctx context.Context) ([]device.Zone, error)
}

// DeviceUpdater is implemented by plugins declaring CapUpdateDevice.
// vendorID is the backend's own identifier.
type DeviceUpdater interface {
	UpdateDevice(ctx context.Context, vendorID string, state device.State) (Result, error)
}

// RoomUpdater is implemented by plugins declaring CapUpdateRoom.
type RoomUpdater interface {
	UpdateRoomDevices(ctx context.Context, vendorID string, state device.State) (Result, error)
}

// ZoneUpdater is implemented by plugins declaring CapUpdateZone.
type ZoneUpdater interface {
	UpdateZoneDevices(ctx context.Context, vendorID string, state device.State) (Result, error)
}

// SceneActivator is implemented by plugins declaring CapScenes.
type SceneActivator interface {
	ActivateScene(ctx context.Context, vendorID string) (Result, error)
}

// ChangeDetector is implemented by plugins declaring CapChangeDetection.
//
// DetectChanges returns nil when either snapshot is nil or nothing
// observable changed; otherwise only the changed substructure.
type ChangeDetector interface {
	DetectChanges(prev, curr *Snapshot) Delta
}
