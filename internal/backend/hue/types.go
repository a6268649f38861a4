package hue

import "context"

// Resource types used in ResourceRef.RType.
const (
	RTypeLight  = "light"
	RTypeDevice = "device"
	RTypeRoom   = "room"
	RTypeZone   = "zone"
)

// ResourceRef points at another bridge resource.
type ResourceRef struct {
	RID   string `json:"rid"`
	RType string `json:"rtype"`
}

// XY is a CIE colour coordinate.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Light is a single lamp. Optional fields are nil when the lamp lacks the feature.
type Light struct {
	ID        string   `json:"id"`
	OwnerID   string   `json:"owner"` // device that owns this light
	Name      string   `json:"name"`
	On        bool     `json:"on"`
	Reachable bool     `json:"reachable"`
	Archetype string   `json:"archetype,omitempty"`
	Dimming   *float64 `json:"brightness,omitempty"` // percent, 0-100
	Color     *XY      `json:"color,omitempty"`
	Mirek     *int     `json:"mirek,omitempty"`
}

// Group is a room or a zone.
type Group struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Kind     string        `json:"kind"` // RTypeRoom or RTypeZone
	Children []ResourceRef `json:"children"`
}

// Device is a physical product. Services lists the lights it exposes.
type Device struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Services []ResourceRef `json:"services"`
}

// Scene is a stored preset for a group.
type Scene struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Group ResourceRef `json:"group"`
}

// MotionZone is a presence sensor area.
type MotionZone struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Motion    bool   `json:"motion"`
	Enabled   bool   `json:"enabled"`
	Reachable bool   `json:"reachable"`
}

// LightUpdate is a partial state change. Nil fields are left unchanged.
type LightUpdate struct {
	On      *bool
	Dimming *float64 // percent
	Color   *XY
	Mirek   *int
}

// Source reads bridge resources.
type Source interface {
	Lights(ctx context.Context) ([]Light, error)
	Rooms(ctx context.Context) ([]Group, error)
	Zones(ctx context.Context) ([]Group, error)
	Devices(ctx context.Context) ([]Device, error)
	Scenes(ctx context.Context) ([]Scene, error)
	MotionZones(ctx context.Context) ([]MotionZone, error)
}

// Controller writes to the bridge.
type Controller interface {
	SetLight(ctx context.Context, id string, u LightUpdate) error
	SetGroup(ctx context.Context, id string, u LightUpdate) error
	RecallScene(ctx context.Context, id string) error
}

// Client is a full bridge connection.
type Client interface {
	Source
	Controller
}
