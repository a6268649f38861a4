package device

import "sort"

// Device is the unified representation of anything a backend exposes:
// a light, a thermostat, a hot water controller, a speaker, a sensor.
//
// ID is always the flat external identifier ("lighting:bedroom-lamp") once the
// device leaves the aggregation layer. VendorRef holds the backend's own
// identifier for command routing and is never serialized.
type Device struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         DeviceType   `json:"type"`
	ServiceID    string       `json:"serviceId"`
	State        State        `json:"state"`
	Capabilities Capabilities `json:"capabilities"`

	// VendorRef is the backend UUID this device was derived from.
	VendorRef string `json:"-"`
}

// DeepCopy creates a complete independent copy of the Device.
// All map and slice fields are cloned so modifications to the copy
// do not affect the original.
func (d *Device) DeepCopy() *Device {
	if d == nil {
		return nil
	}

	cpy := *d
	cpy.State = deepCopyMap(d.State)
	if d.Capabilities != nil {
		cpy.Capabilities = make(Capabilities, len(d.Capabilities))
		copy(cpy.Capabilities, d.Capabilities)
	}
	return &cpy
}

// Room groups devices by physical space.
type Room struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ServiceID string   `json:"serviceId"`
	Devices   []Device `json:"devices"`
	Scenes    []Scene  `json:"scenes"`

	VendorRef string `json:"-"`
}

// DeepCopy creates a complete independent copy of the Room, including its devices.
func (r *Room) DeepCopy() *Room {
	if r == nil {
		return nil
	}

	cpy := *r
	if r.Devices != nil {
		cpy.Devices = make([]Device, len(r.Devices))
		for i := range r.Devices {
			cpy.Devices[i] = *r.Devices[i].DeepCopy()
		}
	}
	if r.Scenes != nil {
		cpy.Scenes = make([]Scene, len(r.Scenes))
		copy(cpy.Scenes, r.Scenes)
	}
	return &cpy
}

// Zone is a backend-defined grouping that may span several rooms.
// Its shape is identical to a Room; only its origin differs.
type Zone Room

// Scene is a stored preset a backend can recall.
type Scene struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ServiceID string `json:"serviceId"`
	RoomID    string `json:"roomId,omitempty"`

	VendorRef string `json:"-"`
}

// Home is the merged view across every connected backend.
type Home struct {
	Rooms   []Room   `json:"rooms"`
	Devices []Device `json:"devices"`
	Zones   []Zone   `json:"zones"`
}

// State holds the current device state as a JSON map.
//
// Examples:
//   - Light: {"on": true, "brightness": 75}
//   - Thermostat: {"temperature": 19.5, "target": 21.0, "mode": "schedule"}
//   - Speaker: {"playbackState": "playing", "track": {...}, "volume": 30}
type State map[string]any

// Bool returns the boolean at key, or fallback if absent or not a bool.
func (s State) Bool(key string, fallback bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return fallback
}

// Float returns the number at key as float64, or fallback if absent.
// JSON-decoded numbers and native Go integer types are both accepted.
func (s State) Float(key string, fallback float64) float64 {
	switch v := s[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	default:
		return fallback
	}
}

// String returns the string at key, or fallback if absent.
func (s State) String(key string, fallback string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return fallback
}

// Clone returns a deep copy of the state map.
func (s State) Clone() State {
	return deepCopyMap(s)
}

// deepCopyMap creates a deep copy of a map[string]any.
// Nested maps and slices are recursively copied.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

// deepCopyValue recursively copies a value, handling nested maps and slices.
func deepCopyValue(v any) any {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case State:
		return State(deepCopyMap(val))
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		return v
	}
}

// DeviceType represents the specific kind of device.
type DeviceType string //nolint:revive // device.DeviceType is clearer than device.Type in calling code

// DeviceType constants.
const (
	DeviceTypeLight      DeviceType = "light"
	DeviceTypeThermostat DeviceType = "thermostat"
	DeviceTypeHotWater   DeviceType = "hotWater"
	DeviceTypeSensor     DeviceType = "sensor"
	DeviceTypeSpeaker    DeviceType = "speaker"
	DeviceTypeOther      DeviceType = "other"
)

// Capability represents what a device can do.
type Capability string

// Control capabilities.
const (
	CapOnOff     Capability = "on_off"
	CapDim       Capability = "dim"
	CapColor     Capability = "color"      //nolint:misspell // vendor APIs use American "color"
	CapColorTemp Capability = "color_temp" //nolint:misspell // vendor APIs use American "color"
	CapPlayback  Capability = "playback"
	CapVolume    Capability = "volume"
	CapBoost     Capability = "boost"
)

// Reading and setpoint capabilities.
const (
	CapTemperatureRead Capability = "temperature_read"
	CapTemperatureSet  Capability = "temperature_set"
	CapModeSelect      Capability = "mode_select"
	CapMotionDetect    Capability = "motion_detect"
	CapContactState    Capability = "contact_state"
	CapBatteryStatus   Capability = "battery_status"
)

// Capabilities is an ordered set of capabilities. It serializes as a JSON array.
type Capabilities []Capability

// NewCapabilities builds a sorted, duplicate-free capability set.
func NewCapabilities(caps ...Capability) Capabilities {
	seen := make(map[Capability]struct{}, len(caps))
	out := make(Capabilities, 0, len(caps))
	for _, c := range caps {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Has reports whether the set contains c.
func (c Capabilities) Has(capability Capability) bool {
	for _, have := range c {
		if have == capability {
			return true
		}
	}
	return false
}
