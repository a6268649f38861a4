package hive

// Product types reported by the heating service.
const (
	TypeHeating       = "heating"
	TypeHotWater      = "hotwater"
	TypeTRV           = "trvcontrol"
	TypeMotionSensor  = "motionsensor"
	TypeContactSensor = "contactsensor"
)

// Product is one controllable or monitoring product.
//
// State holds the writable part (name, mode, target, boost); Props holds
// readings (temperature, online, working). Both are loosely typed on the
// wire and read with fallbacks by the normalizer.
type Product struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Parent string         `json:"parent,omitempty"`
	State  map[string]any `json:"state"`
	Props  map[string]any `json:"props"`
}

// Name returns the product's display name, falling back to its type.
func (p Product) Name() string {
	if n, ok := p.State["name"].(string); ok && n != "" {
		return n
	}
	return p.Type
}

// Device is a physical unit (hub, thermostat, sensor) with battery and
// connectivity readings.
type Device struct {
	ID    string         `json:"id"`
	Type  string         `json:"type"`
	State map[string]any `json:"state"`
	Props map[string]any `json:"props"`
}
