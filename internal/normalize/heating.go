package normalize

import (
	"context"
	"strings"

	"github.com/nerrad567/gray-logic-hub/internal/backend/hive"
	"github.com/nerrad567/gray-logic-hub/internal/device"
)

const modeOff = "off"

// HiveProduct converts a heating product. ok is false for product types the
// hub does not model.
func (n *Normalizer) HiveProduct(ctx context.Context, p hive.Product) (d device.Device, ok bool) {
	props := device.State(p.Props)
	st := device.State(p.State)

	var (
		typ   device.DeviceType
		state = device.State{"online": props.Bool("online", false)}
		caps  []device.Capability
	)

	switch p.Type {
	case hive.TypeHeating, hive.TypeTRV:
		typ = device.DeviceTypeThermostat
		mode := strings.ToLower(st.String("mode", "unknown"))
		state["mode"] = mode
		state["isOn"] = mode != modeOff
		caps = append(caps, device.CapModeSelect)
		if _, has := props["temperature"]; has {
			state["temperature"] = props.Float("temperature", 0)
			caps = append(caps, device.CapTemperatureRead)
		}
		if _, has := st["target"]; has {
			state["target"] = st.Float("target", 0)
			caps = append(caps, device.CapTemperatureSet)
		}
		if p.Type == hive.TypeHeating {
			state["boost"] = st["boost"] != nil
			caps = append(caps, device.CapBoost)
		}

	case hive.TypeHotWater:
		typ = device.DeviceTypeHotWater
		mode := strings.ToLower(st.String("mode", "unknown"))
		state["mode"] = mode
		status := strings.ToUpper(st.String("status", ""))
		state["isOn"] = status == "ON" || mode == "on"
		state["boost"] = st["boost"] != nil
		caps = append(caps, device.CapOnOff, device.CapModeSelect, device.CapBoost)

	case hive.TypeMotionSensor:
		typ = device.DeviceTypeSensor
		motion, _ := props["motion"].(map[string]any)
		state["motion"] = device.State(motion).Bool("status", false)
		caps = append(caps, device.CapMotionDetect)

	case hive.TypeContactSensor:
		typ = device.DeviceTypeSensor
		state["open"] = strings.EqualFold(props.String("status", ""), "OPEN")
		caps = append(caps, device.CapContactState)

	default:
		return device.Device{}, false
	}

	if _, has := props["battery"]; has {
		state["battery"] = props.Float("battery", 0)
		caps = append(caps, device.CapBatteryStatus)
	}

	name := p.Name()
	return device.Device{
		ID:           n.tr.GetSlug(ctx, n.ns, p.ID, name),
		Name:         name,
		Type:         typ,
		ServiceID:    n.ns,
		State:        state,
		Capabilities: device.NewCapabilities(caps...),
		VendorRef:    p.ID,
	}, true
}
