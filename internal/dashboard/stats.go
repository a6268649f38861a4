package dashboard

import "github.com/nerrad567/gray-logic-hub/internal/device"

// fullBrightness stands in for lights that are on but not dimmable.
const fullBrightness = 100.0

// Stats summarises a set of lights.
type Stats struct {
	LightsOn    int `json:"lightsOn"`
	TotalLights int `json:"totalLights"`

	// AverageBrightness is the mean brightness of the lights that are on,
	// in percent. Off lights are excluded; it is 0 when none are on.
	AverageBrightness float64 `json:"averageBrightness"`
}

// ComputeStats derives Stats from normalized lights.
func ComputeStats(lights []device.Device) Stats {
	st := Stats{TotalLights: len(lights)}
	var sum float64
	for _, l := range lights {
		if !l.State.Bool("on", false) {
			continue
		}
		st.LightsOn++
		sum += l.State.Float("brightness", fullBrightness)
	}
	if st.LightsOn > 0 {
		st.AverageBrightness = sum / float64(st.LightsOn)
	}
	return st
}
