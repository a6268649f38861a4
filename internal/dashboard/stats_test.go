package dashboard

import (
	"testing"

	"github.com/nerrad567/gray-logic-hub/internal/device"
)

func lamp(on bool, brightness ...float64) device.Device {
	st := device.State{"on": on}
	if len(brightness) > 0 {
		st["brightness"] = brightness[0]
	}
	return device.Device{State: st}
}

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name   string
		lights []device.Device
		want   Stats
	}{
		{"none", nil, Stats{}},
		{"all off", []device.Device{lamp(false, 80), lamp(false, 20)}, Stats{TotalLights: 2}},
		{"off lights excluded from mean", []device.Device{lamp(true, 80), lamp(false, 10), lamp(true, 40)},
			Stats{LightsOn: 2, TotalLights: 3, AverageBrightness: 60}},
		{"on/off light counts as full", []device.Device{lamp(true), lamp(true, 50)},
			Stats{LightsOn: 2, TotalLights: 2, AverageBrightness: 75}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeStats(tt.lights); got != tt.want {
				t.Errorf("ComputeStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
