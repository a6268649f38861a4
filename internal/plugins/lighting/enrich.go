package lighting

import (
	"math"

	"github.com/nerrad567/gray-logic-hub/internal/backend/hue"
	"github.com/nerrad567/gray-logic-hub/internal/normalize"
)

// paletteEntry is a display colour anchored at a CIE xy point.
type paletteEntry struct {
	hex string
	xy  hue.XY
}

var palette = []paletteEntry{
	{"#ff4d4d", hue.XY{X: 0.675, Y: 0.322}}, // red
	{"#ff9f43", hue.XY{X: 0.561, Y: 0.404}}, // orange
	{"#ffe066", hue.XY{X: 0.444, Y: 0.517}}, // yellow
	{"#5cdb5c", hue.XY{X: 0.214, Y: 0.709}}, // green
	{"#4dd2ff", hue.XY{X: 0.170, Y: 0.340}}, // cyan
	{"#4d6bff", hue.XY{X: 0.167, Y: 0.040}}, // blue
	{"#b36bff", hue.XY{X: 0.270, Y: 0.110}}, // violet
	{"#ff6bd6", hue.XY{X: 0.400, Y: 0.180}}, // pink
	{"#fff4e5", hue.XY{X: 0.323, Y: 0.329}}, // white
}

// Colour temperature buckets in kelvin, warmest first.
var whites = []struct {
	maxKelvin float64
	hex       string
}{
	{2700, "#ffb46b"},
	{3500, "#ffcf9e"},
	{4500, "#ffe7cc"},
	{5500, "#fff4e5"},
	{math.Inf(1), "#dbe7ff"},
}

// enrich derives the display fields for a light. The result still carries
// the vendor id in ID and is ready for the normalizer.
func enrich(l hue.Light) normalize.EnrichedLight {
	return normalize.EnrichedLight{
		ID:        l.ID,
		Name:      l.Name,
		On:        l.On,
		Reachable: l.Reachable,
		Dimming:   l.Dimming,
		Color:     l.Color,
		Mirek:     l.Mirek,
		ColorHint: colorHint(l.Color, l.Mirek),
		Shadow:    l.On && l.Reachable,
	}
}

// colorHint prefers the xy colour over the colour temperature. Lights with
// neither get no hint.
func colorHint(xy *hue.XY, mirek *int) string {
	if xy != nil {
		return nearestColor(*xy)
	}
	if mirek != nil && *mirek > 0 {
		kelvin := 1e6 / float64(*mirek)
		for _, w := range whites {
			if kelvin < w.maxKelvin {
				return w.hex
			}
		}
	}
	return ""
}

func nearestColor(xy hue.XY) string {
	best, bestDist := "", math.Inf(1)
	for _, p := range palette {
		d := math.Hypot(xy.X-p.xy.X, xy.Y-p.xy.Y)
		if d < bestDist {
			best, bestDist = p.hex, d
		}
	}
	return best
}
