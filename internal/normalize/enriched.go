package normalize

import (
	"context"
	"strings"

	"github.com/nerrad567/gray-logic-hub/internal/backend/hue"
	"github.com/nerrad567/gray-logic-hub/internal/device"
)

// EnrichedLight is a light after the lighting plugin's enrichment step.
//
// On the first pass ID is the vendor id and VendorID is empty. Once
// normalized, ID holds the external id (bare or "plugin:"-prefixed) and
// VendorID stashes the vendor id.
type EnrichedLight struct {
	ID        string
	VendorID  string
	Name      string
	On        bool
	Reachable bool
	Dimming   *float64
	Color     *hue.XY
	Mirek     *int

	// ColorHint is a display colour ("#ffb46b") derived from colour or
	// colour temperature.
	ColorHint string

	// Shadow marks a light that is on and should be drawn with a glow.
	Shadow bool
}

// EnrichedLight converts an enriched light. It is idempotent: a record that
// already carries a stashed vendor id keeps its external id and is never
// passed to the translator again, so the external id cannot be mistaken
// for a vendor id.
func (n *Normalizer) EnrichedLight(ctx context.Context, rec EnrichedLight) device.Device {
	var id, vendorID string
	if rec.VendorID != "" {
		id = strings.TrimPrefix(rec.ID, n.ns+":")
		vendorID = rec.VendorID
	} else {
		id = n.tr.GetSlug(ctx, n.ns, rec.ID, rec.Name)
		vendorID = rec.ID
	}

	state, caps := lightState(rec.On, rec.Reachable, rec.Dimming, rec.Color, rec.Mirek)
	if rec.ColorHint != "" {
		state["colorHint"] = rec.ColorHint
	}
	state["shadow"] = rec.Shadow

	return device.Device{
		ID:           id,
		Name:         fallback(rec.Name, "Light"),
		Type:         device.DeviceTypeLight,
		ServiceID:    n.ns,
		State:        state,
		Capabilities: caps,
		VendorRef:    vendorID,
	}
}

// Reenrich rebuilds an EnrichedLight from a normalized device so it can be
// normalized again, for example after a state patch.
func Reenrich(d device.Device) EnrichedLight {
	rec := EnrichedLight{
		ID:        d.ID,
		VendorID:  d.VendorRef,
		Name:      d.Name,
		On:        d.State.Bool("on", false),
		Reachable: d.State.Bool("reachable", false),
		ColorHint: d.State.String("colorHint", ""),
		Shadow:    d.State.Bool("shadow", false),
	}
	if _, ok := d.State["brightness"]; ok {
		v := d.State.Float("brightness", 0)
		rec.Dimming = &v
	}
	if c, ok := d.State["color"].(map[string]any); ok {
		cs := device.State(c)
		rec.Color = &hue.XY{X: cs.Float("x", 0), Y: cs.Float("y", 0)}
	}
	if _, ok := d.State["colorTemp"]; ok {
		m := int(d.State.Float("colorTemp", 0))
		rec.Mirek = &m
	}
	return rec
}
