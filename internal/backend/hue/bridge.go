package hue

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/amimof/huego"
)

// Resource id prefixes. Bridge numbering is per resource kind, so the kind
// is folded into the id to keep ids unique across kinds.
const (
	lightPrefix  = "light/"
	groupPrefix  = "group/"
	scenePrefix  = "scene/"
	devicePrefix = "device/"
	sensorPrefix = "sensor/"
)

const (
	groupTypeRoom   = "Room"
	groupTypeZone   = "Zone"
	sensorPresence  = "ZLLPresence"
	maxBri          = 254
	onOffLightType  = "On/Off light"
	onOffPlugType   = "On/Off plug-in unit"
	defaultAppLabel = "graylogic-hub#hub"
)

// Bridge talks to a real bridge over its local REST API.
type Bridge struct {
	hb *huego.Bridge
}

// NewBridge returns a client for the bridge at host using an application key.
func NewBridge(host, user string) *Bridge {
	return &Bridge{hb: huego.New(host, user)}
}

// Pair creates an application key. The bridge link button must have been
// pressed within the last 30 seconds.
func Pair(ctx context.Context, host string) (string, error) {
	user, err := huego.New(host, "").CreateUserContext(ctx, defaultAppLabel)
	if err != nil {
		return "", fmt.Errorf("pairing with bridge %s: %w", host, err)
	}
	return user, nil
}

// Lights returns every light.
func (b *Bridge) Lights(ctx context.Context) ([]Light, error) {
	raw, err := b.hb.GetLightsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing lights: %w", err)
	}
	out := make([]Light, 0, len(raw))
	for i := range raw {
		out = append(out, convertLight(&raw[i]))
	}
	return out, nil
}

// Devices groups lights by the physical product that owns them.
func (b *Bridge) Devices(ctx context.Context) ([]Device, error) {
	raw, err := b.hb.GetLightsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing lights: %w", err)
	}

	byOwner := make(map[string]*Device)
	for i := range raw {
		l := &raw[i]
		owner := ownerID(l)
		d, ok := byOwner[owner]
		if !ok {
			name := l.ProductName
			if name == "" {
				name = l.Name
			}
			d = &Device{ID: owner, Name: name}
			byOwner[owner] = d
		}
		d.Services = append(d.Services, ResourceRef{RID: lightPrefix + strconv.Itoa(l.ID), RType: RTypeLight})
	}

	out := make([]Device, 0, len(byOwner))
	for _, d := range byOwner {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Rooms returns room groups. Room children are the devices owning the
// room's lights.
func (b *Bridge) Rooms(ctx context.Context) ([]Group, error) {
	groups, err := b.hb.GetGroupsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	lights, err := b.hb.GetLightsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing lights: %w", err)
	}
	owners := make(map[string]string, len(lights))
	for i := range lights {
		owners[strconv.Itoa(lights[i].ID)] = ownerID(&lights[i])
	}

	var out []Group
	for i := range groups {
		g := &groups[i]
		if g.Type != groupTypeRoom {
			continue
		}
		room := Group{ID: groupPrefix + strconv.Itoa(g.ID), Name: g.Name, Kind: RTypeRoom}
		seen := make(map[string]struct{})
		for _, lightNum := range g.Lights {
			owner, ok := owners[lightNum]
			if !ok {
				// Light removed from the bridge but still listed: keep the
				// dangling reference, the dashboard drops it.
				room.Children = append(room.Children, ResourceRef{RID: lightPrefix + lightNum, RType: RTypeLight})
				continue
			}
			if _, dup := seen[owner]; dup {
				continue
			}
			seen[owner] = struct{}{}
			room.Children = append(room.Children, ResourceRef{RID: owner, RType: RTypeDevice})
		}
		out = append(out, room)
	}
	return out, nil
}

// Zones returns zone groups. Zone children are lights.
func (b *Bridge) Zones(ctx context.Context) ([]Group, error) {
	groups, err := b.hb.GetGroupsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	var out []Group
	for i := range groups {
		g := &groups[i]
		if g.Type != groupTypeZone {
			continue
		}
		zone := Group{ID: groupPrefix + strconv.Itoa(g.ID), Name: g.Name, Kind: RTypeZone}
		for _, lightNum := range g.Lights {
			zone.Children = append(zone.Children, ResourceRef{RID: lightPrefix + lightNum, RType: RTypeLight})
		}
		out = append(out, zone)
	}
	return out, nil
}

// Scenes returns stored scenes.
func (b *Bridge) Scenes(ctx context.Context) ([]Scene, error) {
	raw, err := b.hb.GetScenesContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing scenes: %w", err)
	}
	out := make([]Scene, 0, len(raw))
	for i := range raw {
		s := &raw[i]
		sc := Scene{ID: scenePrefix + s.ID, Name: s.Name}
		if s.Group != "" {
			sc.Group = ResourceRef{RID: groupPrefix + s.Group, RType: RTypeRoom}
		}
		out = append(out, sc)
	}
	return out, nil
}

// MotionZones returns presence sensors.
func (b *Bridge) MotionZones(ctx context.Context) ([]MotionZone, error) {
	raw, err := b.hb.GetSensorsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sensors: %w", err)
	}
	var out []MotionZone
	for i := range raw {
		s := &raw[i]
		if s.Type != sensorPresence {
			continue
		}
		mz := MotionZone{ID: sensorPrefix + strconv.Itoa(s.ID), Name: s.Name}
		mz.Motion, _ = s.State["presence"].(bool)
		mz.Enabled, _ = s.Config["on"].(bool)
		mz.Reachable, _ = s.Config["reachable"].(bool)
		out = append(out, mz)
	}
	return out, nil
}

// SetLight applies u to one light.
func (b *Bridge) SetLight(ctx context.Context, id string, u LightUpdate) error {
	n, err := parseNumeric(id, lightPrefix)
	if err != nil {
		return err
	}

	st, onKnown := toHuegoState(u)
	if !onKnown {
		// huego always sends "on"; carry the current value forward.
		cur, err := b.hb.GetLightContext(ctx, n)
		if err != nil {
			return fmt.Errorf("reading light %s: %w", id, err)
		}
		if cur.State != nil {
			st.On = cur.State.On
		}
	}
	if _, err := b.hb.SetLightStateContext(ctx, n, st); err != nil {
		return fmt.Errorf("setting light %s: %w", id, err)
	}
	return nil
}

// SetGroup applies u to every light in a room or zone.
func (b *Bridge) SetGroup(ctx context.Context, id string, u LightUpdate) error {
	n, err := parseNumeric(id, groupPrefix)
	if err != nil {
		return err
	}

	st, onKnown := toHuegoState(u)
	if !onKnown {
		cur, err := b.hb.GetGroupContext(ctx, n)
		if err != nil {
			return fmt.Errorf("reading group %s: %w", id, err)
		}
		if cur.GroupState != nil {
			st.On = cur.GroupState.AnyOn
		}
	}
	if _, err := b.hb.SetGroupStateContext(ctx, n, st); err != nil {
		return fmt.Errorf("setting group %s: %w", id, err)
	}
	return nil
}

// RecallScene activates a scene on its group.
func (b *Bridge) RecallScene(ctx context.Context, id string) error {
	raw, ok := strings.CutPrefix(id, scenePrefix)
	if !ok || raw == "" {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	sc, err := b.hb.GetSceneContext(ctx, raw)
	if err != nil {
		return fmt.Errorf("reading scene %s: %w", id, err)
	}
	gid := 0 // group 0 addresses every light
	if sc.Group != "" {
		if gid, err = strconv.Atoi(sc.Group); err != nil {
			return fmt.Errorf("%w: scene group %q", ErrInvalidID, sc.Group)
		}
	}
	if _, err := b.hb.RecallSceneContext(ctx, raw, gid); err != nil {
		return fmt.Errorf("recalling scene %s: %w", id, err)
	}
	return nil
}

func convertLight(l *huego.Light) Light {
	out := Light{
		ID:        lightPrefix + strconv.Itoa(l.ID),
		OwnerID:   ownerID(l),
		Name:      l.Name,
		Archetype: l.Type,
	}
	if l.State == nil {
		return out
	}
	out.On = l.State.On
	out.Reachable = l.State.Reachable
	if l.Type != onOffLightType && l.Type != onOffPlugType {
		pct := briToPercent(l.State.Bri)
		out.Dimming = &pct
	}
	if len(l.State.Xy) == 2 {
		out.Color = &XY{X: float64(l.State.Xy[0]), Y: float64(l.State.Xy[1])}
	}
	if l.State.Ct > 0 {
		m := int(l.State.Ct)
		out.Mirek = &m
	}
	return out
}

// toHuegoState converts u. onKnown is false when the update does not
// determine the on/off value.
func toHuegoState(u LightUpdate) (st huego.State, onKnown bool) {
	if u.On != nil {
		st.On = *u.On
		onKnown = true
	}
	if u.Dimming != nil {
		st.Bri = percentToBri(*u.Dimming)
		if !onKnown && *u.Dimming > 0 {
			st.On = true
			onKnown = true
		}
	}
	if u.Color != nil {
		st.Xy = []float32{float32(u.Color.X), float32(u.Color.Y)}
	}
	if u.Mirek != nil {
		st.Ct = uint16(*u.Mirek) //nolint:gosec // mirek range is 153-500
	}
	return st, onKnown
}

// ownerID derives the device id from the light's unique id. Lights on the
// same product share the MAC part before the endpoint suffix.
func ownerID(l *huego.Light) string {
	mac, _, _ := strings.Cut(l.UniqueID, "-")
	if mac == "" {
		return devicePrefix + "light-" + strconv.Itoa(l.ID)
	}
	return devicePrefix + mac
}

func parseNumeric(id, prefix string) (int, error) {
	raw, ok := strings.CutPrefix(id, prefix)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return n, nil
}

func briToPercent(bri uint8) float64 {
	return math.Round(float64(bri)/maxBri*1000) / 10
}

func percentToBri(pct float64) uint8 {
	if pct <= 0 {
		return 0
	}
	if pct >= 100 {
		return maxBri
	}
	return uint8(math.Max(1, math.Round(pct/100*maxBri)))
}
