package hue

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// demoNamespace seeds deterministic demo ids.
var demoNamespace = uuid.MustParse("6f1c1b8e-5d3a-4c1e-9a43-2a4f0c9d7e10")

func demoID(kind, name string) string {
	return uuid.NewSHA1(demoNamespace, []byte(kind+"/"+name)).String()
}

// Fixture is the initial content of a MemoryBridge.
type Fixture struct {
	Lights      []Light
	Rooms       []Group
	Zones       []Group
	Devices     []Device
	Scenes      []Scene
	MotionZones []MotionZone
}

// MemoryBridge is an in-memory bridge. Writes mutate its state, so each
// instance is an isolated universe.
type MemoryBridge struct {
	mu    sync.Mutex
	f     Fixture
	fails map[string]error
}

// NewMemoryBridge returns a bridge seeded with f.
func NewMemoryBridge(f Fixture) *MemoryBridge {
	return &MemoryBridge{f: cloneFixture(f), fails: make(map[string]error)}
}

// NewDemoBridge returns a bridge seeded with the demo home.
func NewDemoBridge() *MemoryBridge {
	return NewMemoryBridge(DemoFixture())
}

// FailOn makes reads of resource ("lights", "rooms", "zones", "devices",
// "scenes", "motion") return err. A nil err clears the failure.
func (m *MemoryBridge) FailOn(resource string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fails, resource)
		return
	}
	m.fails[resource] = err
}

func (m *MemoryBridge) read(resource string) (Fixture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fails[resource]; err != nil {
		return Fixture{}, err
	}
	return cloneFixture(m.f), nil
}

func (m *MemoryBridge) Lights(_ context.Context) ([]Light, error) {
	f, err := m.read("lights")
	return f.Lights, err
}

func (m *MemoryBridge) Rooms(_ context.Context) ([]Group, error) {
	f, err := m.read("rooms")
	return f.Rooms, err
}

func (m *MemoryBridge) Zones(_ context.Context) ([]Group, error) {
	f, err := m.read("zones")
	return f.Zones, err
}

func (m *MemoryBridge) Devices(_ context.Context) ([]Device, error) {
	f, err := m.read("devices")
	return f.Devices, err
}

func (m *MemoryBridge) Scenes(_ context.Context) ([]Scene, error) {
	f, err := m.read("scenes")
	return f.Scenes, err
}

func (m *MemoryBridge) MotionZones(_ context.Context) ([]MotionZone, error) {
	f, err := m.read("motion")
	return f.MotionZones, err
}

// SetLight applies u to one light.
func (m *MemoryBridge) SetLight(_ context.Context, id string, u LightUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.f.Lights {
		if m.f.Lights[i].ID == id {
			applyUpdate(&m.f.Lights[i], u)
			return nil
		}
	}
	return fmt.Errorf("%w: light %s", ErrNotFound, id)
}

// SetGroup applies u to every light in a room or zone.
func (m *MemoryBridge) SetGroup(_ context.Context, id string, u LightUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	members, ok := m.groupLights(id)
	if !ok {
		return fmt.Errorf("%w: group %s", ErrNotFound, id)
	}
	for i := range m.f.Lights {
		if _, in := members[m.f.Lights[i].ID]; in {
			applyUpdate(&m.f.Lights[i], u)
		}
	}
	return nil
}

// RecallScene turns the scene's group on at the scene's preset brightness.
func (m *MemoryBridge) RecallScene(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sc := range m.f.Scenes {
		if sc.ID != id {
			continue
		}
		members, ok := m.groupLights(sc.Group.RID)
		if !ok {
			return fmt.Errorf("%w: scene group %s", ErrNotFound, sc.Group.RID)
		}
		on := true
		level := scenePreset(sc.Name)
		for i := range m.f.Lights {
			if _, in := members[m.f.Lights[i].ID]; in {
				applyUpdate(&m.f.Lights[i], LightUpdate{On: &on, Dimming: &level})
			}
		}
		return nil
	}
	return fmt.Errorf("%w: scene %s", ErrNotFound, id)
}

// groupLights resolves a room or zone to its light ids. Caller holds mu.
func (m *MemoryBridge) groupLights(id string) (map[string]struct{}, bool) {
	var group *Group
	for _, list := range [][]Group{m.f.Rooms, m.f.Zones} {
		for i := range list {
			if list[i].ID == id {
				group = &list[i]
			}
		}
	}
	if group == nil {
		return nil, false
	}

	services := make(map[string][]ResourceRef, len(m.f.Devices))
	for _, d := range m.f.Devices {
		services[d.ID] = d.Services
	}
	out := make(map[string]struct{})
	for _, child := range group.Children {
		switch child.RType {
		case RTypeLight:
			out[child.RID] = struct{}{}
		case RTypeDevice:
			for _, svc := range services[child.RID] {
				if svc.RType == RTypeLight {
					out[svc.RID] = struct{}{}
				}
			}
		}
	}
	return out, true
}

func scenePreset(name string) float64 {
	switch name {
	case "Relax":
		return 40
	case "Nightlight":
		return 5
	default:
		return 80
	}
}

func applyUpdate(l *Light, u LightUpdate) {
	if u.On != nil {
		l.On = *u.On
	}
	if u.Dimming != nil && l.Dimming != nil {
		v := *u.Dimming
		l.Dimming = &v
		if u.On == nil && v > 0 {
			l.On = true
		}
	}
	if u.Color != nil && l.Color != nil {
		c := *u.Color
		l.Color = &c
	}
	if u.Mirek != nil && l.Mirek != nil {
		v := *u.Mirek
		l.Mirek = &v
	}
}

func cloneFixture(f Fixture) Fixture {
	out := Fixture{
		Lights:      make([]Light, len(f.Lights)),
		Rooms:       cloneGroups(f.Rooms),
		Zones:       cloneGroups(f.Zones),
		Devices:     make([]Device, len(f.Devices)),
		Scenes:      append([]Scene(nil), f.Scenes...),
		MotionZones: append([]MotionZone(nil), f.MotionZones...),
	}
	for i, l := range f.Lights {
		if l.Dimming != nil {
			v := *l.Dimming
			l.Dimming = &v
		}
		if l.Color != nil {
			c := *l.Color
			l.Color = &c
		}
		if l.Mirek != nil {
			v := *l.Mirek
			l.Mirek = &v
		}
		out.Lights[i] = l
	}
	for i, d := range f.Devices {
		d.Services = append([]ResourceRef(nil), d.Services...)
		out.Devices[i] = d
	}
	return out
}

func cloneGroups(in []Group) []Group {
	if in == nil {
		return nil
	}
	out := make([]Group, len(in))
	for i, g := range in {
		g.Children = append([]ResourceRef(nil), g.Children...)
		out[i] = g
	}
	return out
}
