package hue

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryBridgeIsolation(t *testing.T) {
	ctx := context.Background()
	a := NewDemoBridge()
	b := NewDemoBridge()

	lights, _ := a.Lights(ctx)
	on := true
	if err := a.SetLight(ctx, lights[1].ID, LightUpdate{On: &on}); err != nil {
		t.Fatalf("SetLight() error = %v", err)
	}

	after, _ := a.Lights(ctx)
	if !after[1].On {
		t.Error("write not visible on same bridge")
	}
	other, _ := b.Lights(ctx)
	if other[1].On {
		t.Error("write leaked into another bridge")
	}
}

func TestMemoryBridgeReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewDemoBridge()

	lights, _ := m.Lights(ctx)
	*lights[0].Dimming = 1

	again, _ := m.Lights(ctx)
	if *again[0].Dimming == 1 {
		t.Error("caller mutation reached bridge state")
	}
}

func TestMemoryBridgeSetGroupResolvesDevices(t *testing.T) {
	ctx := context.Background()
	m := NewDemoBridge()
	rooms, _ := m.Rooms(ctx)

	off := false
	if err := m.SetGroup(ctx, rooms[1].ID, LightUpdate{On: &off}); err != nil { // kitchen
		t.Fatalf("SetGroup() error = %v", err)
	}

	lights, _ := m.Lights(ctx)
	for _, l := range lights {
		if (l.Name == "Kitchen Ceiling" || l.Name == "Kitchen Island") && l.On {
			t.Errorf("%s still on", l.Name)
		}
		if l.Name == "Sofa Lamp" && !l.On {
			t.Error("light outside the room changed")
		}
	}
}

func TestMemoryBridgeRecallScene(t *testing.T) {
	ctx := context.Background()
	m := NewDemoBridge()
	scenes, _ := m.Scenes(ctx)

	var night Scene
	for _, s := range scenes {
		if s.Name == "Nightlight" {
			night = s
		}
	}
	if err := m.RecallScene(ctx, night.ID); err != nil {
		t.Fatalf("RecallScene() error = %v", err)
	}

	lights, _ := m.Lights(ctx)
	for _, l := range lights {
		if l.Name == "Bedside" && (!l.On || *l.Dimming != 5) {
			t.Errorf("bedside = on:%v dim:%v", l.On, *l.Dimming)
		}
	}

	if err := m.RecallScene(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown scene error = %v", err)
	}
}

func TestMemoryBridgeFailOn(t *testing.T) {
	m := NewDemoBridge()
	boom := errors.New("boom")
	m.FailOn("zones", boom)

	if _, err := m.Zones(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Zones() error = %v", err)
	}
	m.FailOn("zones", nil)
	if _, err := m.Zones(context.Background()); err != nil {
		t.Errorf("Zones() after clear error = %v", err)
	}
}
