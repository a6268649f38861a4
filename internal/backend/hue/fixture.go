package hue

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }

// DemoFixture returns the demo home: three furnished rooms, an empty
// garage, one zone spanning two rooms, scenes and two motion zones.
func DemoFixture() Fixture {
	var (
		sofa     = demoID(RTypeLight, "sofa")
		floor    = demoID(RTypeLight, "floor")
		ceiling  = demoID(RTypeLight, "kitchen-ceiling")
		island   = demoID(RTypeLight, "kitchen-island")
		bedside  = demoID(RTypeLight, "bedside")
		wardrobe = demoID(RTypeLight, "wardrobe")
		missing  = demoID(RTypeLight, "removed")

		lampDev    = demoID(RTypeDevice, "living-lamps")
		kitchenDev = demoID(RTypeDevice, "kitchen-fitting")
		bedDev     = demoID(RTypeDevice, "bedside")
	)

	lights := []Light{
		{ID: sofa, OwnerID: lampDev, Name: "Sofa Lamp", On: true, Reachable: true,
			Archetype: "Extended color light", Dimming: ptrFloat(60), Color: &XY{X: 0.45, Y: 0.41}, Mirek: ptrInt(370)},
		{ID: floor, OwnerID: lampDev, Name: "Floor Lamp", On: false, Reachable: true,
			Archetype: "Color temperature light", Dimming: ptrFloat(100), Mirek: ptrInt(250)},
		{ID: ceiling, OwnerID: kitchenDev, Name: "Kitchen Ceiling", On: true, Reachable: true,
			Archetype: "Dimmable light", Dimming: ptrFloat(80)},
		{ID: island, OwnerID: kitchenDev, Name: "Kitchen Island", On: true, Reachable: true,
			Archetype: "Dimmable light", Dimming: ptrFloat(40)},
		{ID: bedside, OwnerID: bedDev, Name: "Bedside", On: false, Reachable: true,
			Archetype: "Extended color light", Dimming: ptrFloat(20), Color: &XY{X: 0.17, Y: 0.05}, Mirek: ptrInt(153)},
		{ID: wardrobe, OwnerID: "", Name: "Wardrobe Strip", On: false, Reachable: false,
			Archetype: "On/Off light"},
	}

	devices := []Device{
		{ID: lampDev, Name: "Living Room Lamps", Services: []ResourceRef{{RID: sofa, RType: RTypeLight}, {RID: floor, RType: RTypeLight}}},
		{ID: kitchenDev, Name: "Kitchen Fitting", Services: []ResourceRef{{RID: ceiling, RType: RTypeLight}, {RID: island, RType: RTypeLight}}},
		{ID: bedDev, Name: "Bedside Lamp", Services: []ResourceRef{{RID: bedside, RType: RTypeLight}}},
	}

	living := demoID(RTypeRoom, "living")
	kitchen := demoID(RTypeRoom, "kitchen")
	bedroom := demoID(RTypeRoom, "bedroom")
	garage := demoID(RTypeRoom, "garage")
	downstairs := demoID(RTypeZone, "downstairs")

	rooms := []Group{
		{ID: living, Name: "Living Room", Kind: RTypeRoom, Children: []ResourceRef{{RID: lampDev, RType: RTypeDevice}}},
		{ID: kitchen, Name: "Kitchen", Kind: RTypeRoom, Children: []ResourceRef{
			{RID: kitchenDev, RType: RTypeDevice},
			{RID: ceiling, RType: RTypeLight}, // listed twice on purpose; membership dedups
		}},
		{ID: bedroom, Name: "Bedroom", Kind: RTypeRoom, Children: []ResourceRef{
			{RID: bedDev, RType: RTypeDevice},
			{RID: wardrobe, RType: RTypeLight},
		}},
		{ID: garage, Name: "Garage", Kind: RTypeRoom, Children: []ResourceRef{{RID: missing, RType: RTypeLight}}},
	}

	zones := []Group{
		{ID: downstairs, Name: "Downstairs", Kind: RTypeZone, Children: []ResourceRef{
			{RID: sofa, RType: RTypeLight},
			{RID: floor, RType: RTypeLight},
			{RID: island, RType: RTypeLight},
		}},
	}

	scenes := []Scene{
		{ID: demoID("scene", "living-relax"), Name: "Relax", Group: ResourceRef{RID: living, RType: RTypeRoom}},
		{ID: demoID("scene", "living-bright"), Name: "Bright", Group: ResourceRef{RID: living, RType: RTypeRoom}},
		{ID: demoID("scene", "kitchen-cook"), Name: "Cooking", Group: ResourceRef{RID: kitchen, RType: RTypeRoom}},
		{ID: demoID("scene", "bedroom-night"), Name: "Nightlight", Group: ResourceRef{RID: bedroom, RType: RTypeRoom}},
		{ID: demoID("scene", "downstairs-evening"), Name: "Evening", Group: ResourceRef{RID: downstairs, RType: RTypeZone}},
	}

	motion := []MotionZone{
		{ID: demoID("motion", "hallway"), Name: "Hallway", Motion: true, Enabled: true, Reachable: true},
		{ID: demoID("motion", "landing"), Name: "Landing", Motion: false, Enabled: true, Reachable: true},
	}

	return Fixture{
		Lights:      lights,
		Rooms:       rooms,
		Zones:       zones,
		Devices:     devices,
		Scenes:      scenes,
		MotionZones: motion,
	}
}
