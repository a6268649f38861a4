package dashboard

import "github.com/nerrad567/gray-logic-hub/internal/backend/hue"

// Memberships resolves the lights of every room or zone.
//
// A group's lights are the union of its direct light children and the
// lights reachable through its device children, using the device list as
// the device-to-light adjacency. Lights absent from the current light list
// are dropped, duplicates are removed keeping first-seen order, and groups
// left with no lights are omitted from the result.
func Memberships(lights []hue.Light, devices []hue.Device, groups []hue.Group) map[string][]string {
	present := make(map[string]struct{}, len(lights))
	for _, l := range lights {
		present[l.ID] = struct{}{}
	}

	adjacency := make(map[string][]string, len(devices))
	for _, d := range devices {
		for _, svc := range d.Services {
			if svc.RType == hue.RTypeLight {
				adjacency[d.ID] = append(adjacency[d.ID], svc.RID)
			}
		}
	}

	out := make(map[string][]string, len(groups))
	for _, g := range groups {
		seen := make(map[string]struct{})
		var members []string
		add := func(id string) {
			if _, ok := present[id]; !ok {
				return
			}
			if _, dup := seen[id]; dup {
				return
			}
			seen[id] = struct{}{}
			members = append(members, id)
		}

		for _, child := range g.Children {
			switch child.RType {
			case hue.RTypeLight:
				add(child.RID)
			case hue.RTypeDevice:
				for _, lightID := range adjacency[child.RID] {
					add(lightID)
				}
			}
		}
		if len(members) > 0 {
			out[g.ID] = members
		}
	}
	return out
}
