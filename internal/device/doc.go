// Package device defines the unified home model shared by every backend.
//
// Backends speak their own dialects (Hue lights and groups, Hive products,
// Sonos players and groups). Normalizers translate those records into the
// types in this package so the aggregation layer, the dashboard and the API
// can treat every backend alike.
//
// # Key Types
//
//   - Device: a single controllable or monitorable entity
//   - Room: devices grouped by physical space, with optional scenes
//   - Zone: a backend-defined grouping, shaped like a Room
//   - Scene: a stored preset a backend can recall
//   - Home: the merged view returned by the aggregation layer
//   - State: the device's current state as a JSON map
//   - Capabilities: an ordered set of what a device can do
//
// Identifiers inside these types are opaque strings. Plugins fill them with
// stable slugs; the aggregation layer rewrites them to flat "plugin:slug"
// form before they leave the process.
package device
