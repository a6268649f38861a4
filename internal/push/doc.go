// Package push turns per-plugin change detection into live events.
//
// A Poller takes a Status snapshot of every plugin that declares change
// detection, in both the real and the demo universe, compares it with the
// previous snapshot of the same plugin and mode, and hands any non-empty
// delta to its publishers (the WebSocket hub, the MQTT broker).
//
// The first snapshot of a plugin is a baseline and produces no event.
// A failed Status call keeps the previous baseline.
package push
