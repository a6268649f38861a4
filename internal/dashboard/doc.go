// Package dashboard composes the lighting-centric dashboard view.
//
// Unlike the home model, the dashboard reads the primary lighting backend
// directly: it fetches lights, rooms, devices, scenes, zones and motion
// zones in parallel, resolves room and zone membership, and computes
// per-group statistics on every call. Connection status of every other
// plugin is merged in for display.
package dashboard
