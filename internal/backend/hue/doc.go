// Package hue is the boundary to the local lighting bridge.
//
// The bridge is reached through github.com/amimof/huego. Its records are
// reshaped into resource-style types (lights owned by devices, rooms that
// reference devices, zones that reference lights) so the rest of the hub
// builds room membership the same way regardless of bridge API version.
//
// [MemoryBridge] implements the same interfaces over deterministic
// fixtures for demo mode and tests.
package hue
