// Package lighting is the plugin for the local lighting bridge.
//
// Lights pass through an enrichment step (display colour hint, glow flag)
// before normalization. Rooms are built from the bridge's room and device
// resources; rooms without any current light are not reported.
//
// The same plugin type serves real and demo mode: the demo instance is
// bound to an in-memory bridge and its own slug translator.
package lighting
