// Package home merges every connected plugin into one home model and
// routes commands back to the owning plugin.
//
// All ids leaving this package are flat: "plugin:local", where local is the
// plugin's slug for the entity. FlatID and ParseFlatID are the only place
// that format is produced or read. A bare id (no prefix) is routed to the
// default plugin, except for room ids, which are first looked up in the
// room mappings and may fan out to several plugins.
//
// GetHome never fails because of a single plugin: a plugin whose fetch
// errors is logged and contributes nothing that round.
package home
