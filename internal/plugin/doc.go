// Package plugin defines the capability contract every backend adapter
// implements and the registry that resolves the active adapter per request.
//
// # Contract
//
// Every plugin implements the mandatory [Plugin] interface: connection
// lifecycle, connection status, a status snapshot and credential presence.
// Optional behaviour (rooms, devices, zones, mutations, scenes, change
// detection) is declared through [Plugin.Capabilities] and backed by one
// small interface per capability. [Validate] checks once, at registration,
// that every declared capability is backed by its interface, so call sites
// dispatch on the capability set instead of probing types.
//
// The package-level helpers ([Rooms], [Devices], [UpdateDevice], ...) return
// empty results for plugins that lack a capability, and [ErrUnsupported] for
// mutations.
//
// # Modes
//
// Each identity has one real plugin and at most one demo plugin. The mode is
// request-scoped: it travels on the context ([WithMode], [ModeFrom]) or is
// passed explicitly to [Registry.ResolveMode]. There is no process-wide mode.
//
// # Usage
//
//	reg := plugin.NewRegistry()
//	if err := reg.Register("lighting", lightingPlugin); err != nil {
//	    return err // configuration errors are fatal
//	}
//	if err := reg.RegisterDemo("lighting", lightingDemo); err != nil {
//	    return err
//	}
//
//	ctx = plugin.WithMode(ctx, plugin.ModeDemo)
//	p, err := reg.Resolve(ctx, "lighting") // the demo instance
package plugin
