package home

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
)

// Operation names used in RoutingError.Op.
const (
	OpUpdateDevice = "update device"
	OpUpdateRoom   = "update room"
	OpUpdateZone   = "update zone"
	OpActivate     = "activate scene"
)

// route is a resolved command target.
type route struct {
	plugin   plugin.Plugin
	vendorID string
}

// UpdateDevice routes a state change to the plugin owning flatID.
func (s *Service) UpdateDevice(ctx context.Context, flatID string, state device.State) (plugin.Result, error) {
	r, err := s.routeID(ctx, OpUpdateDevice, flatID, plugin.CapUpdateDevice)
	if err != nil {
		return plugin.Result{}, err
	}
	res, err := plugin.UpdateDevice(ctx, r.plugin, r.vendorID, state)
	if res.Device != nil {
		d := remapDevice(ctx, s.slugs.For(plugin.ModeFrom(ctx)), r.plugin.ID(), *res.Device)
		res.Device = &d
	}
	return res, err
}

// ActivateScene routes a scene recall to the plugin owning flatID.
func (s *Service) ActivateScene(ctx context.Context, flatID string) (plugin.Result, error) {
	r, err := s.routeID(ctx, OpActivate, flatID, plugin.CapScenes)
	if err != nil {
		return plugin.Result{}, err
	}
	return plugin.ActivateScene(ctx, r.plugin, r.vendorID)
}

// UpdateZoneDevices routes a state change to every device of a zone.
func (s *Service) UpdateZoneDevices(ctx context.Context, id string, state device.State) (plugin.Result, error) {
	r, err := s.routeID(ctx, OpUpdateZone, id, plugin.CapUpdateZone)
	if err != nil {
		return plugin.Result{}, err
	}
	return plugin.UpdateZoneDevices(ctx, r.plugin, r.vendorID, state)
}

// UpdateRoomDevices routes a state change to every device of a room.
//
// A prefixed id addresses one plugin's room. A bare id is looked up in the
// room mappings and fanned out to every mapped backend room in parallel;
// an unmapped bare id goes to the default plugin. Every target is resolved
// before anything is sent, so a routing error means nothing was changed.
// The result succeeds only if every contacted backend succeeded.
func (s *Service) UpdateRoomDevices(ctx context.Context, id string, state device.State) (plugin.Result, error) {
	pluginID, local, prefixed, err := ParseFlatID(id)
	if err != nil {
		return plugin.Result{}, &RoutingError{ID: id, Op: OpUpdateRoom, Err: err}
	}
	if prefixed {
		r, err := s.resolveRoute(ctx, OpUpdateRoom, id, pluginID, local, plugin.CapUpdateRoom)
		if err != nil {
			return plugin.Result{}, err
		}
		return plugin.UpdateRoomDevices(ctx, r.plugin, r.vendorID, state)
	}

	targets, err := s.rooms.Lookup(ctx, local)
	if err != nil {
		return plugin.Result{}, fmt.Errorf("looking up room %q: %w", id, err)
	}
	if len(targets) == 0 {
		targets = []Target{{Plugin: s.cfg.DefaultPlugin, LocalID: local}}
	}

	routes := make([]route, 0, len(targets))
	for _, t := range targets {
		r, err := s.resolveRoute(ctx, OpUpdateRoom, id, t.Plugin, t.LocalID, plugin.CapUpdateRoom)
		if err != nil {
			return plugin.Result{}, err
		}
		routes = append(routes, r)
	}
	if len(routes) == 1 {
		return plugin.UpdateRoomDevices(ctx, routes[0].plugin, routes[0].vendorID, state)
	}
	return s.fanOut(ctx, routes, state)
}

func (s *Service) fanOut(ctx context.Context, routes []route, state device.State) (plugin.Result, error) {
	var (
		g        errgroup.Group
		mu       sync.Mutex
		updated  int
		ok       = true
		errs     []error
		messages []string
	)
	for _, r := range routes {
		r := r
		g.Go(func() error {
			res, err := plugin.UpdateRoomDevices(ctx, r.plugin, r.vendorID, state)
			mu.Lock()
			defer mu.Unlock()
			updated += res.Updated
			if err != nil {
				ok = false
				errs = append(errs, fmt.Errorf("%s: %w", r.plugin.ID(), err))
				return nil
			}
			if !res.Success {
				ok = false
				messages = append(messages, r.plugin.ID()+": "+res.Message)
			}
			return nil
		})
	}
	_ = g.Wait()

	res := plugin.Result{Success: ok, Updated: updated}
	if len(messages) > 0 {
		res.Message = strings.Join(messages, "; ")
	}
	if len(errs) > 0 {
		s.logger.Warn("room update partly failed", "failed", len(errs), "targets", len(routes))
		return res, errors.Join(errs...)
	}
	return res, nil
}

// routeID decodes a flat or bare id into a plugin and vendor id.
func (s *Service) routeID(ctx context.Context, op, id string, want plugin.Capability) (route, error) {
	pluginID, local, prefixed, err := ParseFlatID(id)
	if err != nil {
		return route{}, &RoutingError{ID: id, Op: op, Err: err}
	}
	if !prefixed {
		pluginID = s.cfg.DefaultPlugin
	}
	return s.resolveRoute(ctx, op, id, pluginID, local, want)
}

func (s *Service) resolveRoute(ctx context.Context, op, rawID, pluginID, local string, want plugin.Capability) (route, error) {
	if pluginID == "" {
		return route{}, &RoutingError{ID: rawID, Op: op, Err: ErrUnknownPlugin}
	}
	p, err := s.resolve(ctx, op, rawID, pluginID)
	if err != nil {
		return route{}, err
	}
	if !p.Capabilities().Has(want) {
		return route{}, &RoutingError{ID: rawID, Plugin: pluginID, Op: op, Err: ErrUnsupported}
	}
	vendorID, ok := s.slugs.For(plugin.ModeFrom(ctx)).GetUUID(pluginID, local)
	if !ok {
		return route{}, &RoutingError{ID: rawID, Plugin: pluginID, Op: op, Err: ErrUnresolvedID}
	}
	return route{plugin: p, vendorID: vendorID}, nil
}
