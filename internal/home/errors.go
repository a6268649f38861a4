package home

import (
	"errors"
	"fmt"
)

// Routing failures. They reach callers wrapped in *RoutingError.
var (
	// ErrUnknownPlugin is returned when an id names no registered plugin for the current mode.
	ErrUnknownPlugin = errors.New("home: unknown plugin")

	// ErrUnsupported is returned when the owning plugin lacks the requested capability.
	ErrUnsupported = errors.New("home: operation not supported")

	// ErrUnresolvedID is returned when the local part of an id has no vendor mapping.
	ErrUnresolvedID = errors.New("home: unresolved id")

	// ErrInvalidID is returned for ids that cannot be parsed.
	ErrInvalidID = errors.New("home: invalid id")
)

// RoutingError names the identifier that could not be routed.
type RoutingError struct {
	ID     string // id as supplied by the caller
	Plugin string // plugin identity it resolved to, if any
	Op     string
	Err    error
}

func (e *RoutingError) Error() string {
	if e.Plugin == "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %q (plugin %s): %v", e.Op, e.ID, e.Plugin, e.Err)
}

func (e *RoutingError) Unwrap() error {
	return e.Err
}
