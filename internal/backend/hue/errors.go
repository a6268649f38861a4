package hue

import "errors"

var (
	// ErrNotFound is returned when a light, group or scene id is unknown.
	ErrNotFound = errors.New("hue: resource not found")

	// ErrInvalidID is returned when an id is not in the bridge's format.
	ErrInvalidID = errors.New("hue: invalid resource id")

	// ErrNotPaired is returned when the bridge has no application key.
	ErrNotPaired = errors.New("hue: bridge not paired")
)
