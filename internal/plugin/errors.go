package plugin

import "errors"

// Registration errors are configuration errors and fatal at startup.
// Resolution errors are returned to callers.
var (
	// ErrInvalidIdentity is returned when a plugin identity is empty, reserved or malformed.
	ErrInvalidIdentity = errors.New("plugin: invalid identity")

	// ErrDuplicatePlugin is returned when a plugin of the same kind is already registered for an identity.
	ErrDuplicatePlugin = errors.New("plugin: duplicate registration")

	// ErrContractViolation is returned when a plugin is nil, reports a different identity,
	// or declares a capability it does not implement.
	ErrContractViolation = errors.New("plugin: contract violation")

	// ErrNotRegistered is returned when no plugin is registered for an identity and mode.
	ErrNotRegistered = errors.New("plugin: not registered")

	// ErrUnsupported is returned when a plugin does not offer the requested capability.
	ErrUnsupported = errors.New("plugin: capability not supported")

	// ErrNotConnected is returned by plugins when an operation needs a live session.
	ErrNotConnected = errors.New("plugin: not connected")

	// ErrNotFound is returned by plugins when a vendor entity does not exist.
	ErrNotFound = errors.New("plugin: entity not found")
)
