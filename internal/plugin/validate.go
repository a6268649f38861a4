package plugin

import (
	"fmt"
	"reflect"
)

// ReservedIdentities cannot be registered. "home" is the flat-id namespace
// of the aggregate itself.
var ReservedIdentities = map[string]struct{}{
	"":     {},
	"home": {},
}

const maxIdentityLength = 32

// ValidateIdentity checks that id is a usable plugin identity: non-empty,
// not reserved, lowercase alphanumerics and hyphens only. Colons are
// rejected because they delimit flat identifiers.
func ValidateIdentity(id string) error {
	if _, reserved := ReservedIdentities[id]; reserved {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidIdentity, id)
	}
	if len(id) > maxIdentityLength {
		return fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidIdentity, id, maxIdentityLength)
	}
	for _, r := range id {
		isLower := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		if !isLower && !isDigit && r != '-' {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidIdentity, id, r)
		}
	}
	return nil
}

// Validate checks a plugin against the contract once, at registration.
//
// It rejects a nil plugin, an invalid identity, a plugin reporting a
// different identity than the one it is registered under, and any declared
// capability whose backing interface is not implemented.
func Validate(id string, p Plugin) error {
	if err := ValidateIdentity(id); err != nil {
		return err
	}
	if isNil(p) {
		return fmt.Errorf("%w: nil plugin for %q", ErrContractViolation, id)
	}
	if got := p.ID(); got != id {
		return fmt.Errorf("%w: plugin reports identity %q, registered as %q", ErrContractViolation, got, id)
	}

	caps := p.Capabilities()
	for _, c := range caps.List() {
		if !implements(p, c) {
			return fmt.Errorf("%w: %q declares %q without implementing it", ErrContractViolation, id, c)
		}
	}
	return nil
}

// implements reports whether p carries the interface backing c.
func implements(p Plugin, c Capability) bool {
	var ok bool
	switch c {
	case CapRooms:
		_, ok = p.(RoomProvider)
	case CapDevices:
		_, ok = p.(DeviceProvider)
	case CapZones:
		_, ok = p.(ZoneProvider)
	case CapUpdateDevice:
		_, ok = p.(DeviceUpdater)
	case CapUpdateRoom:
		_, ok = p.(RoomUpdater)
	case CapUpdateZone:
		_, ok = p.(ZoneUpdater)
	case CapScenes:
		_, ok = p.(SceneActivator)
	case CapChangeDetection:
		_, ok = p.(ChangeDetector)
	}
	return ok
}

// isNil catches both a nil interface and a typed nil pointer.
func isNil(p Plugin) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
