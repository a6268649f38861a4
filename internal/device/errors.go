package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrInvalidState) {
//	    // handle bad request
//	}
var (
	// ErrInvalidState is returned when a requested state change is malformed.
	ErrInvalidState = errors.New("device: invalid state")
)
