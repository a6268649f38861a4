package sonos

import "errors"

var (
	// ErrNoHousehold is returned when the account has no households.
	ErrNoHousehold = errors.New("sonos: no household")

	// ErrGroupNotFound is returned when a group id is unknown.
	ErrGroupNotFound = errors.New("sonos: group not found")
)
