package slug

import "errors"

var (
	// ErrCorruptStore is returned when a persisted mapping document cannot be decoded.
	ErrCorruptStore = errors.New("slug: corrupt mapping store")
)
