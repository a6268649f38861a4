package hive

import "errors"

var (
	// ErrUnauthorized is returned when the session is rejected even after a refresh.
	ErrUnauthorized = errors.New("hive: unauthorized")

	// ErrNoSession is returned when no session tokens are available.
	ErrNoSession = errors.New("hive: no session")
)
