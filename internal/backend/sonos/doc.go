// Package sonos is a client for the cloud media control API.
package sonos
