// Package heating is the plugin for the cloud heating service.
//
// The interactive sign-in (SRP and MFA) happens outside the hub. Connect
// accepts the resulting session token pair, which is persisted and
// refreshed by the vendor client.
//
// Heating exposes devices only: thermostats, hot water and sensors. It has
// no rooms or scenes.
package heating
