// Package media is the plugin for the cloud media playback service.
//
// Speaker groups become rooms and speakers become devices. Connect takes
// an OAuth2 token obtained outside the hub; refreshes are handled by the
// vendor client's token source.
package media
