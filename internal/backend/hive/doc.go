// Package hive is a client for the cloud heating API.
//
// Interactive login is not performed here. The hub is handed a session
// (access and refresh token) and keeps it alive; a 401 triggers a single
// shared refresh.
package hive
