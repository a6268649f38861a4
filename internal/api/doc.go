// Package api implements the HTTP REST API and WebSocket server for the hub.
//
// This package provides:
//   - read endpoints for the merged home, the lighting dashboard and plugin status
//   - command endpoints routed to the owning plugin by flat id
//   - stored mappings from bare room ids to backend rooms
//   - a WebSocket hub that relays change events from the poller
//   - the middleware stack (request ID, logging, recovery, CORS, demo mode)
//
// # Demo mode
//
// Every request under /api/v1 runs in real mode unless it carries
// "X-Demo-Mode: true" or "?demo=true", in which case it is served by the
// demo plugins. The mode travels on the request context.
//
// # Routes
//
//	GET    /api/v1/home
//	GET    /api/v1/dashboard
//	GET    /api/v1/plugins
//	POST   /api/v1/plugins/{id}/connection
//	DELETE /api/v1/plugins/{id}/connection[?forget=true]
//	PUT    /api/v1/devices/{id}/state
//	PUT    /api/v1/rooms/{id}/state
//	GET    /api/v1/rooms/{id}/mappings
//	PUT    /api/v1/rooms/{id}/mappings
//	DELETE /api/v1/rooms/{id}/mappings
//	PUT    /api/v1/zones/{id}/state
//	POST   /api/v1/scenes/{id}/activate
//	GET    /api/v1/ws
//	GET    /api/v1/health
//	GET    /api/v1/metrics
//	GET    /metrics
package api
