package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each component check of the health endpoint.
const healthCheckTimeout = 3 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Group(func(r chi.Router) {
			r.Use(s.demoModeMiddleware)

			r.Get("/home", s.handleGetHome)
			r.Get("/dashboard", s.handleGetDashboard)

			r.Route("/plugins", func(r chi.Router) {
				r.Get("/", s.handleListPlugins)
				r.Post("/{id}/connection", s.handleConnectPlugin)
				r.Delete("/{id}/connection", s.handleDisconnectPlugin)
			})

			r.Put("/devices/{id}/state", s.handleSetDeviceState)
			r.Put("/rooms/{id}/state", s.handleSetRoomState)
			r.Get("/rooms/{id}/mappings", s.handleGetRoomMappings)
			r.Put("/rooms/{id}/mappings", s.handlePutRoomMappings)
			r.Delete("/rooms/{id}/mappings", s.handleDeleteRoomMappings)
			r.Put("/zones/{id}/state", s.handleSetZoneState)
			r.Post("/scenes/{id}/activate", s.handleActivateScene)

			r.Get(s.wsPath(), s.handleWebSocket)
		})
	})

	return r
}

// wsPath returns the WebSocket route below /api/v1.
func (s *Server) wsPath() string {
	if s.wsCfg.Path == "" {
		return "/ws"
	}
	return s.wsCfg.Path
}

// handleHealth reports the server and every registered component check.
// Any failing component turns the response into 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	code := http.StatusOK
	components := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := s.checks[name].HealthCheck(ctx)
		cancel()
		if err != nil {
			components[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":     status,
		"version":    s.version,
		"components": components,
	})
}
