package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/gray-logic-hub/internal/plugin"
)

// SystemMetrics is the JSON summary served at /api/v1/metrics. Prometheus
// metrics are served separately at /metrics.
type SystemMetrics struct {
	Timestamp     string         `json:"timestamp"`
	Version       string         `json:"version"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Runtime       RuntimeMetrics `json:"runtime"`
	WebSocket     WSMetrics      `json:"websocket"`
	Plugins       PluginMetrics  `json:"plugins"`
	Slugs         map[string]int `json:"slugs,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// PluginMetrics counts real-mode plugins by connection state.
type PluginMetrics struct {
	Total     int `json:"total"`
	Connected int `json:"connected"`
}

// handleMetrics returns runtime, hub and plugin statistics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.Hub().ClientCount(),
		},
	}

	statuses := s.home.Statuses(plugin.WithMode(r.Context(), plugin.ModeReal))
	metrics.Plugins.Total = len(statuses)
	for _, st := range statuses {
		if st.Connected {
			metrics.Plugins.Connected++
		}
	}

	if s.slugs != nil {
		metrics.Slugs = s.slugs.Count()
	}

	writeJSON(w, http.StatusOK, metrics)
}
