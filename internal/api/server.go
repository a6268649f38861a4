package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-hub/internal/dashboard"
	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/home"
	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Home is the aggregation surface served under /api/v1.
type Home interface {
	GetHome(ctx context.Context) device.Home
	Statuses(ctx context.Context) []plugin.Status
	Connect(ctx context.Context, id string, creds plugin.Credentials) (plugin.ConnectResult, error)
	Disconnect(ctx context.Context, id string, forget bool) error

	UpdateDevice(ctx context.Context, id string, state device.State) (plugin.Result, error)
	UpdateRoomDevices(ctx context.Context, id string, state device.State) (plugin.Result, error)
	UpdateZoneDevices(ctx context.Context, id string, state device.State) (plugin.Result, error)
	ActivateScene(ctx context.Context, id string) (plugin.Result, error)
}

// Dashboards composes the lighting dashboard.
type Dashboards interface {
	Compose(ctx context.Context) (*dashboard.Dashboard, error)
}

// RoomMappings stores which backend rooms a bare room id stands for.
type RoomMappings interface {
	Lookup(ctx context.Context, roomID string) ([]home.Target, error)
	Put(ctx context.Context, roomID string, targets ...home.Target) error
	Delete(ctx context.Context, roomID string) error
}

// HealthChecker is implemented by optional infrastructure (MQTT, InfluxDB,
// database) reported by the health endpoint.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// SlugCounter reports slug mappings per namespace.
type SlugCounter interface {
	Count() map[string]int
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	WS        config.WebSocketConfig
	Logger    *logging.Logger
	Home      Home
	Dashboard Dashboards

	// Rooms backs /api/v1/rooms/{id}/mappings. Without it those routes
	// answer 501.
	Rooms RoomMappings

	// Hub, if set, is used instead of a server-owned hub so the change
	// poller can publish to it before the server starts.
	Hub *Hub

	// Metrics serves GET /metrics when set.
	Metrics http.Handler

	// Checks are reported by GET /api/v1/health, keyed by component name.
	Checks map[string]HealthChecker

	Slugs   SlugCounter
	Version string
}

// Server is the HTTP API server for the hub.
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	logger    *logging.Logger
	home      Home
	dashboard Dashboards
	rooms     RoomMappings
	metrics   http.Handler
	checks    map[string]HealthChecker
	slugs     SlugCounter
	version   string
	startTime time.Time

	server      *http.Server
	hub         *Hub
	externalHub bool
	cancel      context.CancelFunc
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Home == nil {
		return nil, fmt.Errorf("home service is required")
	}
	if deps.Dashboard == nil {
		return nil, fmt.Errorf("dashboard compositor is required")
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		logger:    deps.Logger,
		home:      deps.Home,
		dashboard: deps.Dashboard,
		rooms:     deps.Rooms,
		metrics:   deps.Metrics,
		checks:    deps.Checks,
		slugs:     deps.Slugs,
		version:   deps.Version,
		startTime: time.Now(),
	}
	if deps.Hub != nil {
		s.hub = deps.Hub
		s.externalHub = true
	}
	return s, nil
}

// Hub returns the WebSocket hub, creating it if needed.
func (s *Server) Hub() *Hub {
	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	return s.hub
}

// Start runs the hub (unless injected) and begins listening in the
// background. The server is stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	hub := s.Hub()
	if !s.externalHub {
		go hub.Run(srvCtx)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close waits up to gracefulShutdownTimeout for in-flight requests, then
// closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck reports whether the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
