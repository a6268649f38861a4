// Gray Logic Hub - multi-backend home aggregation core
//
// The hub merges lighting, heating and media backends into one home model,
// serves it over HTTP and WebSocket, and pushes per-plugin change events.
// Every backend has a real and a demo plugin; requests pick one per call.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/gray-logic-hub/migrations"

	"github.com/nerrad567/gray-logic-hub/internal/api"
	"github.com/nerrad567/gray-logic-hub/internal/backend/hive"
	"github.com/nerrad567/gray-logic-hub/internal/backend/hue"
	"github.com/nerrad567/gray-logic-hub/internal/backend/sonos"
	"github.com/nerrad567/gray-logic-hub/internal/credstore"
	"github.com/nerrad567/gray-logic-hub/internal/dashboard"
	"github.com/nerrad567/gray-logic-hub/internal/home"
	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/metrics"
	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
	"github.com/nerrad567/gray-logic-hub/internal/plugins/heating"
	"github.com/nerrad567/gray-logic-hub/internal/plugins/lighting"
	"github.com/nerrad567/gray-logic-hub/internal/plugins/media"
	"github.com/nerrad567/gray-logic-hub/internal/push"
	"github.com/nerrad567/gray-logic-hub/internal/slug"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path, used when it exists and
// GRAYLOGIC_HUB_CONFIG is unset.
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until ctx is cancelled.
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // composition root
	log := logging.Default()
	log.Info("starting Gray Logic Hub",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, source, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "source", source, "level", cfg.Logging.Level)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	applied, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", db.Path(), "migrations_applied", applied)

	// Demo ids live in memory only so they never reach the persisted store.
	realSlugs := slug.NewService(slugStore(cfg.Slugs, db))
	realSlugs.SetLogger(log.Component("slug"))
	if err := realSlugs.Load(ctx); err != nil {
		return fmt.Errorf("loading slug mappings: %w", err)
	}
	demoSlugs := slug.NewService(slug.NewMemoryStore())
	demoSlugs.SetLogger(log.Component("slug").With("mode", plugin.ModeDemo.String()))

	registry := plugin.NewRegistry()
	registry.SetLogger(log.Component("registry"))
	if err := registerPlugins(ctx, cfg, registry, realSlugs, demoSlugs, credstore.NewSQLiteStore(db.DB), log); err != nil {
		return err
	}

	promReg := metrics.NewRegistry()
	hubMetrics := metrics.NewMetrics(promReg)
	for mode, src := range map[plugin.Mode]*slug.Service{plugin.ModeReal: realSlugs, plugin.ModeDemo: demoSlugs} {
		if err := metrics.RegisterSlugs(promReg, mode, src); err != nil {
			return fmt.Errorf("registering slug metrics: %w", err)
		}
	}

	observers := home.Observers{hubMetrics}
	hub := api.NewHub(cfg.WebSocket, log.Component("websocket"))
	publishers := []push.Publisher{hub, hubMetrics}
	checks := map[string]api.HealthChecker{"database": db}

	if cfg.InfluxDB.Enabled {
		influxClient, err := influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		observers = append(observers, influxClient)
		publishers = append(publishers, influxClient)
		checks["influxdb"] = influxClient
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		publishers = append(publishers, mqtt.NewDeltaPublisher(mqttClient, mqttClient.QoS()))
		checks["mqtt"] = mqttClient
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	storedRooms := home.NewSQLiteRoomMapper(db.DB)
	homeSvc := home.NewService(registry,
		home.Translators{Real: realSlugs, Demo: demoSlugs},
		home.RoomMappers{roomMapper(cfg.RoomMappings), storedRooms},
		home.Config{DefaultPlugin: cfg.Hub.DefaultPlugin, FetchTimeout: cfg.Aggregation.FetchTimeout},
	)
	homeSvc.SetLogger(log.Component("home"))
	homeSvc.SetObserver(observers)

	compositor := dashboard.NewCompositor(registry, config.PluginLighting)
	compositor.SetLogger(log.Component("dashboard"))

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go hub.Run(hubCtx)

	if cfg.Push.Enabled {
		poller := push.NewPoller(registry, cfg.Push.Interval, publishers...)
		poller.SetLogger(log.Component("push"))
		go func() {
			if err := poller.Run(hubCtx); err != nil {
				log.Error("change poller stopped", "error", err)
			}
		}()
		log.Info("change poller started", "interval", cfg.Push.Interval)
	}

	server, err := api.New(api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Logger:    log.Component("api"),
		Home:      homeSvc,
		Dashboard: compositor,
		Rooms:     storedRooms,
		Hub:       hub,
		Metrics:   metrics.Handler(promReg),
		Checks:    checks,
		Slugs:     realSlugs,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal",
		"plugins", registry.IDs(),
		"demo", cfg.Hub.Demo,
	)

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// loadConfig reads GRAYLOGIC_HUB_CONFIG, else defaultConfigPath if present,
// else the built-in defaults. It also returns where the config came from.
func loadConfig() (*config.Config, string, error) {
	if path := os.Getenv("GRAYLOGIC_HUB_CONFIG"); path != "" {
		cfg, err := config.Load(path)
		return cfg, path, err
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		cfg, err := config.Load(defaultConfigPath)
		return cfg, defaultConfigPath, err
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("checking %s: %w", defaultConfigPath, err)
	}
	cfg, err := config.Default()
	return cfg, "defaults", err
}

// slugStore selects the persistent store for real-mode slugs.
func slugStore(cfg config.SlugConfig, db *database.DB) slug.Store {
	if cfg.Backend == config.SlugBackendSQLite {
		return slug.NewSQLiteStore(db.DB)
	}
	return slug.NewFileStore(cfg.Path)
}

// roomMapper converts configured room mappings.
func roomMapper(mappings map[string][]config.RoomTarget) home.StaticRoomMapper {
	out := make(home.StaticRoomMapper, len(mappings))
	for room, targets := range mappings {
		for _, t := range targets {
			out[room] = append(out[room], home.Target{Plugin: t.Plugin, LocalID: t.LocalID})
		}
	}
	return out
}

// restorer is implemented by real plugins that can resume a stored session.
type restorer interface {
	Restore(ctx context.Context) error
}

// registerPlugins registers the enabled real plugins, restoring stored
// sessions, and the demo plugins when cfg.Hub.Demo is set.
func registerPlugins(ctx context.Context, cfg *config.Config, registry *plugin.Registry,
	realSlugs, demoSlugs slug.Translator, creds credstore.Store, log *logging.Logger,
) error {
	type entry struct {
		id      string
		enabled bool
		real    func() plugin.Plugin
		demo    func() plugin.Plugin
	}
	p := cfg.Plugins
	entries := []entry{
		{
			id: config.PluginLighting, enabled: p.Lighting.Enabled,
			real: func() plugin.Plugin {
				pl := lighting.New(config.PluginLighting, realSlugs, creds, p.Lighting.Host)
				pl.SetLogger(log.Component(config.PluginLighting))
				return pl
			},
			demo: func() plugin.Plugin {
				return lighting.NewDemo(config.PluginLighting, demoSlugs, hue.NewDemoBridge())
			},
		},
		{
			id: config.PluginHeating, enabled: p.Heating.Enabled,
			real: func() plugin.Plugin {
				pl := heating.New(config.PluginHeating, realSlugs, creds, p.Heating.BaseURL)
				pl.SetLogger(log.Component(config.PluginHeating))
				return pl
			},
			demo: func() plugin.Plugin {
				return heating.NewDemo(config.PluginHeating, demoSlugs, hive.NewDemoBackend())
			},
		},
		{
			id: config.PluginMedia, enabled: p.Media.Enabled,
			real: func() plugin.Plugin {
				oauth := sonos.OAuthConfig(p.Media.ClientID, p.Media.ClientSecret, p.Media.RedirectURL)
				pl := media.New(config.PluginMedia, realSlugs, creds, p.Media.BaseURL, oauth)
				pl.SetLogger(log.Component(config.PluginMedia))
				return pl
			},
			demo: func() plugin.Plugin {
				return media.NewDemo(config.PluginMedia, demoSlugs, sonos.NewDemoBackend())
			},
		},
	}

	for _, e := range entries {
		if !e.enabled {
			log.Info("plugin disabled", "plugin", e.id)
			continue
		}
		live := e.real()
		if r, ok := live.(restorer); ok {
			restoreCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := r.Restore(restoreCtx); err != nil {
				log.Warn("restoring plugin session failed", "plugin", e.id, "error", err)
			}
			cancel()
		}
		if err := registry.Register(e.id, live); err != nil {
			return fmt.Errorf("registering %s: %w", e.id, err)
		}
		if cfg.Hub.Demo {
			if err := registry.RegisterDemo(e.id, e.demo()); err != nil {
				return fmt.Errorf("registering demo %s: %w", e.id, err)
			}
		}
	}
	return nil
}
