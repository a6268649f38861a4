package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Plugin identities the hub knows how to build.
const (
	PluginLighting = "lighting"
	PluginHeating  = "heating"
	PluginMedia    = "media"
)

// Slug store backends.
const (
	SlugBackendFile   = "file"
	SlugBackendSQLite = "sqlite"
)

// Config is the root configuration structure for the Gray Logic hub.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Hub          HubConfig               `yaml:"hub"`
	Database     DatabaseConfig          `yaml:"database"`
	Slugs        SlugConfig              `yaml:"slugs"`
	MQTT         MQTTConfig              `yaml:"mqtt"`
	API          APIConfig               `yaml:"api"`
	WebSocket    WebSocketConfig         `yaml:"websocket"`
	InfluxDB     InfluxDBConfig          `yaml:"influxdb"`
	Logging      LoggingConfig           `yaml:"logging"`
	Aggregation  AggregationConfig       `yaml:"aggregation"`
	Push         PushConfig              `yaml:"push"`
	Plugins      PluginsConfig           `yaml:"plugins"`
	RoomMappings map[string][]RoomTarget `yaml:"room_mappings"`
}

// HubConfig contains hub-wide settings.
type HubConfig struct {
	// DefaultPlugin receives ids that carry no plugin prefix.
	DefaultPlugin string `yaml:"default_plugin"`

	// Demo registers the demo plugins next to the real ones.
	Demo bool `yaml:"demo"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// SlugConfig selects where identifier mappings are persisted.
type SlugConfig struct {
	// Backend is "file" (a JSON document at Path) or "sqlite" (the hub database).
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// AggregationConfig tunes the home aggregation fan-out.
type AggregationConfig struct {
	// FetchTimeout bounds each plugin's fetch. Zero disables the bound.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// PushConfig tunes the change poller.
type PushConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// PluginsConfig contains per-backend settings.
type PluginsConfig struct {
	Lighting LightingConfig `yaml:"lighting"`
	Heating  HeatingConfig  `yaml:"heating"`
	Media    MediaConfig    `yaml:"media"`
}

// LightingConfig configures the lighting bridge plugin.
type LightingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Host is the bridge address. It may also be supplied at connect time.
	Host string `yaml:"host"`
}

// HeatingConfig configures the heating cloud plugin.
type HeatingConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
}

// MediaConfig configures the media cloud plugin and its OAuth2 client.
type MediaConfig struct {
	Enabled      bool   `yaml:"enabled"`
	BaseURL      string `yaml:"base_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// RoomTarget is one backend room a hub room id stands for.
type RoomTarget struct {
	Plugin  string `yaml:"plugin"`
	LocalID string `yaml:"local_id"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYLOGIC_SECTION_KEY
// For example: GRAYLOGIC_DATABASE_PATH, GRAYLOGIC_API_PORT
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration with environment overrides
// applied. Used when no config file is given.
func Default() (*Config, error) {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Hub: HubConfig{
			DefaultPlugin: PluginLighting,
			Demo:          true,
		},
		Database: DatabaseConfig{
			Path:        "./data/graylogic-hub.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Slugs: SlugConfig{
			Backend: SlugBackendFile,
			Path:    "./data/slugs.json",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "graylogic-hub",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Aggregation: AggregationConfig{
			FetchTimeout: 15 * time.Second,
		},
		Push: PushConfig{
			Enabled:  true,
			Interval: 10 * time.Second,
		},
		Plugins: PluginsConfig{
			Lighting: LightingConfig{Enabled: true},
			Heating:  HeatingConfig{Enabled: true},
			Media:    MediaConfig{Enabled: true},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAYLOGIC_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GRAYLOGIC_HUB_DEFAULT_PLUGIN"); v != "" {
		cfg.Hub.DefaultPlugin = v
	}

	// Database
	if v := os.Getenv("GRAYLOGIC_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Slugs
	if v := os.Getenv("GRAYLOGIC_SLUGS_BACKEND"); v != "" {
		cfg.Slugs.Backend = v
	}
	if v := os.Getenv("GRAYLOGIC_SLUGS_PATH"); v != "" {
		cfg.Slugs.Path = v
	}

	// MQTT
	if v := os.Getenv("GRAYLOGIC_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GRAYLOGIC_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRAYLOGIC_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("GRAYLOGIC_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// InfluxDB
	if v := os.Getenv("GRAYLOGIC_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Plugins
	if v := os.Getenv("GRAYLOGIC_LIGHTING_HOST"); v != "" {
		cfg.Plugins.Lighting.Host = v
	}
	if v := os.Getenv("GRAYLOGIC_MEDIA_CLIENT_ID"); v != "" {
		cfg.Plugins.Media.ClientID = v
	}
	if v := os.Getenv("GRAYLOGIC_MEDIA_CLIENT_SECRET"); v != "" {
		cfg.Plugins.Media.ClientSecret = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	switch c.Hub.DefaultPlugin {
	case PluginLighting, PluginHeating, PluginMedia:
	default:
		errs = append(errs, fmt.Sprintf("hub.default_plugin %q is not a known plugin", c.Hub.DefaultPlugin))
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	switch c.Slugs.Backend {
	case SlugBackendFile:
		if c.Slugs.Path == "" {
			errs = append(errs, "slugs.path is required for the file backend")
		}
	case SlugBackendSQLite:
	default:
		errs = append(errs, fmt.Sprintf("slugs.backend must be %q or %q", SlugBackendFile, SlugBackendSQLite))
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Aggregation.FetchTimeout < 0 {
		errs = append(errs, "aggregation.fetch_timeout must not be negative")
	}
	if c.Push.Enabled && c.Push.Interval <= 0 {
		errs = append(errs, "push.interval must be positive when push is enabled")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	for room, targets := range c.RoomMappings {
		for _, t := range targets {
			if t.Plugin == "" || t.LocalID == "" {
				errs = append(errs, fmt.Sprintf("room_mappings.%s needs plugin and local_id on every target", room))
				break
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
