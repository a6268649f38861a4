package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/home"
	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
	"github.com/nerrad567/gray-logic-hub/internal/slug"
)

// writeConfig writes a config rooted in a temp dir and points
// GRAYLOGIC_HUB_CONFIG at it. extra is appended verbatim.
func writeConfig(t *testing.T, port int, extra string) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`
hub:
  default_plugin: lighting
  demo: true
database:
  path: %q
  wal_mode: true
  busy_timeout: 5
slugs:
  backend: file
  path: %q
mqtt:
  enabled: false
influxdb:
  enabled: false
logging:
  level: error
  format: text
  output: stdout
api:
  host: "127.0.0.1"
  port: %d
  timeouts:
    read: 5
    write: 5
    idle: 5
push:
  enabled: true
  interval: 50ms
%s`, filepath.Join(dir, "hub.db"), filepath.Join(dir, "slugs.json"), port, extra)

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("GRAYLOGIC_HUB_CONFIG", path)
	return dir
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestRun_InvalidConfigPath(t *testing.T) {
	t.Setenv("GRAYLOGIC_HUB_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() error = nil for a missing config file")
	}
}

func TestRun_InvalidDefaultPlugin(t *testing.T) {
	writeConfig(t, freePort(t), "")
	t.Setenv("GRAYLOGIC_HUB_DEFAULT_PLUGIN", "garage")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil || !strings.Contains(err.Error(), "config") {
		t.Fatalf("run() error = %v, want a config error", err)
	}
}

// getJSON polls url until it answers 200 or the deadline passes.
func getJSON(t *testing.T, url string, out any) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			body, _ := io.ReadAll(resp.Body) //nolint:errcheck // checked by decode below
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				if out != nil {
					if err := json.Unmarshal(body, out); err != nil {
						t.Fatalf("decoding %s: %v", url, err)
					}
				}
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("GET %s did not succeed: %v", url, err)
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func TestRun_ServesAndShutsDown(t *testing.T) {
	port := freePort(t)
	dir := writeConfig(t, port, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)

	var demo device.Home
	getJSON(t, base+"/api/v1/home?demo=true", &demo)
	if len(demo.Devices) == 0 {
		t.Error("demo home has no devices")
	}
	services := make(map[string]bool)
	for _, d := range demo.Devices {
		services[d.ServiceID] = true
	}
	for _, id := range []string{config.PluginLighting, config.PluginHeating, config.PluginMedia} {
		if !services[id] {
			t.Errorf("demo home has no %s devices", id)
		}
	}

	// Real plugins have no stored sessions, so the real home is empty.
	var live device.Home
	getJSON(t, base+"/api/v1/home", &live)
	if len(live.Devices) != 0 {
		t.Errorf("real home has %d devices, want 0", len(live.Devices))
	}

	var plugins struct {
		Plugins []plugin.Status `json:"plugins"`
	}
	getJSON(t, base+"/api/v1/plugins", &plugins)
	if len(plugins.Plugins) != 3 {
		t.Errorf("got %d real plugins, want 3", len(plugins.Plugins))
	}

	resp, err := http.Get(base + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body) //nolint:errcheck // checked by Contains below
	resp.Body.Close()
	if !strings.Contains(string(body), `graylogic_hub_slug_mappings{mode="demo"`) {
		t.Error("/metrics has no demo slug mappings")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("run() did not return after cancel")
	}

	// Demo ids are never persisted.
	if data, err := os.ReadFile(filepath.Join(dir, "slugs.json")); err == nil && strings.Contains(string(data), "demo") {
		t.Errorf("slug file mentions demo ids: %s", data)
	}
}

func TestRoomMapper(t *testing.T) {
	m := roomMapper(map[string][]config.RoomTarget{
		"living-room": {
			{Plugin: "lighting", LocalID: "lounge"},
			{Plugin: "media", LocalID: "living-room"},
		},
	})

	targets, err := m.Lookup(context.Background(), "living-room")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	want := []home.Target{{Plugin: "lighting", LocalID: "lounge"}, {Plugin: "media", LocalID: "living-room"}}
	if len(targets) != len(want) {
		t.Fatalf("targets = %+v, want %+v", targets, want)
	}
	for i := range want {
		if targets[i] != want[i] {
			t.Errorf("targets[%d] = %+v, want %+v", i, targets[i], want[i])
		}
	}
}

func TestSlugStore(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "hub.db"), BusyTimeout: 5})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if _, ok := slugStore(config.SlugConfig{Backend: config.SlugBackendSQLite}, db).(*slug.SQLiteStore); !ok {
		t.Error("sqlite backend did not select the SQLite store")
	}
	if _, ok := slugStore(config.SlugConfig{Backend: config.SlugBackendFile, Path: "x.json"}, db).(*slug.FileStore); !ok {
		t.Error("file backend did not select the file store")
	}
}
