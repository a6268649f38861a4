package influxdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
	"github.com/nerrad567/gray-logic-hub/internal/push"
)

// fakeInflux answers pings and records written line protocol.
type fakeInflux struct {
	mu      sync.Mutex
	lines   []string
	healthy bool
}

func (f *fakeInflux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/ping":
		if !f.healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case r.URL.Path == "/api/v2/write":
		body, _ := io.ReadAll(r.Body) //nolint:errcheck // test server
		f.mu.Lock()
		f.lines = append(f.lines, strings.Split(strings.TrimSpace(string(body)), "\n")...)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeInflux) written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.lines))
	copy(out, f.lines)
	return out
}

func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           url,
		Token:         "hub-test-token",
		Org:           "graylogic",
		Bucket:        "hub",
		BatchSize:     10,
		FlushInterval: 1,
	}
}

func connect(t *testing.T, f *fakeInflux) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	c, err := Connect(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { c.Close() }) //nolint:errcheck // test cleanup
	return c
}

// waitFor polls until cond holds or a second passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within 1s")
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Enabled = false

	if _, err := Connect(cfg); !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(&fakeInflux{healthy: false})
	defer srv.Close()

	if _, err := Connect(testConfig(srv.URL)); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestConnect_DefaultBatchSettings(t *testing.T) {
	f := &fakeInflux{healthy: true}
	srv := httptest.NewServer(f)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.BatchSize = -1
	cfg.FlushInterval = 0

	c, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer c.Close() //nolint:errcheck // test cleanup

	if !c.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
}

func TestHealthCheck(t *testing.T) {
	c := connect(t, &fakeInflux{healthy: true})

	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestObserveFetchWritesPoint(t *testing.T) {
	f := &fakeInflux{healthy: true}
	c := connect(t, f)

	c.ObserveFetch("lighting", plugin.ModeReal, 250*time.Millisecond, nil)
	c.ObserveFetch("heating", plugin.ModeDemo, time.Second, errors.New("timeout"))
	c.Flush()

	waitFor(t, func() bool { return len(f.written()) >= 2 })

	lines := strings.Join(f.written(), "\n")
	for _, want := range []string{
		"plugin_fetch,mode=real,plugin=lighting duration_ms=250,ok=true",
		"plugin_fetch,mode=demo,plugin=heating duration_ms=1000,ok=false",
	} {
		if !strings.Contains(lines, want) {
			t.Errorf("written lines missing %q:\n%s", want, lines)
		}
	}
}

func TestPublishWritesDeltaPoint(t *testing.T) {
	f := &fakeInflux{healthy: true}
	c := connect(t, f)

	ev := push.Event{
		Plugin: "media",
		Mode:   "real",
		Delta:  plugin.Delta{"players": []any{}, "connected": true},
		At:     time.Unix(1700000000, 0),
	}
	if err := c.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	c.Flush()

	waitFor(t, func() bool { return len(f.written()) >= 1 })

	line := f.written()[0]
	if !strings.HasPrefix(line, "home_delta,mode=real,plugin=media keys=2i") {
		t.Errorf("line = %q", line)
	}
}

func TestClosedClientDropsWrites(t *testing.T) {
	f := &fakeInflux{healthy: true}
	c := connect(t, f)

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	c.ObserveFetch("lighting", plugin.ModeReal, time.Millisecond, nil)
	if err := c.Publish(context.Background(), push.Event{Plugin: "lighting"}); err != nil {
		t.Errorf("Publish() after Close error = %v", err)
	}
	c.Flush()

	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() after Close error = %v, want ErrNotConnected", err)
	}
	if n := len(f.written()); n != 0 {
		t.Errorf("%d lines written after Close, want 0", n)
	}
}

func TestClose_Nil(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v", err)
	}
}
