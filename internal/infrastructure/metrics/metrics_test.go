package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nerrad567/gray-logic-hub/internal/plugin"
	"github.com/nerrad567/gray-logic-hub/internal/push"
)

type staticCounts map[string]int

func (s staticCounts) Count() map[string]int { return s }

func TestObserveFetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveFetch("lighting", plugin.ModeReal, 120*time.Millisecond, nil)
	m.ObserveFetch("heating", plugin.ModeReal, time.Second, errors.New("timeout"))
	m.ObserveFetch("heating", plugin.ModeReal, time.Second, errors.New("timeout"))

	if got := testutil.ToFloat64(m.fetchFailures.WithLabelValues("heating", "real")); got != 2 {
		t.Errorf("heating failures = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.fetchFailures.WithLabelValues("lighting", "real")); got != 0 {
		t.Errorf("lighting failures = %v, want 0", got)
	}
	if got := testutil.CollectAndCount(m.fetchDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestPublishCountsEvents(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	ev := push.Event{Plugin: "media", Mode: "demo"}
	if err := m.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if got := testutil.ToFloat64(m.deltaEvents.WithLabelValues("media", "demo")); got != 1 {
		t.Errorf("delta events = %v, want 1", got)
	}
}

func TestSlugCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := RegisterSlugs(reg, plugin.ModeReal, staticCounts{"lighting": 4, "media": 2}); err != nil {
		t.Fatalf("RegisterSlugs() error = %v", err)
	}
	if err := RegisterSlugs(reg, plugin.ModeDemo, staticCounts{"lighting": 7}); err != nil {
		t.Fatalf("RegisterSlugs(demo) error = %v", err)
	}
	if err := RegisterSlugs(reg, plugin.ModeDemo, staticCounts{}); err == nil {
		t.Error("registering a mode twice succeeded")
	}

	expected := `
# HELP graylogic_hub_slug_mappings Identifier mappings held per namespace.
# TYPE graylogic_hub_slug_mappings gauge
graylogic_hub_slug_mappings{mode="demo",namespace="lighting"} 7
graylogic_hub_slug_mappings{mode="real",namespace="lighting"} 4
graylogic_hub_slug_mappings{mode="real",namespace="media"} 2
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "graylogic_hub_slug_mappings"); err != nil {
		t.Error(err)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := NewRegistry()
	m := NewMetrics(reg)
	m.ObserveFetch("lighting", plugin.ModeReal, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"graylogic_hub_plugin_fetch_duration_seconds", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}
