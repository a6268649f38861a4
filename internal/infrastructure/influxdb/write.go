package influxdb

import (
	"context"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-hub/internal/plugin"
	"github.com/nerrad567/gray-logic-hub/internal/push"
)

// Measurement names.
const (
	MeasurementFetch = "plugin_fetch"
	MeasurementDelta = "home_delta"
)

// ObserveFetch records one plugin fetch of the aggregation service.
// The write is non-blocking; points are batched.
func (c *Client) ObserveFetch(pluginID string, mode plugin.Mode, took time.Duration, err error) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(fetchPoint(pluginID, mode, took, err, time.Now()))
}

// Publish records that a plugin produced a change event. It never fails.
func (c *Client) Publish(_ context.Context, ev push.Event) error {
	if !c.IsConnected() {
		return nil
	}
	c.writeAPI.WritePoint(deltaPoint(ev))
	return nil
}

func fetchPoint(pluginID string, mode plugin.Mode, took time.Duration, err error, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementFetch,
		map[string]string{
			"plugin": pluginID,
			"mode":   mode.String(),
		},
		map[string]any{
			"duration_ms": float64(took) / float64(time.Millisecond),
			"ok":          err == nil,
		},
		at,
	)
}

func deltaPoint(ev push.Event) *write.Point {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	return write.NewPoint(
		MeasurementDelta,
		map[string]string{
			"plugin": ev.Plugin,
			"mode":   ev.Mode,
		},
		map[string]any{
			"keys": len(ev.Delta),
		},
		at,
	)
}
