package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/gray-logic-hub/internal/push"
)

// Publisher is the publishing half of Client.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// DeltaPublisher forwards change events to the broker, one topic per plugin.
type DeltaPublisher struct {
	pub Publisher
	qos byte
}

// NewDeltaPublisher creates a DeltaPublisher publishing with qos.
func NewDeltaPublisher(pub Publisher, qos byte) *DeltaPublisher {
	return &DeltaPublisher{pub: pub, qos: qos}
}

// Publish encodes ev as JSON and publishes it on the plugin's delta topic.
func (d *DeltaPublisher) Publish(_ context.Context, ev push.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding delta event: %w", err)
	}
	return d.pub.Publish(Topics{}.Delta(ev.Plugin, ev.Demo()), payload, d.qos, false)
}
