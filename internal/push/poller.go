package push

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-hub/internal/plugin"
)

// DefaultInterval is used when the configured poll interval is not positive.
const DefaultInterval = 10 * time.Second

// EventType is the type of every delta event. Demo events carry the
// "demo." prefix so clients can tell the universes apart.
const EventType = "home.delta"

// Logger defines the logging interface used by the Poller.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Event is one observed change of one plugin.
type Event struct {
	Type   string       `json:"type"`
	Plugin string       `json:"plugin"`
	Mode   string       `json:"mode"`
	Delta  plugin.Delta `json:"delta"`
	At     time.Time    `json:"at"`
}

// Demo reports whether the event comes from the demo universe.
func (e Event) Demo() bool {
	return e.Mode == plugin.ModeDemo.String()
}

// Publisher delivers events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, ev Event) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Poller periodically snapshots plugins and publishes their deltas.
type Poller struct {
	registry   *plugin.Registry
	interval   time.Duration
	publishers []Publisher
	logger     Logger
	now        func() time.Time

	mu   sync.Mutex
	last map[snapshotKey]*plugin.Snapshot
}

type snapshotKey struct {
	mode   plugin.Mode
	plugin string
}

// NewPoller creates a poller over registry.
func NewPoller(registry *plugin.Registry, interval time.Duration, publishers ...Publisher) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		registry:   registry,
		interval:   interval,
		publishers: publishers,
		logger:     noopLogger{},
		now:        time.Now,
		last:       make(map[snapshotKey]*plugin.Snapshot),
	}
}

// SetLogger sets the logger for the poller.
func (p *Poller) SetLogger(logger Logger) {
	p.logger = logger
}

// AddPublisher registers another publisher. Call before Run.
func (p *Poller) AddPublisher(pub Publisher) {
	p.publishers = append(p.publishers, pub)
}

// Run polls until ctx is cancelled. The first poll happens immediately.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("change poller started", "interval", p.interval.String())
	p.Poll(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("change poller stopped")
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll runs one detection round over both universes and returns the
// events it published.
func (p *Poller) Poll(ctx context.Context) []Event {
	var events []Event
	for _, mode := range []plugin.Mode{plugin.ModeReal, plugin.ModeDemo} {
		events = append(events, p.pollMode(plugin.WithMode(ctx, mode), mode)...)
	}
	return events
}

func (p *Poller) pollMode(ctx context.Context, mode plugin.Mode) []Event {
	var events []Event
	for _, pl := range p.registry.Active(ctx) {
		if !pl.Capabilities().Has(plugin.CapChangeDetection) {
			continue
		}
		delta, ok := p.detect(ctx, mode, pl)
		if !ok {
			continue
		}

		ev := Event{
			Type:   EventTypeFor(mode),
			Plugin: pl.ID(),
			Mode:   mode.String(),
			Delta:  delta,
			At:     p.now().UTC(),
		}
		p.publish(ctx, ev)
		events = append(events, ev)
	}
	return events
}

// detect snapshots pl and diffs it against the stored baseline.
func (p *Poller) detect(ctx context.Context, mode plugin.Mode, pl plugin.Plugin) (plugin.Delta, bool) {
	curr, err := pl.Status(ctx)
	if err != nil {
		p.logger.Warn("status snapshot failed", "plugin", pl.ID(), "mode", mode.String(), "error", err)
		return nil, false
	}
	if curr == nil {
		return nil, false
	}

	key := snapshotKey{mode: mode, plugin: pl.ID()}
	p.mu.Lock()
	prev, seen := p.last[key]
	p.last[key] = curr
	p.mu.Unlock()

	if !seen {
		p.logger.Debug("baseline snapshot taken", "plugin", pl.ID(), "mode", mode.String())
		return nil, false
	}

	delta := plugin.DetectChanges(pl, prev, curr)
	if delta == nil {
		return nil, false
	}
	return delta, true
}

func (p *Poller) publish(ctx context.Context, ev Event) {
	for _, pub := range p.publishers {
		if err := pub.Publish(ctx, ev); err != nil {
			p.logger.Warn("publishing delta failed", "plugin", ev.Plugin, "mode", ev.Mode, "error", err)
		}
	}
}

// EventTypeFor returns the event type of deltas in mode.
func EventTypeFor(mode plugin.Mode) string {
	if mode == plugin.ModeDemo {
		return "demo." + EventType
	}
	return EventType
}
