package media

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/nerrad567/gray-logic-hub/internal/backend/sonos"
	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/home"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
)

// household is one fetch of the groups, players and per-group status.
type household struct {
	groups   sonos.Groups
	statuses map[string]*sonos.GroupStatus // by group id
	byPlayer map[string]*sonos.GroupStatus // by player id
}

// fetch reads groups, then metadata and volume per group. A group whose
// metadata or volume cannot be read is shown without it.
func (p *Plugin) fetch(ctx context.Context) (*household, error) {
	b, hh, err := p.session()
	if err != nil {
		return nil, err
	}
	groups, err := b.Groups(ctx, hh)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}

	h := &household{
		groups:   groups,
		statuses: make(map[string]*sonos.GroupStatus, len(groups.Groups)),
		byPlayer: make(map[string]*sonos.GroupStatus, len(groups.Players)),
	}
	for _, g := range groups.Groups {
		st := &sonos.GroupStatus{Group: g}
		if md, err := b.Metadata(ctx, g.ID); err == nil {
			st.Metadata = md
		} else {
			p.logger.Warn("group metadata unavailable", "group", g.ID, "error", err)
		}
		if vol, err := b.GroupVolume(ctx, g.ID); err == nil {
			st.Volume = vol
		} else {
			p.logger.Warn("group volume unavailable", "group", g.ID, "error", err)
		}
		h.statuses[g.ID] = st
		for _, pid := range g.PlayerIDs {
			h.byPlayer[pid] = st
		}
	}
	return h, nil
}

// Devices returns every speaker in the household.
func (p *Plugin) Devices(ctx context.Context) ([]device.Device, error) {
	h, err := p.fetch(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]device.Device, 0, len(h.groups.Players))
	for _, pl := range h.groups.Players {
		out = append(out, p.norm.SonosPlayer(ctx, pl, h.byPlayer[pl.ID]))
	}
	return out, nil
}

// Rooms returns one room per speaker group.
func (p *Plugin) Rooms(ctx context.Context) ([]device.Room, error) {
	h, err := p.fetch(ctx)
	if err != nil {
		return nil, err
	}
	players := make(map[string]sonos.Player, len(h.groups.Players))
	for _, pl := range h.groups.Players {
		players[pl.ID] = pl
	}

	out := make([]device.Room, 0, len(h.groups.Groups))
	for _, g := range h.groups.Groups {
		st := h.statuses[g.ID]
		members := make([]device.Device, 0, len(g.PlayerIDs))
		for _, pid := range g.PlayerIDs {
			pl, ok := players[pid]
			if !ok {
				continue
			}
			members = append(members, p.norm.SonosPlayer(ctx, pl, st))
		}
		out = append(out, p.norm.SonosGroup(ctx, *st, members))
	}
	return out, nil
}

// Status returns a snapshot of speakers for change detection. It also
// persists a token the client refreshed since the last call.
func (p *Plugin) Status(ctx context.Context) (*plugin.Snapshot, error) {
	snap := &plugin.Snapshot{
		Plugin:    p.id,
		Connected: p.IsConnected(ctx),
		TakenAt:   time.Now().UTC(),
	}
	if !snap.Connected {
		return snap, nil
	}
	devices, err := p.Devices(ctx)
	if err != nil {
		return nil, err
	}
	snap.Devices = devices
	p.syncToken(ctx)
	return home.FlatSnapshot(snap), nil
}

type tokenSource interface {
	Token() (*oauth2.Token, error)
}

func (p *Plugin) syncToken(ctx context.Context) {
	if p.demo {
		return
	}
	b, hh, err := p.session()
	if err != nil {
		return
	}
	ts, ok := b.(tokenSource)
	if !ok {
		return
	}
	tok, err := ts.Token()
	if err != nil {
		p.logger.Warn("media token unavailable", "error", err)
		return
	}

	p.mu.Lock()
	unchanged := tok.AccessToken == p.lastToken
	p.lastToken = tok.AccessToken
	p.mu.Unlock()
	if unchanged {
		return
	}

	data := tokenData(tok)
	data[CredHousehold] = hh
	if err := p.creds.Put(ctx, p.id, data); err != nil {
		p.logger.Error("storing refreshed media token failed", "error", err)
	}
}
