package media

import (
	"context"
	"fmt"

	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
)

// command is a parsed playback patch. Nil fields are left alone.
type command struct {
	play   *bool
	volume *int
}

// UpdateDevice controls the group the speaker belongs to. Playback and
// volume are group-wide on this service.
func (p *Plugin) UpdateDevice(ctx context.Context, vendorID string, state device.State) (plugin.Result, error) {
	cmd, err := toCommand(state)
	if err != nil {
		return plugin.Result{}, err
	}
	b, hh, err := p.session()
	if err != nil {
		return plugin.Result{}, err
	}
	groups, err := b.Groups(ctx, hh)
	if err != nil {
		return plugin.Result{}, fmt.Errorf("listing groups: %w", err)
	}
	for _, g := range groups.Groups {
		for _, pid := range g.PlayerIDs {
			if pid == vendorID {
				if err := p.apply(ctx, g.ID, cmd); err != nil {
					return plugin.Result{}, err
				}
				return plugin.Result{Success: true, Updated: 1}, nil
			}
		}
	}
	return plugin.Result{}, fmt.Errorf("%w: speaker %s is not in a group", plugin.ErrNotFound, vendorID)
}

// UpdateRoomDevices controls a speaker group.
func (p *Plugin) UpdateRoomDevices(ctx context.Context, vendorID string, state device.State) (plugin.Result, error) {
	cmd, err := toCommand(state)
	if err != nil {
		return plugin.Result{}, err
	}
	b, hh, err := p.session()
	if err != nil {
		return plugin.Result{}, err
	}
	groups, err := b.Groups(ctx, hh)
	if err != nil {
		return plugin.Result{}, fmt.Errorf("listing groups: %w", err)
	}
	for _, g := range groups.Groups {
		if g.ID == vendorID {
			if err := p.apply(ctx, g.ID, cmd); err != nil {
				return plugin.Result{}, err
			}
			return plugin.Result{Success: true, Updated: len(g.PlayerIDs)}, nil
		}
	}
	return plugin.Result{}, fmt.Errorf("%w: group %s", plugin.ErrNotFound, vendorID)
}

func (p *Plugin) apply(ctx context.Context, groupID string, cmd command) error {
	b, _, err := p.session()
	if err != nil {
		return err
	}
	if cmd.volume != nil {
		if err := b.SetGroupVolume(ctx, groupID, *cmd.volume); err != nil {
			return fmt.Errorf("setting volume on %s: %w", groupID, err)
		}
	}
	if cmd.play != nil {
		op := b.Pause
		if *cmd.play {
			op = b.Play
		}
		if err := op(ctx, groupID); err != nil {
			return fmt.Errorf("changing playback on %s: %w", groupID, err)
		}
	}
	p.logger.Debug("media group updated", "group", groupID)
	return nil
}

// toCommand accepts isPlaying (or isOn), playbackState ("playing" or
// "paused") and volume (0-100).
func toCommand(state device.State) (command, error) {
	var cmd command

	for _, key := range []string{"isPlaying", "isOn"} {
		v, ok := state[key]
		if !ok {
			continue
		}
		b, ok := v.(bool)
		if !ok {
			return cmd, fmt.Errorf("%w: %s must be a boolean", device.ErrInvalidState, key)
		}
		cmd.play = &b
	}

	if v, ok := state["playbackState"]; ok {
		var play bool
		switch v {
		case "playing":
			play = true
		case "paused":
		default:
			return cmd, fmt.Errorf("%w: playbackState must be playing or paused", device.ErrInvalidState)
		}
		cmd.play = &play
	}

	if _, ok := state["volume"]; ok {
		v := state.Float("volume", -1)
		if v < 0 || v > 100 {
			return cmd, fmt.Errorf("%w: volume must be between 0 and 100", device.ErrInvalidState)
		}
		vol := int(v)
		cmd.volume = &vol
	}

	if cmd.play == nil && cmd.volume == nil {
		return cmd, fmt.Errorf("%w: no supported state keys", device.ErrInvalidState)
	}
	return cmd, nil
}
