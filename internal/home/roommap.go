package home

import (
	"context"
	"database/sql"
	"fmt"
)

// Target is one backend room a bare room id maps to.
type Target struct {
	Plugin  string `json:"plugin" yaml:"plugin"`
	LocalID string `json:"localId" yaml:"local_id"`
}

// RoomMapper resolves a bare room id to the backend rooms it stands for.
// An unmapped id yields no targets and no error.
type RoomMapper interface {
	Lookup(ctx context.Context, roomID string) ([]Target, error)
}

// StaticRoomMapper holds mappings from configuration.
type StaticRoomMapper map[string][]Target

// Lookup returns the configured targets for roomID.
func (m StaticRoomMapper) Lookup(_ context.Context, roomID string) ([]Target, error) {
	out := make([]Target, len(m[roomID]))
	copy(out, m[roomID])
	return out, nil
}

// SQLiteRoomMapper stores mappings in the room_mappings table.
type SQLiteRoomMapper struct {
	db *sql.DB
}

// NewSQLiteRoomMapper creates a mapper over db.
func NewSQLiteRoomMapper(db *sql.DB) *SQLiteRoomMapper {
	return &SQLiteRoomMapper{db: db}
}

// Lookup returns the stored targets for roomID ordered by plugin.
func (m *SQLiteRoomMapper) Lookup(ctx context.Context, roomID string) ([]Target, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT plugin, local_id FROM room_mappings WHERE room_id = ? ORDER BY plugin, local_id`, roomID)
	if err != nil {
		return nil, fmt.Errorf("querying room mappings: %w", err)
	}
	defer rows.Close()

	var out []Target
	for rows.Next() {
		var t Target
		if err := rows.Scan(&t.Plugin, &t.LocalID); err != nil {
			return nil, fmt.Errorf("scanning room mapping: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating room mappings: %w", err)
	}
	return out, nil
}

// Put adds targets to roomID. Existing pairs are left alone.
func (m *SQLiteRoomMapper) Put(ctx context.Context, roomID string, targets ...Target) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is no-op after commit

	for _, t := range targets {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO room_mappings (room_id, plugin, local_id) VALUES (?, ?, ?)`,
			roomID, t.Plugin, t.LocalID); err != nil {
			return fmt.Errorf("inserting room mapping: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing room mappings: %w", err)
	}
	return nil
}

// Delete removes every target of roomID.
func (m *SQLiteRoomMapper) Delete(ctx context.Context, roomID string) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM room_mappings WHERE room_id = ?`, roomID); err != nil {
		return fmt.Errorf("deleting room mappings: %w", err)
	}
	return nil
}

// RoomMappers consults each mapper in order and returns the union of their
// targets without duplicates.
type RoomMappers []RoomMapper

// Lookup merges the targets of every mapper.
func (ms RoomMappers) Lookup(ctx context.Context, roomID string) ([]Target, error) {
	seen := make(map[Target]struct{})
	var out []Target
	for _, m := range ms {
		targets, err := m.Lookup(ctx, roomID)
		if err != nil {
			return nil, err
		}
		for _, t := range targets {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out, nil
}
