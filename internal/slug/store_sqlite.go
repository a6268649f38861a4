package slug

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteStore persists mappings in the slug_mappings table.
//
// Rows are insert-only: an existing (namespace, vendor_id) row is never
// rewritten, which keeps assigned slugs stable even if two processes share
// the database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store on db. The schema comes from migrations.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load reads every mapping.
func (s *SQLiteStore) Load(ctx context.Context) (Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT namespace, vendor_id, slug FROM slug_mappings ORDER BY namespace, created_at, vendor_id`)
	if err != nil {
		return nil, fmt.Errorf("querying slug mappings: %w", err)
	}
	defer rows.Close()

	doc := make(Document)
	for rows.Next() {
		var ns, id, slug string
		if err := rows.Scan(&ns, &id, &slug); err != nil {
			return nil, fmt.Errorf("scanning slug mapping: %w", err)
		}
		if doc[ns] == nil {
			doc[ns] = make(map[string]string)
		}
		doc[ns][id] = slug
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating slug mappings: %w", err)
	}
	return doc, nil
}

// Save inserts any mappings not yet stored for namespace.
func (s *SQLiteStore) Save(ctx context.Context, namespace string, mappings map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO slug_mappings (namespace, vendor_id, slug) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for id, slug := range mappings {
		if _, err := stmt.ExecContext(ctx, namespace, id, slug); err != nil {
			return fmt.Errorf("inserting slug mapping %s/%s: %w", namespace, slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing slug mappings: %w", err)
	}
	return nil
}
