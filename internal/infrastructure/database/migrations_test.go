package database

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
)

// useMigrations registers fsys for the duration of the test.
func useMigrations(t *testing.T, fsys fstest.MapFS) {
	t.Helper()
	orig := source
	Register(fsys, "sql")
	t.Cleanup(func() { source = orig })
}

var hubMigrations = fstest.MapFS{
	"sql/20260301_120000_slug_mappings.up.sql": {Data: []byte(
		`CREATE TABLE slug_mappings (namespace TEXT, vendor_id TEXT, slug TEXT)`)},
	"sql/20260301_120000_slug_mappings.down.sql": {Data: []byte(`DROP TABLE slug_mappings`)},
	"sql/20260301_120100_room_mappings.up.sql": {Data: []byte(
		`CREATE TABLE room_mappings (room_id TEXT, plugin TEXT, local_id TEXT)`)},
	"sql/README.md": {Data: []byte("ignored")},
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&count)
	if err != nil {
		t.Fatalf("sqlite_master query error = %v", err)
	}
	return count == 1
}

func TestMigrate(t *testing.T) {
	useMigrations(t, hubMigrations)
	db := openTestDB(t)
	ctx := context.Background()

	n, err := db.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Migrate() applied %d, want 2", n)
	}
	for _, table := range []string{"slug_mappings", "room_mappings"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s not created", table)
		}
	}

	n, err = db.Migrate(ctx)
	if err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	if n != 0 {
		t.Errorf("second Migrate() applied %d, want 0", n)
	}

	version, err := db.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != "20260301_120100" {
		t.Errorf("SchemaVersion() = %q, want 20260301_120100", version)
	}
}

func TestMigrateStopsAtFailure(t *testing.T) {
	useMigrations(t, fstest.MapFS{
		"sql/20260301_120000_first.up.sql":  {Data: []byte(`CREATE TABLE first (id INTEGER)`)},
		"sql/20260301_120100_broken.up.sql": {Data: []byte(`CREATE TABLE nope (`)},
		"sql/20260301_120200_third.up.sql":  {Data: []byte(`CREATE TABLE third (id INTEGER)`)},
	})
	db := openTestDB(t)

	n, err := db.Migrate(context.Background())
	if err == nil {
		t.Fatal("Migrate() expected error for broken migration")
	}
	if n != 1 {
		t.Errorf("Migrate() applied %d before failing, want 1", n)
	}
	if !tableExists(t, db, "first") || tableExists(t, db, "third") {
		t.Error("expected only the migration before the failure to be committed")
	}
}

func TestMigrateDown(t *testing.T) {
	useMigrations(t, fstest.MapFS{
		"sql/20260301_120000_slug_mappings.up.sql":   hubMigrations["sql/20260301_120000_slug_mappings.up.sql"],
		"sql/20260301_120000_slug_mappings.down.sql": hubMigrations["sql/20260301_120000_slug_mappings.down.sql"],
	})
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.MigrateDown(ctx); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	if tableExists(t, db, "slug_mappings") {
		t.Error("table slug_mappings should have been dropped")
	}

	applied, pending, err := db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 0 || len(pending) != 1 {
		t.Errorf("applied=%d pending=%d, want 0 and 1", len(applied), len(pending))
	}

	if err := db.MigrateDown(ctx); err != nil {
		t.Errorf("MigrateDown() on empty schema error = %v", err)
	}
}

func TestMigrateDownWithoutDownSQL(t *testing.T) {
	useMigrations(t, hubMigrations)
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.MigrateDown(ctx); !errors.Is(err, ErrNoDownSQL) {
		t.Errorf("MigrateDown() error = %v, want ErrNoDownSQL", err)
	}
}

func TestMigrateNoMigrations(t *testing.T) {
	orig := source
	source.fsys = nil
	t.Cleanup(func() { source = orig })

	db := openTestDB(t)
	n, err := db.Migrate(context.Background())
	if err != nil {
		t.Fatalf("Migrate() with no migrations error = %v", err)
	}
	if n != 0 {
		t.Errorf("Migrate() applied %d, want 0", n)
	}

	version, err := db.SchemaVersion(context.Background())
	if err != nil || version != "" {
		t.Errorf("SchemaVersion() = %q, %v; want empty", version, err)
	}
}

func TestMigrationStatus(t *testing.T) {
	useMigrations(t, hubMigrations)
	db := openTestDB(t)

	applied, pending, err := db.MigrationStatus(context.Background())
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("expected 0 applied, got %d", len(applied))
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if pending[0].Name != "slug_mappings" || pending[0].DownSQL == "" {
		t.Errorf("pending[0] = %+v", pending[0])
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		wantVersion string
		wantIsUp    bool
		wantOk      bool
	}{
		{"valid up migration", "20260301_120000_slug_mappings.up.sql", "20260301_120000", true, true},
		{"valid down migration", "20260301_120000_slug_mappings.down.sql", "20260301_120000", false, true},
		{"not sql file", "readme.txt", "", false, false},
		{"missing direction", "20260301_120000_slug_mappings.sql", "", false, false},
		{"invalid format", "invalid.up.sql", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, isUp, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if ok && (version != tt.wantVersion || isUp != tt.wantIsUp) {
				t.Errorf("got (%q, %v), want (%q, %v)", version, isUp, tt.wantVersion, tt.wantIsUp)
			}
		})
	}
}

func TestExtractMigrationName(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"20260301_120000_slug_mappings.up.sql", "slug_mappings"},
		{"20260301_120200_plugin_credentials.down.sql", "plugin_credentials"},
		{"nodescription", "nodescription"},
	}

	for _, tt := range tests {
		if got := extractMigrationName(tt.filename); got != tt.want {
			t.Errorf("extractMigrationName(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
