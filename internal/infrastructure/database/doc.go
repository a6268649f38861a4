// Package database provides the hub's SQLite database.
//
// The database holds what must survive a restart: identifier mappings
// (when the sqlite slug backend is selected), cross-backend room mappings
// and plugin credentials.
//
// This package manages:
//   - Connection setup with WAL mode and busy timeout
//   - Schema migrations registered by the migrations package
//   - File permissions (0600), since the file carries credentials
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if _, err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migrations are additive: new columns must be NULLABLE or have DEFAULT
// values, and each migration ships with a .down.sql file where possible.
package database
