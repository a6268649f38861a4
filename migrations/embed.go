// Package migrations embeds the hub's SQL migration files into the binary.
//
// Importing it for side effects registers the files with the database
// package:
//
//	import _ "github.com/nerrad567/gray-logic-hub/migrations"
package migrations

import (
	"embed"

	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.Register(migrationsFS, ".")
}
