// Package sqlite registers the SQLite migration variants. Import it for side
// effects in embedded or test deployments instead of the Postgres set.
package sqlite

import (
	"io/fs"

	rooms "github.com/goliatone/go-rooms"
	"github.com/goliatone/go-rooms/migrations"
)

func init() {
	sqliteFS, err := fs.Sub(rooms.GetSQLiteMigrationsFS(), "data/sql/migrations/sqlite")
	if err != nil {
		return
	}
	migrations.Register(sqliteFS)
}
