// Package postgres registers the Postgres migration set, including the
// row-level security policies. Import it for side effects in production
// deployments.
package postgres

import (
	"io/fs"

	rooms "github.com/goliatone/go-rooms"
	"github.com/goliatone/go-rooms/migrations"
)

func init() {
	coreFS, err := fs.Sub(rooms.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return
	}
	migrations.Register(coreFS)
}
