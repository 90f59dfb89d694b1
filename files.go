package rooms

import "embed"

//go:embed data/sql/migrations/*.sql
var migrationsFS embed.FS

//go:embed data/sql/migrations/sqlite/*.sql
var sqliteMigrationsFS embed.FS

// GetMigrationsFS exposes the Postgres migration files so host applications
// can register them with go-persistence-bun (or another migration runner).
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// GetSQLiteMigrationsFS exposes the SQLite variants used for embedded and
// test deployments.
func GetSQLiteMigrationsFS() embed.FS {
	return sqliteMigrationsFS
}
