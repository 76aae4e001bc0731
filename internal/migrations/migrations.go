// Package migrations holds the Postgres schema and applies it with sql-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed sql/*.sql
var files embed.FS

const tableName = "baymax_migrations"

// Source returns the embedded migration set.
func Source() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: files,
		Root:       "sql",
	}
}

// Up applies all pending migrations and returns how many ran.
func Up(db *sql.DB) (int, error) {
	ms := migrate.MigrationSet{TableName: tableName}
	n, err := ms.Exec(db, "postgres", Source(), migrate.Up)
	if err != nil {
		return n, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return n, nil
}

// Down rolls back at most max migrations (0 = all).
func Down(db *sql.DB, max int) (int, error) {
	ms := migrate.MigrationSet{TableName: tableName}
	n, err := ms.ExecMax(db, "postgres", Source(), migrate.Down, max)
	if err != nil {
		return n, fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return n, nil
}
