package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"sort"

	"github.com/jmoiron/sqlx"
)

// Schema files are written to run unchanged on SQLite and PostgreSQL and are
// idempotent, so every file runs on every start.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded schema files in name order.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := migrationsFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute %s: %w", name, err)
		}
		log.Printf("Applied migration: %s", name)
	}
	return nil
}
