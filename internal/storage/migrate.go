package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrateUp applies every pending up migration in name order and records it
// in schema_migrations, so running it twice is harmless.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (name TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	entries, err := migrationNames(".up.sql")
	if err != nil {
		return err
	}
	for _, name := range entries {
		version := strings.TrimSuffix(path.Base(name), ".up.sql")
		var applied int
		if err := db.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, version).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", version, err)
		}
		if applied > 0 {
			continue
		}
		if err := execFile(db, name); err != nil {
			return err
		}
		if _, err := db.Exec(`INSERT INTO schema_migrations (name) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", version, err)
		}
	}
	return nil
}

// MigrateDown reverts every migration in reverse order.
func MigrateDown(db *sql.DB) error {
	entries, err := migrationNames(".down.sql")
	if err != nil {
		return err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(entries)))
	for _, name := range entries {
		if err := execFile(db, name); err != nil {
			return err
		}
	}
	if _, err := db.Exec(`DROP TABLE IF EXISTS schema_migrations`); err != nil {
		return fmt.Errorf("drop schema_migrations: %w", err)
	}
	return nil
}

func migrationNames(suffix string) ([]string, error) {
	entries, err := fs.Glob(migrationFiles, "migrations/*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(entries)
	return entries, nil
}

func execFile(db *sql.DB, name string) error {
	sqlBytes, err := migrationFiles.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}
	if _, err := db.Exec(string(sqlBytes)); err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	return nil
}
