package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func TestMigrateRoundTripCompatibility(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-roundtrip.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Fatalf("repeated migrate up failed: %v", err)
	}

	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	store, err := NewLocalStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := store.Put(context.Background(), KeyLastCheck, "2026-02-09"); err != nil {
		t.Fatalf("put after roundtrip failed: %v", err)
	}

	got, ok, err := store.Get(context.Background(), KeyLastCheck)
	if err != nil {
		t.Fatalf("get after roundtrip failed: %v", err)
	}
	if !ok || got != "2026-02-09" {
		t.Fatalf("unexpected value after roundtrip: %q (found=%v)", got, ok)
	}
}
