package store

import (
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	if version == 0 {
		t.Fatal("expected a non-zero schema version after migrations")
	}
	if dirty {
		t.Fatal("expected a clean schema after migrations")
	}

	return db
}

func TestSQLiteStore_SetGetDelete(t *testing.T) {
	s := NewSQLiteStore(newTestDB(t))

	if _, found, err := s.Get("proveit_history"); err != nil || found {
		t.Fatalf("expected missing key, got found=%v err=%v", found, err)
	}

	if err := s.Set("proveit_history", "first"); err != nil {
		t.Fatalf("failed to set record: %v", err)
	}
	if err := s.Set("proveit_history", "second"); err != nil {
		t.Fatalf("failed to overwrite record: %v", err)
	}

	value, found, err := s.Get("proveit_history")
	if err != nil {
		t.Fatalf("failed to get record: %v", err)
	}
	if !found || value != "second" {
		t.Errorf("expected overwritten value %q, got %q (found=%v)", "second", value, found)
	}

	if err := s.Delete("proveit_history"); err != nil {
		t.Fatalf("failed to delete record: %v", err)
	}
	if _, found, _ := s.Get("proveit_history"); found {
		t.Error("expected key to be gone after delete")
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := newTestDB(t)

	// A second run finds no pending migrations and reports the same version.
	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("second migration run failed: %v", err)
	}
	if version == 0 || dirty {
		t.Errorf("expected clean non-zero version, got version=%d dirty=%v", version, dirty)
	}
}
