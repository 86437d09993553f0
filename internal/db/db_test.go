package db

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "framecut.db")
	database, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return database, dbPath
}

func TestNew_CreatesTables(t *testing.T) {
	database, _ := openTestDB(t)
	defer database.Close()

	tables := []string{"_migrations", "config", "projects", "elements", "channels", "keyframes"}
	for _, table := range tables {
		var name string
		err := database.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestNew_Pragmas(t *testing.T) {
	database, _ := openTestDB(t)
	defer database.Close()

	var journalMode string
	if err := database.Conn().QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("PRAGMA journal_mode error = %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}

	var fk int
	if err := database.Conn().QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("PRAGMA foreign_keys error = %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestNew_MigrationsIdempotent(t *testing.T) {
	db1, dbPath := openTestDB(t)
	db1.Close()

	db2, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("second New() error = %v", err)
	}
	defer db2.Close()

	var count int
	if err := db2.Conn().QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations error = %v", err)
	}
	if count != 2 {
		t.Errorf("migration count = %d, want 2", count)
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	database, _ := openTestDB(t)
	defer database.Close()
	conn := database.Conn()

	stmts := []string{
		`INSERT INTO projects (id, name, created_at, updated_at) VALUES ('p', 'demo', datetime('now'), datetime('now'))`,
		`INSERT INTO elements (project_id, id, position, filetype, start_time, duration) VALUES ('p', 'e', 0, 'image', 0, 1000)`,
		`INSERT INTO channels (project_id, element_id, channel, active) VALUES ('p', 'e', 'opacity', 1)`,
		`INSERT INTO keyframes (project_id, element_id, channel, track, t, v) VALUES ('p', 'e', 'opacity', 0, 0, 1)`,
		`DELETE FROM projects WHERE id = 'p'`,
	}
	for _, s := range stmts {
		if _, err := conn.Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}

	for _, table := range []string{"elements", "channels", "keyframes"} {
		var n int
		if err := conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s has %d rows after project delete, want 0", table, n)
		}
	}
}
