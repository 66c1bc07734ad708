package db

import (
	"testing"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Verify tables exist by selecting from each one.
	tables := []string{"documents", "chunks", "webhook_subscriptions"}

	for _, table := range tables {
		var count int
		err := d.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Running migrate again should not fail.
	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}
}

func TestForeignKeyCascade(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	if _, err := d.Exec(`INSERT INTO documents (id, org_id, title) VALUES ('d1', 'org', 't')`); err != nil {
		t.Fatalf("insert document: %v", err)
	}
	if _, err := d.Exec(`INSERT INTO chunks (id, document_id, org_id, content) VALUES ('c1', 'd1', 'org', 'x')`); err != nil {
		t.Fatalf("insert chunk: %v", err)
	}
	if _, err := d.Exec(`DELETE FROM documents WHERE id = 'd1'`); err != nil {
		t.Fatalf("delete document: %v", err)
	}

	var count int
	if err := d.QueryRow(`SELECT COUNT(*) FROM chunks`).Scan(&count); err != nil {
		t.Fatalf("count chunks: %v", err)
	}
	if count != 0 {
		t.Errorf("expected cascade delete to remove chunks, found %d", count)
	}
}

func TestOpenMemoryEnablesForeignKeys(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// modernc's driver only honors _pragma=... parameters; the mattn-style
	// _foreign_keys key is silently ignored.
	var enabled int
	if err := d.QueryRow(`PRAGMA foreign_keys`).Scan(&enabled); err != nil {
		t.Fatalf("query foreign_keys pragma: %v", err)
	}
	if enabled != 1 {
		t.Errorf("foreign_keys = %d, want 1", enabled)
	}
}

func TestOpenEnablesForeignKeys(t *testing.T) {
	d, err := Open(t.TempDir() + "/fk.db")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer d.Close()

	var enabled int
	if err := d.QueryRow(`PRAGMA foreign_keys`).Scan(&enabled); err != nil {
		t.Fatalf("query foreign_keys pragma: %v", err)
	}
	if enabled != 1 {
		t.Errorf("foreign_keys = %d, want 1", enabled)
	}

	var mode string
	if err := d.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("query journal_mode pragma: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}
