package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nickandperla.net/wires/internal/expr"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemory()
	defer s.Close()

	// Test Put and Get
	err := s.Put("x", expr.Direct{In: expr.Literal(123)})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get("x")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.String() != "123" {
		t.Errorf("expected '123', got '%s'", got.String())
	}

	// Test Delete
	err = s.Delete("x")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err = s.Get("x")
	if err != nil {
		t.Fatalf("Get after delete failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got '%s'", got.String())
	}
}

func TestMemoryNames(t *testing.T) {
	s := NewMemory()
	s.Put("y", expr.Direct{In: expr.Literal(1)})
	s.Put("a", expr.Not{In: expr.Ref("y")})
	s.Put("m", expr.And{L: expr.Ref("a"), R: expr.Ref("y")})

	names, err := s.Names()
	if err != nil {
		t.Fatalf("Names failed: %v", err)
	}
	if strings.Join(names, ",") != "a,m,y" {
		t.Errorf("expected sorted names a,m,y, got %v", names)
	}
}

func TestSQLiteStore(t *testing.T) {
	// Create temp file
	f, err := os.CreateTemp("", "wires-test-*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("Failed to create SQLite store: %v", err)
	}

	gates := map[string]expr.Gate{
		"x": expr.Direct{In: expr.Literal(123)},
		"d": expr.And{L: expr.Ref("x"), R: expr.Ref("y")},
		"e": expr.Or{L: expr.Ref("x"), R: expr.Literal(1)},
		"f": expr.LShift{In: expr.Ref("x"), By: expr.Literal(2)},
		"g": expr.RShift{In: expr.Ref("y"), By: expr.Literal(2)},
		"h": expr.Not{In: expr.Ref("x")},
	}
	for name, g := range gates {
		if err := s.Put(name, g); err != nil {
			t.Fatalf("Put %s failed: %v", name, err)
		}
	}

	// Overwrite replaces
	if err := s.Put("x", expr.Direct{In: expr.Literal(7)}); err != nil {
		t.Fatalf("Put overwrite failed: %v", err)
	}
	gates["x"] = expr.Direct{In: expr.Literal(7)}

	// Close and reopen to verify persistence
	s.Close()

	s2, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("Failed to reopen SQLite store: %v", err)
	}
	defer s2.Close()

	for name, want := range gates {
		got, err := s2.Get(name)
		if err != nil {
			t.Fatalf("Get %s after reopen failed: %v", name, err)
		}
		if got != want {
			t.Errorf("%s: expected %#v after reopen, got %#v", name, want, got)
		}
	}

	names, err := s2.Names()
	if err != nil {
		t.Fatalf("Names failed: %v", err)
	}
	if strings.Join(names, ",") != "d,e,f,g,h,x" {
		t.Errorf("unexpected names: %v", names)
	}

	got, err := s2.Get("nope")
	if err != nil {
		t.Fatalf("Get nonexistent failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for nonexistent, got %v", got)
	}

	if err := s2.Delete("x"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got, _ := s2.Get("x"); got != nil {
		t.Errorf("expected nil after delete, got %v", got)
	}
}

func TestSQLiteSchemaVersion(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "meta.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer s.Close()

	v, err := s.getMetadata("schema_version")
	if err != nil {
		t.Fatalf("getMetadata: %v", err)
	}
	if v != SchemaVersion {
		t.Errorf("expected schema version %s, got '%s'", SchemaVersion, v)
	}
}

func TestSQLiteRejectsUnknownSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.db")

	db, err := sql.Open(driverName, path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	_, err = db.Exec(`
		CREATE TABLE metadata (key TEXT PRIMARY KEY, value TEXT NOT NULL);
		INSERT INTO metadata (key, value) VALUES ('schema_version', '99');
	`)
	db.Close()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	s, err := NewSQLite(path)
	if err == nil {
		s.Close()
		t.Fatal("expected error for unsupported schema version")
	}
	if !strings.Contains(err.Error(), "unsupported schema version") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSQLiteCorruptGate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.db")
	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer s.Close()

	if _, err := s.db.Exec("INSERT INTO wires (name, gate) VALUES ('z', 'x XOR y')"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := s.Get("z"); err == nil {
		t.Error("expected parse error for stored gate")
	}
}
