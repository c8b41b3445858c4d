package loader

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	schema := `
	CREATE TABLE audit_log (
		timestamp      TEXT,
		confidence     REAL,
		phi_type       TEXT,
		pattern_type   TEXT,
		false_negative INTEGER,
		is_phi         INTEGER
	);`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	rows := []string{
		`INSERT INTO audit_log VALUES ('2026-08-01T10:00:00Z', 0.92, 'ssn', 'ssn', 0, 1)`,
		`INSERT INTO audit_log VALUES ('2026-08-02T11:00:00Z', NULL, 'name', 'name', 1, 1)`,
		`INSERT INTO audit_log VALUES (NULL, 0.4, 'mrn', NULL, 0, 0)`,
	}
	for _, stmt := range rows {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return path
}

func TestLoadSQLite(t *testing.T) {
	if !SQLiteAvailable() {
		t.Skip("sqlite3 driver not available in this build")
	}

	set, err := New(0, "audit_log", nil).Load(context.Background(), seedDB(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(set.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(set.Records))
	}
	cols := set.Columns
	if !cols.Timestamp || !cols.Confidence || !cols.PHIType || !cols.PatternType || !cols.FalseNegative || !cols.IsPHI {
		t.Fatalf("unexpected column flags: %+v", cols)
	}

	first := set.Records[0]
	if first.Confidence == nil || *first.Confidence != 0.92 {
		t.Fatalf("unexpected first confidence: %+v", first.Confidence)
	}
	if first.IsPHI == nil || !*first.IsPHI {
		t.Fatal("expected is_phi=true on first record")
	}

	second := set.Records[1]
	if second.Confidence != nil {
		t.Fatal("NULL confidence must stay nil")
	}
	if second.FalseNegative == nil || !*second.FalseNegative {
		t.Fatal("expected false_negative=true on second record")
	}

	third := set.Records[2]
	if third.Timestamp != nil {
		t.Fatal("NULL timestamp must stay nil")
	}
}

func TestLoadSQLiteBadTable(t *testing.T) {
	if !SQLiteAvailable() {
		t.Skip("sqlite3 driver not available in this build")
	}

	_, err := New(0, "missing_table", nil).Load(context.Background(), seedDB(t))
	if err == nil {
		t.Fatal("expected error for a missing table")
	}
}
