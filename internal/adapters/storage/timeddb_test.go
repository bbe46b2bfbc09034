package storage

import (
	"context"
	"testing"

	"curriculum/internal/adapters/http/perf"
)

// openTimedTestDB returns an initialized in-memory database wrapped with timing.
func openTimedTestDB(t *testing.T, collector *perf.Collector) *TimedDB {
	t.Helper()
	db := openTestDB(t)
	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return NewTimedDB(db, collector, 0)
}

// TestTimedDB_RecordsStatements verifies exec, query and row lookups are all recorded.
func TestTimedDB_RecordsStatements(t *testing.T) {
	collector := perf.NewCollector(100)
	tdb := openTimedTestDB(t, collector)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, `INSERT INTO document_entry (key, value, updated_at) VALUES (?, ?, ?)`, "k", "v", "now"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	rows, err := tdb.QueryContext(ctx, `SELECT key FROM document_entry`)
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()
	var v string
	if err := tdb.QueryRowContext(ctx, `SELECT value FROM document_entry WHERE key = ?`, "k").Scan(&v); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if v != "v" {
		t.Errorf("value = %q, want v", v)
	}
	if got := collector.TotalRecorded(); got != 3 {
		t.Errorf("TotalRecorded = %d, want 3", got)
	}
}

// TestTimedDB_NilCollector verifies TimedDB works without a collector.
func TestTimedDB_NilCollector(t *testing.T) {
	tdb := openTimedTestDB(t, nil)
	if _, err := tdb.ExecContext(context.Background(), `DELETE FROM document_entry`); err != nil {
		t.Fatalf("ExecContext with nil collector: %v", err)
	}
}

// TestTimedDB_ErrorPassthrough verifies driver errors reach the caller unchanged.
func TestTimedDB_ErrorPassthrough(t *testing.T) {
	tdb := openTimedTestDB(t, perf.NewCollector(10))
	if _, err := tdb.ExecContext(context.Background(), `INSERT INTO missing_table VALUES (1)`); err == nil {
		t.Error("expected error for missing table")
	}
}

// TestStatementLabel verifies queries are grouped by verb and table.
func TestStatementLabel(t *testing.T) {
	tests := map[string]string{
		"SELECT value FROM document_entry WHERE key = ?": "SELECT document_entry",
		"INSERT INTO activity_event (id) VALUES (?)":     "INSERT activity_event",
		"DELETE FROM document_entry WHERE key = ?":       "DELETE document_entry",
		"UPDATE schema_version SET version = ?":          "UPDATE schema_version",
		"PRAGMA journal_mode":                            "PRAGMA",
		"   ":                                            "EMPTY",
	}
	for q, want := range tests {
		if got := statementLabel(q); got != want {
			t.Errorf("statementLabel(%q) = %q, want %q", q, got, want)
		}
	}
}
