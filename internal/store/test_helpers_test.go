package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/typetrace/internal/record"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord parses a normalized record literal.
func createTestRecord(t *testing.T, s string) record.Record {
	t.Helper()
	r, err := record.Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse(%s) failed: %v", s, err)
	}
	return r
}
