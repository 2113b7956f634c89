package transcript

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "buffer.txt"), nil)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndTail(t *testing.T) {
	s := testStore(t)

	s.Record("first line")
	s.Record("second line")
	s.Record("third line")

	got, err := s.Tail(2)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	want := []string{"second line", "third line"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tail(2) = %q, want %q", got, want)
	}

	got, err = s.Tail(0)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Tail(0) returned %d lines, want all 3", len(got))
	}
}

func TestTailMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "never-written.txt"), nil)

	got, err := s.Tail(10)
	if err != nil {
		t.Fatalf("Tail on missing file: %v", err)
	}
	if got != nil {
		t.Errorf("Tail on missing file = %q, want nil", got)
	}
}

func TestStartSessionHeader(t *testing.T) {
	s := testStore(t)
	s.now = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}

	s.StartSession("claude --dangerously-skip-permissions")
	s.Record("banner output")

	lines, err := s.Tail(0)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("transcript holds %d lines, want 2", len(lines))
	}
	header := lines[0]
	if !strings.HasPrefix(header, "--- session 2026-03-01T12:00:00Z:") {
		t.Errorf("header = %q", header)
	}
	if !strings.Contains(header, "claude --dangerously-skip-permissions") {
		t.Errorf("header %q missing command", header)
	}
}

func TestClear(t *testing.T) {
	s := testStore(t)

	s.Record("line to be cleared")
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	got, err := s.Tail(0)
	if err != nil {
		t.Fatalf("Tail after Clear: %v", err)
	}
	if got != nil {
		t.Errorf("Tail after Clear = %q, want nil", got)
	}

	// Recording after Clear reopens the file.
	s.Record("fresh line")
	got, err = s.Tail(0)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(got) != 1 || got[0] != "fresh line" {
		t.Errorf("Tail after re-record = %q", got)
	}
}

func TestClearMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "never-written.txt"), nil)
	if err := s.Clear(); err != nil {
		t.Errorf("Clear on missing file: %v", err)
	}
}

func TestRecordUnwritablePathDoesNotPanic(t *testing.T) {
	dir := t.TempDir()
	// The parent is a file, so MkdirAll must fail.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(filepath.Join(blocker, "buffer.txt"), nil)
	s.Record("dropped on the floor")
	s.Record("also dropped")
}
