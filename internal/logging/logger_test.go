package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)

	l.Info("question detected", "line", "Should I proceed?")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "question detected" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["line"] != "Should I proceed?" {
		t.Errorf("line = %v", entry["line"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Debug("dropped")
	l.Info("dropped too")
	l.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("low-severity entries not filtered: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn entry missing: %q", out)
	}
}

func TestLoggerPersistentAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo).WithSession("abc123").WithComponent("relay")

	l.Info("started")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["session_id"] != "abc123" {
		t.Errorf("session_id = %v", entry["session_id"])
	}
	if entry["component"] != "relay" {
		t.Errorf("component = %v", entry["component"])
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	l := NopLogger()
	// Must not panic, and Close is a no-op.
	l.Error("ignored")
	if err := l.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestRotatingWriterRotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hansel.log")

	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 0, MaxBackups: 3})
	if err != nil {
		t.Fatal(err)
	}
	// Force a tiny threshold directly; MaxSizeMB granularity is too coarse for tests.
	rw.maxBytes = 32

	line := []byte("0123456789abcdef\n") // 17 bytes
	for i := 0; i < 4; i++ {
		if _, err := rw.Write(line); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}
	if err := rw.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("expected backup file after rotation: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() > 34 {
		t.Errorf("current log not truncated by rotation: %d bytes", info.Size())
	}
}

func TestRotatingWriterClosedWrite(t *testing.T) {
	dir := t.TempDir()
	rw, err := NewRotatingWriter(filepath.Join(dir, "x.log"), DefaultRotationConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := rw.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := rw.Write([]byte("late")); err == nil {
		t.Error("Write after Close should fail")
	}
}
