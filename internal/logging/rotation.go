package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RotationConfig holds configuration for log rotation.
type RotationConfig struct {
	// MaxSizeMB is the maximum size of the log file in megabytes before
	// rotation. A value of 0 disables rotation.
	MaxSizeMB int
	// MaxBackups is the number of old log files to keep.
	// A value of 0 keeps no backups.
	MaxBackups int
}

// DefaultRotationConfig returns a RotationConfig with sensible defaults.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{MaxSizeMB: 10, MaxBackups: 3}
}

// RotatingWriter is an io.WriteCloser that rotates the underlying file when
// it exceeds a size threshold. Rotated files are named <path>.1 (newest)
// through <path>.N (oldest). It is safe for concurrent use.
type RotatingWriter struct {
	mu sync.Mutex

	path       string
	maxBytes   int64
	maxBackups int

	file *os.File
	size int64
}

// NewRotatingWriter creates a RotatingWriter appending to path, creating the
// parent directory if needed. If config.MaxSizeMB is 0 the writer never
// rotates.
func NewRotatingWriter(path string, config RotationConfig) (*RotatingWriter, error) {
	rw := &RotatingWriter{
		path:       path,
		maxBytes:   int64(config.MaxSizeMB) * 1024 * 1024,
		maxBackups: config.MaxBackups,
	}
	if err := rw.open(); err != nil {
		return nil, err
	}
	return rw, nil
}

// open opens the log file for appending. The caller must hold the mutex
// (or be the constructor).
func (rw *RotatingWriter) open() error {
	if err := os.MkdirAll(filepath.Dir(rw.path), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	file, err := os.OpenFile(rw.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("stat log file: %w", err)
	}

	rw.file = file
	rw.size = info.Size()
	return nil
}

// Write implements io.Writer, rotating first when the write would push the
// file past the size threshold.
func (rw *RotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return 0, fmt.Errorf("log file is closed")
	}

	if rw.maxBytes > 0 && rw.size+int64(len(p)) > rw.maxBytes {
		if err := rw.rotate(); err != nil {
			// Keep writing to the current file rather than dropping entries.
			fmt.Fprintf(os.Stderr, "hansel: log rotation failed: %v\n", err)
		}
	}

	n, err := rw.file.Write(p)
	rw.size += int64(n)
	return n, err
}

// rotate shifts backups and starts a fresh file. Caller holds the mutex.
func (rw *RotatingWriter) rotate() error {
	if err := rw.file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	rw.file = nil

	if rw.maxBackups <= 0 {
		// No backups kept: discard the full file and start over.
		if err := os.Remove(rw.path); err != nil {
			return fmt.Errorf("remove log file: %w", err)
		}
		return rw.open()
	}

	os.Remove(rw.backupPath(rw.maxBackups))
	for i := rw.maxBackups - 1; i >= 1; i-- {
		if _, err := os.Stat(rw.backupPath(i)); err == nil {
			os.Rename(rw.backupPath(i), rw.backupPath(i+1))
		}
	}
	if err := os.Rename(rw.path, rw.backupPath(1)); err != nil {
		if openErr := rw.open(); openErr != nil {
			return fmt.Errorf("rename log file and reopen: %w", openErr)
		}
		return fmt.Errorf("rename log file: %w", err)
	}

	return rw.open()
}

// backupPath returns the path for the numbered backup file.
func (rw *RotatingWriter) backupPath(n int) string {
	return fmt.Sprintf("%s.%d", rw.path, n)
}

// Close syncs and closes the underlying file.
func (rw *RotatingWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return nil
	}
	if err := rw.file.Sync(); err != nil {
		rw.file.Close()
		rw.file = nil
		return fmt.Errorf("sync log file: %w", err)
	}
	err := rw.file.Close()
	rw.file = nil
	return err
}
