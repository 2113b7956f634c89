// Package transcript persists the normalized output of supervised sessions
// to an append-only file, so questions and answers can be reviewed after
// the fact.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/johanfleming/hansel/internal/logging"
)

// Store appends session output to a transcript file. Writes are
// best-effort: a failing disk must never stall the relay, so errors are
// logged and swallowed. Store is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	logger *logging.Logger

	// warned suppresses repeated write-failure logs.
	warned bool

	now func() time.Time
}

// New creates a Store for the given file path. The file is opened lazily
// on first write.
func New(path string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Store{
		path:   path,
		logger: logger.WithComponent("transcript"),
		now:    time.Now,
	}
}

// Path returns the transcript file path.
func (s *Store) Path() string {
	return s.path
}

// StartSession stamps a session header so interleaved sessions stay
// readable.
func (s *Store) StartSession(command string) {
	stamp := s.now().Format(time.RFC3339)
	s.append(fmt.Sprintf("--- session %s: %s ---", stamp, command))
}

// Record appends one output line. It implements the session Recorder.
func (s *Store) Record(line string) {
	s.append(line)
}

func (s *Store) append(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		if err := s.open(); err != nil {
			s.warnOnce("opening transcript", err)
			return
		}
	}
	if _, err := s.file.WriteString(line + "\n"); err != nil {
		s.warnOnce("writing transcript", err)
	}
}

func (s *Store) open() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	s.file = f
	return nil
}

func (s *Store) warnOnce(what string, err error) {
	if s.warned {
		return
	}
	s.warned = true
	s.logger.Warn("transcript disabled", "cause", what, "error", err)
}

// Close flushes and closes the transcript file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// Tail returns the last n lines of the transcript. A missing file is not
// an error; it reads as empty.
func (s *Store) Tail(n int) ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// Clear truncates the transcript.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
