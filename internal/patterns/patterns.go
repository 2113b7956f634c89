// Package patterns supplies the ordered inclusion patterns used for
// question detection. A built-in default set can be overridden by a user
// pattern file (one regular expression per line); an empty or missing file
// falls back to the defaults. The compiled set is swapped atomically on
// reload, so detection never observes a partially loaded list.
package patterns

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/johanfleming/hansel/internal/logging"
)

// DefaultPatterns is the built-in, ordered inclusion set. First match wins.
// Order matters: cheap anchored checks first, broad phrase checks last.
var DefaultPatterns = []string{
	`\?\s*$`,         // Ends with ?
	`(?i)^Would you`, // Would you...
	`(?i)^Do you`,    // Do you...
	`(?i)^Should I`,  // Should I...
	`(?i)^Can I`,     // Can I...
	`(?i)^Could you`, // Could you...
	`(?i)^What `,     // What...
	`(?i)^How `,      // How...
	`(?i)^Which `,    // Which...
	`(?i)^Where `,    // Where...
	`(?i)^Is this`,   // Is this...
	`(?i)^Are you`,   // Are you...
	`(?i)want me to`, // ...want me to...
	`(?i)like me to`, // ...like me to...
	`(?i)proceed`,    // ...proceed...
	`(?i)continue`,   // ...continue...
	`(?i)confirm`,    // ...confirm...
	`(?i)approve`,    // ...approve...
}

// Defaults returns the compiled built-in inclusion patterns.
func Defaults() []*regexp.Regexp {
	return compile(DefaultPatterns)
}

// compile compiles a list of regex pattern strings.
// Invalid patterns are silently skipped.
func compile(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if re, err := regexp.Compile(p); err == nil {
			compiled = append(compiled, re)
		}
	}
	return compiled
}

// ParseFile reads a pattern file: one regular expression per line, blank
// lines and lines starting with '#' ignored. Unparseable expressions are
// dropped; the second return value reports how many were dropped.
func ParseFile(path string) ([]*regexp.Regexp, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var compiled []*regexp.Regexp
	dropped := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		re, err := regexp.Compile(line)
		if err != nil {
			dropped++
			continue
		}
		compiled = append(compiled, re)
	}
	if err := scanner.Err(); err != nil {
		return nil, dropped, err
	}

	return compiled, dropped, nil
}

// Set holds the active inclusion patterns. It is safe for concurrent use;
// Patterns returns a stable snapshot that reloads never mutate.
type Set struct {
	path   string
	logger *logging.Logger

	mu       sync.RWMutex
	compiled []*regexp.Regexp
}

// NewSet builds a Set backed by the user pattern file at path. If the file
// is missing, unreadable, or yields no usable patterns, the built-in
// defaults are used. A nil logger disables logging.
func NewSet(path string, logger *logging.Logger) *Set {
	if logger == nil {
		logger = logging.NopLogger()
	}
	s := &Set{path: path, logger: logger.WithComponent("patterns")}
	s.Reload()
	return s
}

// Patterns returns the current compiled pattern snapshot.
func (s *Set) Patterns() []*regexp.Regexp {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.compiled
}

// Reload re-reads the pattern file and swaps in the new compiled set.
// It never leaves the Set empty.
func (s *Set) Reload() {
	compiled, dropped, err := ParseFile(s.path)
	switch {
	case err != nil && os.IsNotExist(err):
		compiled = Defaults()
	case err != nil:
		s.logger.Warn("pattern file unreadable, using defaults", "path", s.path, "error", err)
		compiled = Defaults()
	case len(compiled) == 0:
		// Empty override means "use built-in defaults".
		compiled = Defaults()
	default:
		s.logger.Info("loaded user patterns", "path", s.path, "count", len(compiled), "dropped", dropped)
	}

	s.mu.Lock()
	s.compiled = compiled
	s.mu.Unlock()
}

// Watch reloads the Set whenever the pattern file changes. It blocks until
// the done channel is closed, so run it in its own goroutine. Watching the
// parent directory (rather than the file) survives editors that replace
// the file on save.
func (s *Set) Watch(done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return err
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != s.path {
				continue
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Remove) {
				s.logger.Debug("pattern file changed", "op", event.Op.String())
				s.Reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("pattern watcher error", "error", err)
		case <-done:
			return nil
		}
	}
}
