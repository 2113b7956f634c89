package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"regexp"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/johanfleming/hansel/internal/logging"
	"github.com/johanfleming/hansel/internal/patterns"
)

// SessionState tracks where a supervised session is in its lifecycle.
type SessionState int32

const (
	// StateStarting covers the grace period right after spawn, while the
	// supervised program prints its banner and settles.
	StateStarting SessionState = iota

	// StateListening means output is being relayed and classified.
	StateListening

	// StateAwaitingAdvisor means at least one consultation is in flight.
	StateAwaitingAdvisor

	// StateTerminated means the supervised process has exited.
	StateTerminated
)

func (s SessionState) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateListening:
		return "listening"
	case StateAwaitingAdvisor:
		return "awaiting advisor"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Recorder receives every normalized output line for persistence. Records
// are fire-and-forget; a Recorder must never block the relay.
type Recorder interface {
	Record(line string)
}

// SessionOptions configures a supervised session.
type SessionOptions struct {
	// Command is the shell command to supervise.
	Command string

	// Observe suppresses injection: detected questions are still sent to
	// the advisor, but the advice is reported via OnAdvice instead of
	// being typed into the terminal.
	Observe bool

	Advisor  Advisor
	Patterns PatternSource
	Recorder Recorder
	Logger   *logging.Logger

	Classifier ClassifierConfig
	Guard      GuardConfig

	// BufferMax is the rolling context buffer cap; when exceeded the
	// buffer is trimmed down to BufferTrim lines.
	BufferMax  int
	BufferTrim int

	// StartupGrace is how long after spawn detection stays disabled.
	StartupGrace time.Duration

	// InactivityWarning logs a one-shot warning when the supervised
	// program has produced no output for this long. Zero disables it.
	InactivityWarning time.Duration

	TypeDelay      time.Duration
	ResponseDelay  time.Duration
	AdvisorTimeout time.Duration

	// OnAdvice is called with each suggestion when Observe is set.
	OnAdvice func(question, answer string)

	// OnWarning surfaces operator-facing session warnings, such as the
	// inactivity notice. The log entry is written either way.
	OnWarning func(msg string)

	// Stdin and Stdout default to the process's own. Overridable for
	// tests.
	Stdin  io.Reader
	Stdout io.Writer
}

// Session supervises a single command under a pseudo-terminal: it relays
// bytes both ways, classifies output lines, and dispatches consultations
// for anything that looks like a question.
type Session struct {
	opts       SessionOptions
	logger     *logging.Logger
	classifier *Classifier
	guard      *Guard
	consulter  *consulter
	normalizer *LineNormalizer

	state atomic.Int32

	// buffer is the rolling context window. Only the relay goroutine
	// touches it; consultation tasks get a snapshot at dispatch time.
	buffer []string

	// inflight counts live consultation tasks, for the state label.
	inflight atomic.Int32

	// startedAt, lastOutput, and warned back the time-based checks in
	// tick. Only the relay goroutine touches them.
	startedAt  time.Time
	lastOutput time.Time
	warned     bool

	wg sync.WaitGroup
}

// NewSession validates options and builds a Session. The PTY is not
// allocated until Run.
func NewSession(opts SessionOptions) (*Session, error) {
	if opts.Command == "" {
		return nil, errors.New("terminal: command is required")
	}
	if opts.Advisor == nil {
		return nil, errors.New("terminal: advisor is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.BufferMax <= 0 {
		opts.BufferMax = 200
	}
	if opts.BufferTrim <= 0 || opts.BufferTrim >= opts.BufferMax {
		opts.BufferTrim = opts.BufferMax / 2
	}
	if opts.Patterns == nil {
		defaults := patterns.Defaults()
		opts.Patterns = PatternFunc(func() []*regexp.Regexp { return defaults })
	}
	if opts.AdvisorTimeout <= 0 {
		opts.AdvisorTimeout = 30 * time.Second
	}

	s := &Session{
		opts:       opts,
		logger:     opts.Logger.WithComponent("session"),
		classifier: NewClassifier(opts.Classifier, opts.Patterns),
		guard:      NewGuard(opts.Guard),
		normalizer: NewLineNormalizer(),
	}
	s.state.Store(int32(StateStarting))
	return s, nil
}

// State reports the session's current lifecycle state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

func (s *Session) setState(st SessionState) {
	s.state.Store(int32(st))
}

// Run spawns the command under a PTY and relays until the supervised
// process exits or the context is canceled. It returns the error from the
// supervised process, if any.
func (s *Session) Run(ctx context.Context) error {
	cmd := exec.Command("sh", "-c", s.opts.Command)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("spawning %q: %w", s.opts.Command, err)
	}
	defer ptmx.Close()

	s.logger.Info("session started", "command", s.opts.Command, "pid", cmd.Process.Pid)

	// Mirror the controlling terminal's size into the PTY and track
	// resizes for the lifetime of the session.
	stdinFile, stdinIsTTY := s.opts.Stdin.(*os.File)
	if stdinIsTTY && term.IsTerminal(int(stdinFile.Fd())) {
		winch := make(chan os.Signal, 1)
		signal.Notify(winch, syscall.SIGWINCH)
		defer signal.Stop(winch)
		go func() {
			for range winch {
				if err := pty.InheritSize(stdinFile, ptmx); err != nil {
					s.logger.Warn("resize failed", "error", err)
				}
			}
		}()
		winch <- syscall.SIGWINCH

		oldState, err := term.MakeRaw(int(stdinFile.Fd()))
		if err != nil {
			return fmt.Errorf("setting raw mode: %w", err)
		}
		defer term.Restore(int(stdinFile.Fd()), oldState)
	}

	s.consulter = &consulter{
		advisor:       s.opts.Advisor,
		guard:         s.guard,
		injector:      NewInjector(ptmx, s.opts.TypeDelay),
		logger:        s.opts.Logger.WithComponent("consult"),
		observe:       s.opts.Observe,
		onAdvice:      s.opts.OnAdvice,
		responseDelay: s.opts.ResponseDelay,
		timeout:       s.opts.AdvisorTimeout,
		terminated:    func() bool { return s.State() == StateTerminated },
	}

	// Forward user keystrokes to the supervised program. Typing also arms
	// the guard's suppress window so a half-typed reply is not answered
	// out from under the user.
	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := s.opts.Stdin.Read(buf)
			if n > 0 {
				s.guard.NoteTyping()
				if _, werr := ptmx.Write(buf[:n]); werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	chunks := make(chan []byte, 8)
	go func() {
		defer close(chunks)
		buf := make([]byte, 32*1024)
		for {
			n, err := ptmx.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				chunks <- chunk
			}
			if err != nil {
				return
			}
		}
	}()

	s.startedAt = time.Now()
	s.lastOutput = s.startedAt

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

relay:
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session canceled")
			_ = cmd.Process.Kill()
			break relay

		case chunk, ok := <-chunks:
			if !ok {
				break relay
			}
			s.lastOutput = time.Now()
			s.warned = false
			if _, err := s.opts.Stdout.Write(chunk); err != nil {
				s.logger.Warn("stdout write failed", "error", err)
			}
			s.handleChunk(ctx, chunk)

		case now := <-ticker.C:
			s.tick(now)
		}
	}

	s.drainPartial()
	s.setState(StateTerminated)
	err = cmd.Wait()
	s.logger.Info("session ended", "error", err)
	return err
}

// tick drives the time-based checks: ending the startup grace window and
// issuing the one-shot inactivity warning. New output re-arms the warning.
func (s *Session) tick(now time.Time) {
	if s.State() == StateStarting && now.Sub(s.startedAt) >= s.opts.StartupGrace {
		s.setState(StateListening)
		s.logger.Debug("startup grace elapsed, detection enabled")
	}
	if s.opts.InactivityWarning <= 0 || s.warned || s.State() != StateListening {
		return
	}
	if idle := now.Sub(s.lastOutput); idle >= s.opts.InactivityWarning {
		s.warned = true
		s.logger.Warn("no output from supervised process",
			"idle", idle.Round(time.Second))
		if s.opts.OnWarning != nil {
			s.opts.OnWarning(fmt.Sprintf(
				"no output for %s; the supervised program may be waiting for input",
				idle.Round(time.Second)))
		}
	}
}

// drainPartial flushes an unterminated trailing line into the context
// buffer at session end. An interactive prompt often ends without a
// separator, and it should still reach the buffer and the recorder.
func (s *Session) drainPartial() {
	line, ok := s.normalizer.Flush()
	if !ok {
		return
	}
	s.buffer = append(s.buffer, line)
	if s.opts.Recorder != nil {
		s.opts.Recorder.Record(line)
	}
}

// handleChunk splits a raw output chunk into normalized lines, appends
// them all to the context buffer, then classifies each one. Buffering
// before classifying matters: when a menu frame arrives in one chunk, the
// confirmation line at its top must see the menu indicators below it.
func (s *Session) handleChunk(ctx context.Context, chunk []byte) {
	lines := s.normalizer.Feed(chunk)
	if len(lines) == 0 {
		return
	}

	for _, line := range lines {
		s.buffer = append(s.buffer, line)
		if s.opts.Recorder != nil {
			s.opts.Recorder.Record(line)
		}
	}
	if len(s.buffer) > s.opts.BufferMax {
		trimmed := make([]string, s.opts.BufferTrim)
		copy(trimmed, s.buffer[len(s.buffer)-s.opts.BufferTrim:])
		s.buffer = trimmed
	}

	if s.State() == StateStarting {
		return
	}

	for _, line := range lines {
		s.classifyLine(ctx, line)
	}
}

func (s *Session) classifyLine(ctx context.Context, line string) {
	if s.guard.IsEcho(line) {
		return
	}

	switch s.classifier.Classify(line, s.buffer) {
	case ClassMenuPrompt:
		if !s.guard.AllowMenu() {
			return
		}
		s.guard.NoteDetection()
		s.logger.Info("menu detected", "line", line)
		s.dispatch(ctx, consultRequest{
			kind:     consultMenu,
			question: line,
			context:  s.snapshot(s.opts.Classifier.MenuWindowLines),
		})

	case ClassQuestion:
		if !s.guard.AllowQuestion() {
			return
		}
		s.guard.NoteDetection()
		s.logger.Info("question detected", "line", line)
		s.dispatch(ctx, consultRequest{
			kind:     consultQuestion,
			question: line,
			context:  s.snapshot(s.opts.BufferTrim),
		})
	}
}

// snapshot copies the last n buffer lines for a consultation task.
func (s *Session) snapshot(n int) []string {
	lines := s.buffer
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}

func (s *Session) dispatch(ctx context.Context, req consultRequest) {
	s.setState(StateAwaitingAdvisor)
	s.inflight.Add(1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.consulter.run(ctx, req)
		if s.inflight.Add(-1) == 0 && s.State() == StateAwaitingAdvisor {
			s.setState(StateListening)
		}
	}()
}

// Wait blocks until all in-flight consultation tasks have finished. Run
// does not wait for them; callers that need a clean shutdown call Wait
// after Run returns.
func (s *Session) Wait() {
	s.wg.Wait()
}
