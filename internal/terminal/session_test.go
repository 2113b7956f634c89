package terminal

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/johanfleming/hansel/internal/logging"
)

var errTest = errors.New("test failure")

// newPipelineSession builds a Session wired to a fake advisor and an
// in-memory injector target, skipping the PTY. handleChunk and everything
// below it run exactly as in production.
func newPipelineSession(t *testing.T, advisor Advisor) (*Session, *bytes.Buffer) {
	t.Helper()

	s, err := NewSession(SessionOptions{
		Command:    "true",
		Advisor:    advisor,
		Logger:     logging.NopLogger(),
		Classifier: DefaultClassifierConfig(),
		Guard:      testGuardConfig(),
		BufferMax:  200,
		BufferTrim: 100,
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	var injected bytes.Buffer
	s.consulter = &consulter{
		advisor:    advisor,
		guard:      s.guard,
		injector:   NewInjector(&injected, 0),
		logger:     logging.NopLogger(),
		timeout:    5 * time.Second,
		terminated: func() bool { return s.State() == StateTerminated },
	}
	s.setState(StateListening)
	return s, &injected
}

func TestSessionQuestionDispatchedOnce(t *testing.T) {
	advisor := &fakeAdvisor{answer: "Use PostgreSQL."}
	s, injected := newPipelineSession(t, advisor)

	// The same question re-rendered in one chunk must fire one consult.
	chunk := []byte("Should I use PostgreSQL or MongoDB?\nShould I use PostgreSQL or MongoDB?\n")
	s.handleChunk(context.Background(), chunk)
	s.Wait()

	advisor.mu.Lock()
	n := len(advisor.questions)
	advisor.mu.Unlock()
	if n != 1 {
		t.Fatalf("advisor consulted %d times, want 1", n)
	}
	if got := injected.String(); got != "Use PostgreSQL.\r" {
		t.Errorf("injected %q, want %q", got, "Use PostgreSQL.\r")
	}
}

func TestSessionMenuFrameInOneChunk(t *testing.T) {
	advisor := &fakeAdvisor{menuAnswer: "1"}
	s, injected := newPipelineSession(t, advisor)

	// The confirmation line arrives in the same chunk as the options
	// below it. Buffering the whole chunk before classifying means the
	// confirmation sees the menu and is redirected, so only the menu
	// path fires.
	chunk := []byte("Do you want to create the file?\n" +
		"❯ 1. Yes, create it\n" +
		"  2. No, tell me what to do differently\n" +
		"Use arrow keys to navigate, enter to select\n")
	s.handleChunk(context.Background(), chunk)
	s.Wait()

	advisor.mu.Lock()
	menus, questions := len(advisor.menuWindows), len(advisor.questions)
	advisor.mu.Unlock()
	if menus != 1 {
		t.Fatalf("menu consulted %d times, want 1", menus)
	}
	if questions != 0 {
		t.Fatalf("question path fired %d times inside a menu", questions)
	}
	if got := injected.String(); got != "1\r" {
		t.Errorf("injected %q, want %q", got, "1\r")
	}
}

func TestSessionEchoNotClassified(t *testing.T) {
	advisor := &fakeAdvisor{answer: "should not be asked"}
	s, _ := newPipelineSession(t, advisor)

	s.guard.SetPending("Should I use PostgreSQL or MongoDB?")
	s.handleChunk(context.Background(), []byte("Should I use PostgreSQL or MongoDB?\n"))
	s.Wait()

	advisor.mu.Lock()
	n := len(advisor.questions)
	advisor.mu.Unlock()
	if n != 0 {
		t.Errorf("echoed answer reached the advisor %d times", n)
	}
}

func TestSessionStartupGraceSuppressesDetection(t *testing.T) {
	advisor := &fakeAdvisor{answer: "too early"}
	s, _ := newPipelineSession(t, advisor)
	s.setState(StateStarting)

	s.handleChunk(context.Background(), []byte("Should I use PostgreSQL or MongoDB?\n"))
	s.Wait()

	advisor.mu.Lock()
	n := len(advisor.questions)
	advisor.mu.Unlock()
	if n != 0 {
		t.Errorf("detection fired %d times during startup grace", n)
	}

	// The banner output still lands in the context buffer.
	if len(s.buffer) != 1 {
		t.Errorf("buffer holds %d lines, want 1", len(s.buffer))
	}
}

func TestSessionBufferTrimming(t *testing.T) {
	advisor := &fakeAdvisor{}
	s, _ := newPipelineSession(t, advisor)
	s.opts.BufferMax = 10
	s.opts.BufferTrim = 5

	for i := 0; i < 20; i++ {
		s.handleChunk(context.Background(), []byte("plain filler output line\n"))
	}
	s.Wait()

	if len(s.buffer) > 10 {
		t.Errorf("buffer grew to %d lines, cap is 10", len(s.buffer))
	}
}

func TestSessionAdvisorFailureInjectsError(t *testing.T) {
	advisor := &fakeAdvisor{err: errTest}
	s, injected := newPipelineSession(t, advisor)

	s.handleChunk(context.Background(), []byte("Should I use PostgreSQL or MongoDB?\n"))
	s.Wait()

	want := "Error: advisor request failed - test failure\r"
	if got := injected.String(); got != want {
		t.Errorf("injected %q, want %q", got, want)
	}
	if s.State() == StateTerminated {
		t.Error("advisor failure terminated the session")
	}
}

func TestSessionStateTransitions(t *testing.T) {
	advisor := &fakeAdvisor{answer: "Use PostgreSQL."}
	s, _ := newPipelineSession(t, advisor)

	s.handleChunk(context.Background(), []byte("Should I use PostgreSQL or MongoDB?\n"))
	s.Wait()

	if got := s.State(); got != StateListening {
		t.Errorf("state after consultation = %v, want %v", got, StateListening)
	}
}

func TestSessionStateString(t *testing.T) {
	tests := []struct {
		state SessionState
		want  string
	}{
		{StateStarting, "starting"},
		{StateListening, "listening"},
		{StateAwaitingAdvisor, "awaiting advisor"},
		{StateTerminated, "terminated"},
		{SessionState(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("SessionState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

type captureRecorder struct {
	lines []string
}

func (r *captureRecorder) Record(line string) { r.lines = append(r.lines, line) }

func TestSessionDrainsPartialLineAtEnd(t *testing.T) {
	advisor := &fakeAdvisor{}
	s, _ := newPipelineSession(t, advisor)
	rec := &captureRecorder{}
	s.opts.Recorder = rec

	// A final prompt often arrives with no trailing separator. It stays
	// buffered in the normalizer until the session ends.
	s.handleChunk(context.Background(), []byte("Do you want to proceed with the migration? "))
	if len(rec.lines) != 0 {
		t.Fatalf("partial line recorded before session end: %q", rec.lines)
	}

	s.drainPartial()

	want := "Do you want to proceed with the migration?"
	if len(rec.lines) != 1 || rec.lines[0] != want {
		t.Errorf("recorded %q, want [%q]", rec.lines, want)
	}
	if len(s.buffer) != 1 || s.buffer[0] != want {
		t.Errorf("buffer = %q, want [%q]", s.buffer, want)
	}

	// A second drain with nothing buffered is a no-op.
	s.drainPartial()
	if len(rec.lines) != 1 {
		t.Errorf("empty drain recorded %d extra lines", len(rec.lines)-1)
	}
}

func TestSessionInactivityWarningOneShot(t *testing.T) {
	advisor := &fakeAdvisor{}
	s, _ := newPipelineSession(t, advisor)
	s.opts.InactivityWarning = 2 * time.Minute

	var warnings []string
	s.opts.OnWarning = func(msg string) { warnings = append(warnings, msg) }

	start := time.Now()
	s.lastOutput = start

	s.tick(start.Add(time.Minute))
	if len(warnings) != 0 {
		t.Fatalf("warned after 1m idle with a 2m threshold: %q", warnings)
	}

	s.tick(start.Add(3 * time.Minute))
	s.tick(start.Add(4 * time.Minute))
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want exactly 1", len(warnings))
	}

	// New output re-arms the warning.
	s.lastOutput = start.Add(5 * time.Minute)
	s.warned = false
	s.tick(start.Add(8 * time.Minute))
	if len(warnings) != 2 {
		t.Errorf("got %d warnings after re-arm, want 2", len(warnings))
	}
}

func TestSessionTickEndsStartupGrace(t *testing.T) {
	advisor := &fakeAdvisor{}
	s, _ := newPipelineSession(t, advisor)
	s.setState(StateStarting)
	s.opts.StartupGrace = 5 * time.Second
	s.startedAt = time.Now()

	s.tick(s.startedAt.Add(time.Second))
	if got := s.State(); got != StateStarting {
		t.Fatalf("state = %v before grace elapsed, want %v", got, StateStarting)
	}

	s.tick(s.startedAt.Add(6 * time.Second))
	if got := s.State(); got != StateListening {
		t.Errorf("state = %v after grace elapsed, want %v", got, StateListening)
	}
}

func TestSessionObserveMenuCarriesTriggerLine(t *testing.T) {
	advisor := &fakeAdvisor{menuAnswer: "1"}
	s, _ := newPipelineSession(t, advisor)
	s.consulter.observe = true

	var gotQuestion string
	s.consulter.onAdvice = func(question, answer string) {
		gotQuestion = question
	}

	chunk := []byte("Do you want to create the file?\n" +
		"❯ 1. Yes, create it\n" +
		"  2. No, tell me what to do differently\n" +
		"Use arrow keys to navigate, enter to select\n")
	s.handleChunk(context.Background(), chunk)
	s.Wait()

	if want := "Do you want to create the file?"; gotQuestion != want {
		t.Errorf("observe callback question = %q, want %q", gotQuestion, want)
	}
}

func TestNewSessionDefaultsAdvisorTimeout(t *testing.T) {
	s, err := NewSession(SessionOptions{
		Command: "true",
		Advisor: &fakeAdvisor{},
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if got := s.opts.AdvisorTimeout; got != 30*time.Second {
		t.Errorf("AdvisorTimeout defaulted to %v, want 30s", got)
	}
}

func TestNewSessionValidation(t *testing.T) {
	if _, err := NewSession(SessionOptions{Advisor: &fakeAdvisor{}}); err == nil {
		t.Error("NewSession without command returned nil error")
	}
	if _, err := NewSession(SessionOptions{Command: "true"}); err == nil {
		t.Error("NewSession without advisor returned nil error")
	}
}
