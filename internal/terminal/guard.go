package terminal

import (
	"strings"
	"sync"
	"time"
)

// echoPrefixLen is how many characters of a line are kept for echo
// comparison. Terminals wrap and re-render injected text, so only a
// case-folded prefix is stable enough to match on.
const echoPrefixLen = 50

// GuardConfig holds the cooldown and suppression windows enforced by the
// Guard.
type GuardConfig struct {
	// QuestionInterval is the minimum time between two question detections.
	QuestionInterval time.Duration
	// ResponseMute suppresses all detection after a response is injected.
	ResponseMute time.Duration
	// MenuMute is the shortened portion of ResponseMute that menu prompts
	// must still observe. Menus may shorten the mute, never bypass it.
	MenuMute time.Duration
	// TypingSuppress suppresses detection after an operator keystroke, so
	// the operator's own input echo is never classified.
	TypingSuppress time.Duration
}

// Guard suppresses self-echoes and rate-limits detections. It sits between
// the normalizer and the classifier: every line passes IsEcho first, and a
// classification is only dispatched if the corresponding Allow check holds.
// Guard is safe for concurrent use by the relay loop and consultation tasks.
type Guard struct {
	mu  sync.Mutex
	cfg GuardConfig

	// pending holds the normalized prefix lines of the last injected
	// answer. Replaced wholesale on each new answer.
	pending []string

	lastDetection time.Time
	respondedAt   time.Time
	typedAt       time.Time
	hasResponded  bool

	now func() time.Time // injectable clock for tests
}

// NewGuard creates a Guard with the given windows.
func NewGuard(cfg GuardConfig) *Guard {
	return &Guard{cfg: cfg, now: time.Now}
}

// echoKey normalizes a line for echo comparison: trimmed, case-folded,
// truncated to echoPrefixLen runes.
func echoKey(line string) string {
	key := strings.ToLower(strings.TrimSpace(line))
	runes := []rune(key)
	if len(runes) > echoPrefixLen {
		key = string(runes[:echoPrefixLen])
	}
	return key
}

// SetPending replaces the pending response set with the normalized lines
// of a newly produced answer. Must be called before the answer is typed,
// so the echo arriving through the PTY is already recognized.
func (g *Guard) SetPending(answer string) {
	var pending []string
	for _, line := range strings.Split(answer, "\n") {
		if key := echoKey(line); key != "" {
			pending = append(pending, key)
		}
	}

	g.mu.Lock()
	g.pending = pending
	g.mu.Unlock()
}

// IsEcho reports whether the line matches the pending response set: either
// the line is a prefix of a stored entry or a stored entry is a prefix of
// the line. Such lines are the supervised terminal echoing our own answer
// and must never reach the classifier.
func (g *Guard) IsEcho(line string) bool {
	key := echoKey(line)
	if key == "" {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, p := range g.pending {
		if strings.HasPrefix(p, key) || strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// NoteTyping records an operator keystroke, arming the typing-suppression
// window.
func (g *Guard) NoteTyping() {
	g.mu.Lock()
	g.typedAt = g.now()
	g.mu.Unlock()
}

// NoteDetection records a dispatched detection, starting the
// inter-question interval.
func (g *Guard) NoteDetection() {
	g.mu.Lock()
	g.lastDetection = g.now()
	g.mu.Unlock()
}

// NoteResponse re-arms the post-response mute. Called after injection
// completes.
func (g *Guard) NoteResponse() {
	g.mu.Lock()
	g.respondedAt = g.now()
	g.hasResponded = true
	g.mu.Unlock()
}

// AllowQuestion reports whether a question detection may be dispatched now.
func (g *Guard) AllowQuestion() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now.Sub(g.typedAt) < g.cfg.TypingSuppress && !g.typedAt.IsZero() {
		return false
	}
	if g.hasResponded && now.Sub(g.respondedAt) < g.cfg.ResponseMute {
		return false
	}
	if !g.lastDetection.IsZero() && now.Sub(g.lastDetection) < g.cfg.QuestionInterval {
		return false
	}
	return true
}

// AllowMenu reports whether a menu detection may be dispatched now. Menus
// observe the shortened MenuMute instead of the full ResponseMute, and the
// shorter MenuMute also serves as their inter-detection interval.
func (g *Guard) AllowMenu() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now.Sub(g.typedAt) < g.cfg.TypingSuppress && !g.typedAt.IsZero() {
		return false
	}
	if g.hasResponded && now.Sub(g.respondedAt) < g.cfg.MenuMute {
		return false
	}
	if !g.lastDetection.IsZero() && now.Sub(g.lastDetection) < g.cfg.MenuMute {
		return false
	}
	return true
}
