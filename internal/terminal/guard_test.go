package terminal

import (
	"testing"
	"time"
)

func testGuardConfig() GuardConfig {
	return GuardConfig{
		QuestionInterval: 20 * time.Second,
		ResponseMute:     8 * time.Second,
		MenuMute:         3 * time.Second,
		TypingSuppress:   2 * time.Second,
	}
}

// fakeClock drives a Guard deterministically.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestGuard() (*Guard, *fakeClock) {
	g := NewGuard(testGuardConfig())
	clk := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	g.now = clk.now
	return g, clk
}

func TestGuardEchoSuppression(t *testing.T) {
	g, _ := newTestGuard()

	g.SetPending("Use PostgreSQL. It fits the relational model here.")

	tests := []struct {
		name string
		line string
		want bool
	}{
		{
			name: "exact echo",
			line: "Use PostgreSQL. It fits the relational model here.",
			want: true,
		},
		{
			name: "case folded echo",
			line: "USE POSTGRESQL. IT FITS THE RELATIONAL MODEL HERE.",
			want: true,
		},
		{
			name: "wrapped echo prefix",
			line: "Use PostgreSQL. It fits the",
			want: true,
		},
		{
			name: "echo longer than stored prefix",
			line: "Use PostgreSQL. It fits the relational model here. And more trailing text",
			want: true,
		},
		{
			name: "unrelated line",
			line: "Should I use PostgreSQL or MongoDB?",
			want: false,
		},
		{
			name: "empty line",
			line: "   ",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.IsEcho(tt.line); got != tt.want {
				t.Errorf("IsEcho(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestGuardPendingReplacedWholesale(t *testing.T) {
	g, _ := newTestGuard()

	g.SetPending("first answer about databases")
	g.SetPending("second answer about deployment")

	if g.IsEcho("first answer about databases") {
		t.Error("previous pending answer still matched after replacement")
	}
	if !g.IsEcho("second answer about deployment") {
		t.Error("current pending answer not matched")
	}
}

func TestGuardMultilinePending(t *testing.T) {
	g, _ := newTestGuard()

	g.SetPending("Run the migration first.\nThen restart the worker pool.")

	if !g.IsEcho("Run the migration first.") {
		t.Error("first pending line not matched")
	}
	if !g.IsEcho("Then restart the worker pool.") {
		t.Error("second pending line not matched")
	}
}

func TestGuardQuestionInterval(t *testing.T) {
	g, clk := newTestGuard()

	if !g.AllowQuestion() {
		t.Fatal("fresh guard should allow a question")
	}
	g.NoteDetection()

	if g.AllowQuestion() {
		t.Error("second question allowed immediately after detection")
	}

	clk.advance(19 * time.Second)
	if g.AllowQuestion() {
		t.Error("question allowed inside the interval")
	}

	clk.advance(2 * time.Second)
	if !g.AllowQuestion() {
		t.Error("question blocked after the interval elapsed")
	}
}

func TestGuardResponseMute(t *testing.T) {
	g, clk := newTestGuard()

	g.NoteResponse()

	if g.AllowQuestion() {
		t.Error("question allowed during response mute")
	}
	if g.AllowMenu() {
		t.Error("menu allowed during menu mute")
	}

	// Menus come back after MenuMute, questions only after ResponseMute.
	clk.advance(4 * time.Second)
	if !g.AllowMenu() {
		t.Error("menu blocked after menu mute elapsed")
	}
	if g.AllowQuestion() {
		t.Error("question allowed before response mute elapsed")
	}

	clk.advance(5 * time.Second)
	if !g.AllowQuestion() {
		t.Error("question blocked after response mute elapsed")
	}
}

func TestGuardTypingSuppress(t *testing.T) {
	g, clk := newTestGuard()

	g.NoteTyping()

	if g.AllowQuestion() {
		t.Error("question allowed right after a keystroke")
	}
	if g.AllowMenu() {
		t.Error("menu allowed right after a keystroke")
	}

	clk.advance(3 * time.Second)
	if !g.AllowQuestion() {
		t.Error("question blocked after typing suppress elapsed")
	}
}
