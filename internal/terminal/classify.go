package terminal

import (
	"regexp"
	"strings"
)

// Classification is the outcome of inspecting one normalized line against
// the recent output window.
type Classification int

const (
	// ClassIgnore means the line needs no action: ordinary output, noise,
	// code, UI chrome, or a suppressed duplicate of an on-screen prompt.
	ClassIgnore Classification = iota

	// ClassQuestion means the line is a free-form question addressed to
	// the operator.
	ClassQuestion

	// ClassMenuPrompt means the recent window shows an interactive
	// selection menu and this line is its terminal signal (navigation
	// hint, cancel hint, or numbered option with a confirmation).
	ClassMenuPrompt
)

// String returns a human-readable string for the classification.
func (c Classification) String() string {
	switch c {
	case ClassIgnore:
		return "ignore"
	case ClassQuestion:
		return "question"
	case ClassMenuPrompt:
		return "menu_prompt"
	default:
		return "unknown"
	}
}

// ExclusionPatterns is the fixed, ordered set of patterns that disqualify a
// line from question classification. They are matched case-insensitively
// against the whole line and take precedence over every inclusion pattern.
// The set accreted from observed false positives: source code, diffs,
// comments, and the supervised program's own UI chrome.
var ExclusionPatterns = []string{
	// Source-code constructs
	`^\s*[#/\*]`, // comments
	`^\s*(?i:import|from|def|class|func|package)\s`, // declarations
	`=>`,           // arrow functions
	`[^=!<>]=[^=]`, // assignment
	`[{}]`,         // braces
	`\]\s*[;,)]`,   // bracketed expressions
	`\?\s*\S+\s*:`, // ternary
	`\w\?\.`,       // optional chaining
	`\w\?:`,        // optional-type annotation
	// Diff markers
	`^[+-]{1}[^ ]`,
	`^(?:\+\+\+|---|@@)`,
	// UI chrome
	`(?i)(?:ctrl|alt|shift|cmd|⌘|⌥)\s*\+\s*\w`, // keyboard-shortcut hints
	`(?i)(?:↑|↓|←|→|❯|⏵|↵)`,                    // arrow and prompt glyphs
	`(?i)enter to (?:select|confirm|send|submit)`,
	`(?i)tab to (?:cycle|switch)`,
	`[⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏]`, // spinner glyphs
	`(?i)^\s*(?:reading|writing|editing|searching|running|building|compiling|testing|thinking|loading|fetching)(?:…|\.{3})`,
	// Imperative menu-item labels that are not questions
	`(?i)^\s*\d*[.)]?\s*(?:yes,?\s|no,?\s|accept\b|reject\b|skip\b|cancel\b|retry\b|always allow\b|don'?t ask\b)`,
}

// Menu indicator patterns inspected over the recent window.
var (
	// menuNavHintPattern marks the navigation-hint line of a selection menu.
	menuNavHintPattern = regexp.MustCompile(`(?i)(?:↑/↓|↑↓|arrow keys|use arrows|enter to (?:select|confirm|choose)|↵\s*to)`)

	// menuCancelHintPattern marks the cancel/back hint of a menu.
	menuCancelHintPattern = regexp.MustCompile(`(?i)esc(?:ape)?\s+to\s+(?:cancel|exit|go back|dismiss)`)

	// menuOptionPattern matches one numbered menu option, with or without a
	// selection cursor.
	menuOptionPattern = regexp.MustCompile(`^\s*(?:[❯>]\s*)?\d+[.)]\s+\S`)

	// menuConfirmPattern matches the confirmation question that heads a menu.
	menuConfirmPattern = regexp.MustCompile(`(?i)(?:do you want|would you like|are you sure|proceed\?|confirm)`)
)

// ClassifierConfig holds the tunable thresholds for classification.
type ClassifierConfig struct {
	// MinLineLength rejects shorter lines outright.
	MinLineLength int
	// MenuWindowLines is how many recent lines are scanned for menu indicators.
	MenuWindowLines int
	// ConfirmLookbackLines bounds the search for a menu's confirmation question.
	ConfirmLookbackLines int
}

// DefaultClassifierConfig returns the thresholds used in production.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		MinLineLength:        15,
		MenuWindowLines:      15,
		ConfirmLookbackLines: 12,
	}
}

// PatternSource supplies the current ordered inclusion patterns.
// Implementations may swap the underlying set at any time (live reload);
// the classifier takes a fresh snapshot per call.
type PatternSource interface {
	Patterns() []*regexp.Regexp
}

// PatternFunc adapts a function to the PatternSource interface.
type PatternFunc func() []*regexp.Regexp

// Patterns implements PatternSource.
func (f PatternFunc) Patterns() []*regexp.Regexp { return f() }

// Classifier decides whether a normalized line is a question, a menu
// prompt, or ignorable output. It is stateless apart from its compiled
// patterns and safe for concurrent use.
type Classifier struct {
	cfg        ClassifierConfig
	exclusions []*regexp.Regexp
	inclusions PatternSource
}

// NewClassifier builds a classifier with the given thresholds and
// inclusion-pattern source.
func NewClassifier(cfg ClassifierConfig, inclusions PatternSource) *Classifier {
	exclusions := make([]*regexp.Regexp, 0, len(ExclusionPatterns))
	for _, p := range ExclusionPatterns {
		if re, err := regexp.Compile(p); err == nil {
			exclusions = append(exclusions, re)
		}
	}
	return &Classifier{
		cfg:        cfg,
		exclusions: exclusions,
		inclusions: inclusions,
	}
}

// Classify inspects one line against the recent window.
//
// Precedence: the minimum-length gate applies to everything; within a menu
// context the menu redirection replaces question classification entirely
// (one menu renders many frames, so only its terminal signal may fire);
// otherwise exclusion overrides inclusion.
func (c *Classifier) Classify(line string, window []string) Classification {
	trimmed := strings.TrimSpace(line)
	if len([]rune(trimmed)) < c.cfg.MinLineLength {
		return ClassIgnore
	}

	if c.menuActive(window) {
		if c.isMenuTrigger(trimmed, window) {
			return ClassMenuPrompt
		}
		return ClassIgnore
	}

	for _, re := range c.exclusions {
		if re.MatchString(trimmed) {
			return ClassIgnore
		}
	}

	for _, re := range c.inclusions.Patterns() {
		if re.MatchString(trimmed) {
			return ClassQuestion
		}
	}

	return ClassIgnore
}

// menuActive reports whether the recent window shows an interactive
// selection menu: a navigation hint, or a visible numbered option list.
func (c *Classifier) menuActive(window []string) bool {
	recent := lastLines(window, c.cfg.MenuWindowLines)

	options := 0
	for _, l := range recent {
		if menuNavHintPattern.MatchString(l) {
			return true
		}
		if menuOptionPattern.MatchString(l) {
			options++
		}
	}
	return options >= 2
}

// isMenuTrigger reports whether this line is the menu's terminal signal:
// the navigation-hint line itself, a cancel hint, or a numbered option
// rendered together with a confirmation question in the lookback window.
func (c *Classifier) isMenuTrigger(line string, window []string) bool {
	if menuNavHintPattern.MatchString(line) || menuCancelHintPattern.MatchString(line) {
		return true
	}
	if menuOptionPattern.MatchString(line) {
		for _, l := range lastLines(window, c.cfg.ConfirmLookbackLines) {
			if menuConfirmPattern.MatchString(l) {
				return true
			}
		}
	}
	return false
}

// lastLines returns the trailing n elements of lines.
func lastLines(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
