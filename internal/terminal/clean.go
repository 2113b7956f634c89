package terminal

import (
	"regexp"
	"strings"
)

// Decorative output that would pollute advisor context.
var (
	// rulePattern matches horizontal rules and box-drawing runs.
	rulePattern = regexp.MustCompile(`^[\s═─━╌┄\-=_*│┃╭╮╰╯┌┐└┘├┤]+$`)

	// chromePattern matches status-bar and hint lines with no semantic
	// content worth sending to the advisor.
	chromePattern = regexp.MustCompile(`(?i)(?:ctrl|shift|alt)\s*\+|tab to cycle|↵\s*send|⏵|esc to`)

	// spinnerPattern matches spinner glyphs anywhere in a line.
	spinnerPattern = regexp.MustCompile(`[⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏]`)
)

// CleanContext prepares a buffer snapshot for an advisor request:
// consecutive duplicates and exact repeats are dropped (terminals re-render
// the same frame many times), decorative rules and spinner frames are
// removed, and pure UI chrome is filtered out. This keeps the request
// bounded and the context signal-dense.
func CleanContext(lines []string) []string {
	cleaned := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))

	for _, line := range lines {
		line = strings.TrimRight(spinnerPattern.ReplaceAllString(line, ""), " ")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			continue
		}
		if rulePattern.MatchString(trimmed) || chromePattern.MatchString(trimmed) {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		cleaned = append(cleaned, line)
	}

	return cleaned
}
