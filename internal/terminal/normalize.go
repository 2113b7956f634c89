package terminal

import (
	"regexp"
	"strings"
)

// escapePattern matches terminal escape sequences: CSI sequences
// (ESC [ params final), OSC sequences terminated by BEL or ST,
// charset designations, and single-character escape forms.
var escapePattern = regexp.MustCompile(
	`\x1b\[[0-9;?]*[ -/]*[@-~]` + // CSI: cursor movement, colors, modes
		`|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)` + // OSC: titles, hyperlinks
		`|\x1b[()][0-9A-B]` + // charset designation
		`|\x1b[@-Z\\-_]`, // other Fe escapes
)

// controlPattern matches non-printing control bytes. Newlines never reach
// StripEscapes; they are consumed as separators by the LineNormalizer.
var controlPattern = regexp.MustCompile(`[\x00-\x08\x0b-\x1f\x7f]`)

// StripEscapes removes escape sequences and control bytes from a single
// line of terminal output.
func StripEscapes(line string) string {
	line = escapePattern.ReplaceAllString(line, "")
	return controlPattern.ReplaceAllString(line, "")
}

// LineNormalizer reassembles raw PTY read chunks into normalized lines.
// Chunks carry no line-boundary guarantee, so a partial trailing line is
// retained across calls; it is emitted when its separator arrives or when
// the session ends (Flush). A LineNormalizer is not safe for concurrent
// use; the relay loop is its only caller.
type LineNormalizer struct {
	partial []byte
	sawCR   bool
}

// NewLineNormalizer returns an empty normalizer.
func NewLineNormalizer() *LineNormalizer {
	return &LineNormalizer{}
}

// Feed consumes a chunk and returns the complete normalized lines it
// finished. Lines are split on \r\n, \n, or \r; a \r\n pair counts as one
// separator even when split across chunks. Lines that are empty after
// stripping are dropped: a chunk of pure escape sequences yields nothing.
// Feed never blocks and never drops printable bytes: an unterminated tail
// stays buffered for the next call.
func (n *LineNormalizer) Feed(chunk []byte) []string {
	var lines []string

	emit := func() {
		if line := n.take(); line != "" {
			lines = append(lines, line)
		}
	}

	for _, b := range chunk {
		if n.sawCR {
			n.sawCR = false
			if b == '\n' {
				continue // second half of \r\n
			}
		}

		switch b {
		case '\n':
			emit()
		case '\r':
			emit()
			n.sawCR = true
		default:
			n.partial = append(n.partial, b)
		}
	}

	return lines
}

// Flush returns the buffered partial line, normalized, and resets the
// accumulator. The second return is false when nothing was buffered.
func (n *LineNormalizer) Flush() (string, bool) {
	if len(n.partial) == 0 {
		return "", false
	}
	line := n.take()
	return line, line != ""
}

// take normalizes and clears the accumulated partial line.
func (n *LineNormalizer) take() string {
	line := StripEscapes(string(n.partial))
	n.partial = n.partial[:0]
	return strings.TrimRight(line, " ")
}
