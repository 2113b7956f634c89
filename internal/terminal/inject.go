package terminal

import (
	"context"
	"io"
	"time"
)

// lineTerminator is what Enter produces on a PTY in raw mode.
const lineTerminator = "\r"

// Injector types answers into the supervised process's input. Characters
// are paced with a fixed delay so the supervised program's line editing is
// never overwhelmed; the write always ends with a line terminator. The
// Injector runs on consultation tasks, never on the relay goroutine.
type Injector struct {
	w     io.Writer
	delay time.Duration
}

// NewInjector creates an Injector writing to w with the given
// inter-character delay.
func NewInjector(w io.Writer, delay time.Duration) *Injector {
	return &Injector{w: w, delay: delay}
}

// Type writes the answer rune by rune, pausing between runes, then sends
// the line terminator. Newlines inside the answer are flattened to spaces:
// a multi-line answer must arrive as a single input line, or the supervised
// program would treat each fragment as a separate submission.
func (i *Injector) Type(ctx context.Context, answer string) error {
	for _, r := range answer {
		if r == '\n' || r == '\r' {
			r = ' '
		}
		if _, err := i.w.Write([]byte(string(r))); err != nil {
			return err
		}
		if i.delay > 0 {
			select {
			case <-time.After(i.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	_, err := i.w.Write([]byte(lineTerminator))
	return err
}

// TypeToken writes a menu-choice token followed by the line terminator.
// An empty token sends the bare terminator, accepting the menu's default
// selection.
func (i *Injector) TypeToken(ctx context.Context, token string) error {
	if token == "" {
		_, err := i.w.Write([]byte(lineTerminator))
		return err
	}
	return i.Type(ctx, token)
}
