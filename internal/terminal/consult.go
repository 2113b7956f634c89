package terminal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/johanfleming/hansel/internal/logging"
)

// Advisor produces answers to questions detected in the supervised
// program's output.
type Advisor interface {
	// Consult answers a free-form question. The recent lines give the
	// advisor context about what the supervised program was doing.
	Consult(ctx context.Context, question string, recent []string) (string, error)

	// ConsultMenu picks an option from an interactive menu. The menu
	// slice holds the cleaned lines of the menu frame. The result is a
	// short token such as "1" or "y".
	ConsultMenu(ctx context.Context, menu []string) (string, error)
}

// consultKind distinguishes the two dispatch paths.
type consultKind int

const (
	consultQuestion consultKind = iota
	consultMenu
)

// consultRequest is the unit of work handed off from the relay goroutine
// to a consultation task.
type consultRequest struct {
	kind     consultKind
	question string
	context  []string
}

// consulter runs consultation tasks. It holds everything a task needs so
// that the relay goroutine only hands over a consultRequest and moves on.
type consulter struct {
	advisor  Advisor
	guard    *Guard
	injector *Injector
	logger   *logging.Logger

	// observe disables injection: advice is reported through onAdvice
	// instead of being typed back into the terminal.
	observe  bool
	onAdvice func(question, answer string)

	responseDelay time.Duration
	timeout       time.Duration

	// terminated reports whether the session ended while the task was in
	// flight. A late answer is discarded rather than typed into a dead
	// terminal.
	terminated func() bool
}

// run executes one consultation end to end. It is called on its own
// goroutine; the relay never waits for it.
func (c *consulter) run(ctx context.Context, req consultRequest) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	recent := CleanContext(req.context)

	var (
		answer string
		err    error
	)
	switch req.kind {
	case consultMenu:
		answer, err = c.advisor.ConsultMenu(ctx, recent)
		if err != nil {
			c.logger.Warn("menu consultation failed", "error", err)
			// A menu cannot be answered with prose. Fall back to the
			// first option so the session keeps moving.
			answer = "1"
		}
	default:
		answer, err = c.advisor.Consult(ctx, req.question, recent)
		if err != nil {
			c.logger.Warn("consultation failed", "error", err)
			answer = fmt.Sprintf("Error: advisor request failed - %v", err)
		}
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		c.logger.Warn("advisor returned empty answer", "question", req.question)
		return
	}

	if c.observe {
		if c.onAdvice != nil {
			c.onAdvice(req.question, answer)
		}
		return
	}

	if c.terminated != nil && c.terminated() {
		c.logger.Info("discarding answer, session ended", "question", req.question)
		return
	}

	// Register the pending answer before any byte of it reaches the
	// terminal, so the echo that comes straight back is recognized.
	c.guard.SetPending(answer)

	if c.responseDelay > 0 {
		select {
		case <-time.After(c.responseDelay):
		case <-ctx.Done():
			return
		}
	}

	if c.terminated != nil && c.terminated() {
		c.logger.Info("discarding answer, session ended", "question", req.question)
		return
	}

	c.guard.NoteTyping()
	var typeErr error
	if req.kind == consultMenu {
		typeErr = c.injector.TypeToken(ctx, answer)
	} else {
		typeErr = c.injector.Type(ctx, answer)
	}
	if typeErr != nil {
		c.logger.Warn("failed to type answer", "error", typeErr)
		return
	}
	c.guard.NoteResponse()

	c.logger.Info("answer delivered",
		"question", req.question,
		"answer", answer,
	)
}
