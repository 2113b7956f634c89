package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/johanfleming/hansel/internal/advisor"
	"github.com/johanfleming/hansel/internal/config"
	"github.com/johanfleming/hansel/internal/logging"
	"github.com/johanfleming/hansel/internal/patterns"
	"github.com/johanfleming/hansel/internal/terminal"
	"github.com/johanfleming/hansel/internal/transcript"
	"github.com/johanfleming/hansel/internal/tui"
)

// defaultCommand is what gets supervised when no command is given.
const defaultCommand = "claude"

// runSupervised is the shared body of `hansel auto` and `hansel watch`.
// In observe mode suggestions are printed instead of typed.
func runSupervised(args []string, observe bool) error {
	cfg := config.Get()
	if cfg.Advisor.APIKey == "" {
		return fmt.Errorf("no advisor API key: set OPENAI_API_KEY or advisor.api_key in %s", config.ConfigFile())
	}

	if err := cfg.Paths.EnsureDirs(); err != nil {
		return fmt.Errorf("preparing data directory: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	command := defaultCommand
	if len(args) > 0 {
		command = strings.Join(args, " ")
	}

	client := advisor.New(advisor.Options{
		APIKey:          cfg.Advisor.APIKey,
		Model:           cfg.Advisor.Model,
		Endpoint:        cfg.Advisor.Endpoint,
		SystemPrompt:    loadSystemPrompt(cfg),
		Temperature:     cfg.Advisor.Temperature,
		MaxAnswerTokens: cfg.Advisor.MaxAnswerTokens,
		MaxMenuTokens:   cfg.Advisor.MaxMenuTokens,
		Logger:          logger,
	})

	store := transcript.New(cfg.Paths.BufferFile(), logger)
	defer store.Close()
	store.StartSession(command)

	patternSet := patterns.NewSet(cfg.Paths.PatternsFile(), logger)
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		if err := patternSet.Watch(watchDone); err != nil {
			logger.Warn("pattern watch unavailable", "error", err)
		}
	}()

	session, err := terminal.NewSession(terminal.SessionOptions{
		Command:  command,
		Observe:  observe,
		Advisor:  client,
		Patterns: patternSet,
		Recorder: store,
		Logger:   logger,
		Classifier: terminal.ClassifierConfig{
			MinLineLength:        cfg.Detector.MinQuestionLength,
			MenuWindowLines:      cfg.Detector.MenuWindowLines,
			ConfirmLookbackLines: cfg.Detector.ConfirmLookbackLines,
		},
		Guard: terminal.GuardConfig{
			QuestionInterval: cfg.Detector.QuestionInterval(),
			ResponseMute:     cfg.Detector.ResponseMute(),
			MenuMute:         cfg.Detector.MenuMute(),
			TypingSuppress:   cfg.Detector.TypingSuppress(),
		},
		BufferMax:         cfg.Session.BufferMaxLines,
		BufferTrim:        cfg.Session.BufferTrimLines,
		StartupGrace:      cfg.Session.StartupDelay(),
		InactivityWarning: cfg.Session.InactivityWarning(),
		TypeDelay:         cfg.Session.TypeDelay(),
		ResponseDelay:     cfg.Session.ResponseDelay(),
		AdvisorTimeout:    cfg.Advisor.RequestTimeout(),
		OnAdvice:          printAdvice,
		OnWarning:         printWarning,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := session.Run(ctx)
	session.Wait()
	return runErr
}

// printAdvice reports a watch-mode suggestion. It writes to stderr with
// explicit \r\n line endings because the controlling terminal is still in
// raw mode while the session runs.
func printAdvice(question, answer string) {
	fmt.Fprintf(os.Stderr, "\r\n%s %s\r\n%s\r\n",
		tui.HeaderStyle.Render("[hansel]"),
		tui.MutedStyle.Render(question),
		tui.AdviceStyle.Render(answer))
}

// printWarning surfaces a session warning on stderr, raw-mode line
// endings included, so the operator sees it without opening the log.
func printWarning(msg string) {
	fmt.Fprintf(os.Stderr, "\r\n%s %s\r\n",
		tui.HeaderStyle.Render("[hansel]"),
		tui.ErrorStyle.Render(msg))
}

// newLogger builds the session logger per the logging config.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	return logging.NewFile(cfg.Paths.LogFile(), cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}

// loadSystemPrompt reads the user's system prompt file, falling back to the
// built-in default when the file is missing or empty.
func loadSystemPrompt(cfg *config.Config) string {
	data, err := os.ReadFile(cfg.Paths.SystemPromptFile())
	if err != nil || len(strings.TrimSpace(string(data))) == 0 {
		return config.DefaultSystemPrompt
	}
	return string(data)
}
