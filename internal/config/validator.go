package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "session.buffer_max_lines")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateAdvisor()...)
	errors = append(errors, c.validateSession()...)
	errors = append(errors, c.validateDetector()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateAdvisor() []ValidationError {
	var errors []ValidationError

	if c.Advisor.Model == "" {
		errors = append(errors, ValidationError{
			Field:   "advisor.model",
			Value:   c.Advisor.Model,
			Message: "must not be empty",
		})
	}
	if !strings.HasPrefix(c.Advisor.Endpoint, "http://") && !strings.HasPrefix(c.Advisor.Endpoint, "https://") {
		errors = append(errors, ValidationError{
			Field:   "advisor.endpoint",
			Value:   c.Advisor.Endpoint,
			Message: "must be an http(s) URL",
		})
	}
	if c.Advisor.RequestTimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "advisor.request_timeout_seconds",
			Value:   c.Advisor.RequestTimeoutSeconds,
			Message: "must be positive",
		})
	}
	if c.Advisor.MaxAnswerTokens <= 0 {
		errors = append(errors, ValidationError{
			Field:   "advisor.max_answer_tokens",
			Value:   c.Advisor.MaxAnswerTokens,
			Message: "must be positive",
		})
	}
	if c.Advisor.MaxMenuTokens <= 0 {
		errors = append(errors, ValidationError{
			Field:   "advisor.max_menu_tokens",
			Value:   c.Advisor.MaxMenuTokens,
			Message: "must be positive",
		})
	}
	if c.Advisor.Temperature < 0 || c.Advisor.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "advisor.temperature",
			Value:   c.Advisor.Temperature,
			Message: "must be between 0 and 2",
		})
	}

	return errors
}

func (c *Config) validateSession() []ValidationError {
	var errors []ValidationError

	if c.Session.StartupDelaySeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "session.startup_delay_seconds",
			Value:   c.Session.StartupDelaySeconds,
			Message: "must not be negative",
		})
	}
	if c.Session.ResponseDelaySeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "session.response_delay_seconds",
			Value:   c.Session.ResponseDelaySeconds,
			Message: "must not be negative",
		})
	}
	if c.Session.TypeDelayMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "session.type_delay_ms",
			Value:   c.Session.TypeDelayMs,
			Message: "must not be negative",
		})
	}
	if c.Session.InactivityWarningSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "session.inactivity_warning_seconds",
			Value:   c.Session.InactivityWarningSeconds,
			Message: "must not be negative (0 disables)",
		})
	}
	if c.Session.BufferMaxLines <= 0 {
		errors = append(errors, ValidationError{
			Field:   "session.buffer_max_lines",
			Value:   c.Session.BufferMaxLines,
			Message: "must be positive",
		})
	}
	if c.Session.BufferTrimLines <= 0 || c.Session.BufferTrimLines >= c.Session.BufferMaxLines {
		errors = append(errors, ValidationError{
			Field:   "session.buffer_trim_lines",
			Value:   c.Session.BufferTrimLines,
			Message: "must be positive and smaller than buffer_max_lines",
		})
	}

	return errors
}

func (c *Config) validateDetector() []ValidationError {
	var errors []ValidationError

	if c.Detector.MinQuestionLength <= 0 {
		errors = append(errors, ValidationError{
			Field:   "detector.min_question_length",
			Value:   c.Detector.MinQuestionLength,
			Message: "must be positive",
		})
	}
	if c.Detector.QuestionIntervalSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "detector.question_interval_seconds",
			Value:   c.Detector.QuestionIntervalSeconds,
			Message: "must not be negative",
		})
	}
	if c.Detector.ResponseMuteSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "detector.response_mute_seconds",
			Value:   c.Detector.ResponseMuteSeconds,
			Message: "must not be negative",
		})
	}
	// Menus may shorten the post-response mute but never extend or bypass it.
	if c.Detector.MenuMuteSeconds < 0 || c.Detector.MenuMuteSeconds > c.Detector.ResponseMuteSeconds {
		errors = append(errors, ValidationError{
			Field:   "detector.menu_mute_seconds",
			Value:   c.Detector.MenuMuteSeconds,
			Message: "must be between 0 and response_mute_seconds",
		})
	}
	if c.Detector.TypingSuppressSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "detector.typing_suppress_seconds",
			Value:   c.Detector.TypingSuppressSeconds,
			Message: "must not be negative",
		})
	}
	if c.Detector.MenuWindowLines <= 0 {
		errors = append(errors, ValidationError{
			Field:   "detector.menu_window_lines",
			Value:   c.Detector.MenuWindowLines,
			Message: "must be positive",
		})
	}
	if c.Detector.ConfirmLookbackLines <= 0 {
		errors = append(errors, ValidationError{
			Field:   "detector.confirm_lookback_lines",
			Value:   c.Detector.ConfirmLookbackLines,
			Message: "must be positive",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must not be negative (0 disables rotation)",
		})
	}
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must not be negative",
		})
	}

	return errors
}
