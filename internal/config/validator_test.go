package config

import (
	"strings"
	"testing"
)

func findError(errs []ValidationError, field string) *ValidationError {
	for i := range errs {
		if errs[i].Field == field {
			return &errs[i]
		}
	}
	return nil
}

func TestValidateDetectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty model", func(c *Config) { c.Advisor.Model = "" }, "advisor.model"},
		{"bad endpoint", func(c *Config) { c.Advisor.Endpoint = "ftp://x" }, "advisor.endpoint"},
		{"zero timeout", func(c *Config) { c.Advisor.RequestTimeoutSeconds = 0 }, "advisor.request_timeout_seconds"},
		{"temperature out of range", func(c *Config) { c.Advisor.Temperature = 3 }, "advisor.temperature"},
		{"negative startup delay", func(c *Config) { c.Session.StartupDelaySeconds = -1 }, "session.startup_delay_seconds"},
		{"zero buffer cap", func(c *Config) { c.Session.BufferMaxLines = 0 }, "session.buffer_max_lines"},
		{"trim above cap", func(c *Config) { c.Session.BufferTrimLines = 500 }, "session.buffer_trim_lines"},
		{"zero min length", func(c *Config) { c.Detector.MinQuestionLength = 0 }, "detector.min_question_length"},
		{"menu mute above response mute", func(c *Config) { c.Detector.MenuMuteSeconds = 99 }, "detector.menu_mute_seconds"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			errs := cfg.Validate()
			if findError(errs, tc.field) == nil {
				t.Errorf("Validate() missing error for %s, got: %v", tc.field, errs)
			}
		})
	}
}

func TestValidationErrorsFormatting(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a.b", Value: 1, Message: "bad"},
		{Field: "c.d", Value: "x", Message: "worse"},
	}

	msg := errs.Error()
	if !strings.Contains(msg, "2 validation errors") {
		t.Errorf("expected count header, got: %q", msg)
	}
	if !strings.Contains(msg, "a.b: bad (got: 1)") {
		t.Errorf("expected first error, got: %q", msg)
	}

	single := ValidationErrors{{Field: "a.b", Value: 1, Message: "bad"}}
	if single.Error() != "a.b: bad (got: 1)" {
		t.Errorf("single error format = %q", single.Error())
	}

	var empty ValidationErrors
	if empty.Error() != "" {
		t.Errorf("empty errors should format to empty string")
	}
}
