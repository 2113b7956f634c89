package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete Hansel configuration
type Config struct {
	Advisor  AdvisorConfig  `mapstructure:"advisor"`
	Session  SessionConfig  `mapstructure:"session"`
	Detector DetectorConfig `mapstructure:"detector"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Paths    PathsConfig    `mapstructure:"paths"`
}

// AdvisorConfig controls the external advisor (ChatGPT) collaborator
type AdvisorConfig struct {
	// APIKey is the OpenAI API key. Required for autonomous mode and ask.
	APIKey string `mapstructure:"api_key"`
	// Model is the model identifier sent with each request (default: "gpt-4o")
	Model string `mapstructure:"model"`
	// Endpoint is the chat-completions URL; overridable for proxies and tests
	Endpoint string `mapstructure:"endpoint"`
	// RequestTimeoutSeconds bounds each advisor HTTP request (default: 30)
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
	// MaxAnswerTokens is the response-length budget for free-form answers (default: 500)
	MaxAnswerTokens int `mapstructure:"max_answer_tokens"`
	// MaxMenuTokens is the tight budget for menu-choice answers (default: 8)
	MaxMenuTokens int `mapstructure:"max_menu_tokens"`
	// Temperature for free-form answers (default: 0.7)
	Temperature float64 `mapstructure:"temperature"`
}

// SessionConfig controls supervised-session behavior
type SessionConfig struct {
	// StartupDelaySeconds is the grace period before question detection starts (default: 5)
	StartupDelaySeconds int `mapstructure:"startup_delay_seconds"`
	// ResponseDelaySeconds is the pause between receiving an advisor answer and typing it (default: 2)
	ResponseDelaySeconds int `mapstructure:"response_delay_seconds"`
	// TypeDelayMs is the inter-character delay while typing a response (default: 12)
	TypeDelayMs int `mapstructure:"type_delay_ms"`
	// InactivityWarningSeconds warns once when no output arrives for this long
	// while listening; 0 disables the warning (default: 120)
	InactivityWarningSeconds int `mapstructure:"inactivity_warning_seconds"`
	// BufferMaxLines caps the rolling output buffer (default: 200)
	BufferMaxLines int `mapstructure:"buffer_max_lines"`
	// BufferTrimLines is the size the buffer is trimmed to when the cap is hit (default: 100)
	BufferTrimLines int `mapstructure:"buffer_trim_lines"`
}

// DetectorConfig controls the question/menu heuristics and cooldowns
type DetectorConfig struct {
	// MinQuestionLength rejects lines shorter than this many characters (default: 15)
	MinQuestionLength int `mapstructure:"min_question_length"`
	// QuestionIntervalSeconds is the minimum interval between two question detections (default: 20)
	QuestionIntervalSeconds int `mapstructure:"question_interval_seconds"`
	// ResponseMuteSeconds mutes all detection after a response is injected (default: 8)
	ResponseMuteSeconds int `mapstructure:"response_mute_seconds"`
	// MenuMuteSeconds is the shorter post-response mute that menu prompts observe (default: 3)
	MenuMuteSeconds int `mapstructure:"menu_mute_seconds"`
	// TypingSuppressSeconds suppresses detection after operator keystrokes (default: 2)
	TypingSuppressSeconds int `mapstructure:"typing_suppress_seconds"`
	// MenuWindowLines is how many recent lines are inspected for menu indicators (default: 15)
	MenuWindowLines int `mapstructure:"menu_window_lines"`
	// ConfirmLookbackLines is how far back a confirmation question is searched for (default: 12)
	ConfirmLookbackLines int `mapstructure:"confirm_lookback_lines"`
}

// LoggingConfig controls the session debug log
type LoggingConfig struct {
	// Enabled controls whether the session log is written (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// PathsConfig controls where Hansel stores data
type PathsConfig struct {
	// DataDir is the directory for the transcript buffer, logs, system prompt
	// and pattern overrides. Empty means ~/.hansel. Supports ~ expansion.
	DataDir string `mapstructure:"data_dir"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Advisor: AdvisorConfig{
			Model:                 "gpt-4o",
			Endpoint:              "https://api.openai.com/v1/chat/completions",
			RequestTimeoutSeconds: 30,
			MaxAnswerTokens:       500,
			MaxMenuTokens:         8,
			Temperature:           0.7,
		},
		Session: SessionConfig{
			StartupDelaySeconds:      5,
			ResponseDelaySeconds:     2,
			TypeDelayMs:              12,
			InactivityWarningSeconds: 120,
			BufferMaxLines:           200,
			BufferTrimLines:          100,
		},
		Detector: DetectorConfig{
			MinQuestionLength:       15,
			QuestionIntervalSeconds: 20,
			ResponseMuteSeconds:     8,
			MenuMuteSeconds:         3,
			TypingSuppressSeconds:   2,
			MenuWindowLines:         15,
			ConfirmLookbackLines:    12,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Paths: PathsConfig{
			DataDir: "", // Empty means ~/.hansel
		},
	}
}

// RequestTimeout returns the advisor request timeout as a time.Duration
func (a *AdvisorConfig) RequestTimeout() time.Duration {
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// StartupDelay returns the startup grace period as a time.Duration
func (s *SessionConfig) StartupDelay() time.Duration {
	return time.Duration(s.StartupDelaySeconds) * time.Second
}

// ResponseDelay returns the pre-injection pause as a time.Duration
func (s *SessionConfig) ResponseDelay() time.Duration {
	return time.Duration(s.ResponseDelaySeconds) * time.Second
}

// TypeDelay returns the inter-character typing delay as a time.Duration
func (s *SessionConfig) TypeDelay() time.Duration {
	return time.Duration(s.TypeDelayMs) * time.Millisecond
}

// InactivityWarning returns the inactivity threshold (0 means disabled)
func (s *SessionConfig) InactivityWarning() time.Duration {
	return time.Duration(s.InactivityWarningSeconds) * time.Second
}

// QuestionInterval returns the minimum inter-question interval
func (d *DetectorConfig) QuestionInterval() time.Duration {
	return time.Duration(d.QuestionIntervalSeconds) * time.Second
}

// ResponseMute returns the post-response mute period
func (d *DetectorConfig) ResponseMute() time.Duration {
	return time.Duration(d.ResponseMuteSeconds) * time.Second
}

// MenuMute returns the shortened post-response mute observed by menu prompts
func (d *DetectorConfig) MenuMute() time.Duration {
	return time.Duration(d.MenuMuteSeconds) * time.Second
}

// TypingSuppress returns the operator-typing suppression window
func (d *DetectorConfig) TypingSuppress() time.Duration {
	return time.Duration(d.TypingSuppressSeconds) * time.Second
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("advisor.model", defaults.Advisor.Model)
	viper.SetDefault("advisor.endpoint", defaults.Advisor.Endpoint)
	viper.SetDefault("advisor.request_timeout_seconds", defaults.Advisor.RequestTimeoutSeconds)
	viper.SetDefault("advisor.max_answer_tokens", defaults.Advisor.MaxAnswerTokens)
	viper.SetDefault("advisor.max_menu_tokens", defaults.Advisor.MaxMenuTokens)
	viper.SetDefault("advisor.temperature", defaults.Advisor.Temperature)

	viper.SetDefault("session.startup_delay_seconds", defaults.Session.StartupDelaySeconds)
	viper.SetDefault("session.response_delay_seconds", defaults.Session.ResponseDelaySeconds)
	viper.SetDefault("session.type_delay_ms", defaults.Session.TypeDelayMs)
	viper.SetDefault("session.inactivity_warning_seconds", defaults.Session.InactivityWarningSeconds)
	viper.SetDefault("session.buffer_max_lines", defaults.Session.BufferMaxLines)
	viper.SetDefault("session.buffer_trim_lines", defaults.Session.BufferTrimLines)

	viper.SetDefault("detector.min_question_length", defaults.Detector.MinQuestionLength)
	viper.SetDefault("detector.question_interval_seconds", defaults.Detector.QuestionIntervalSeconds)
	viper.SetDefault("detector.response_mute_seconds", defaults.Detector.ResponseMuteSeconds)
	viper.SetDefault("detector.menu_mute_seconds", defaults.Detector.MenuMuteSeconds)
	viper.SetDefault("detector.typing_suppress_seconds", defaults.Detector.TypingSuppressSeconds)
	viper.SetDefault("detector.menu_window_lines", defaults.Detector.MenuWindowLines)
	viper.SetDefault("detector.confirm_lookback_lines", defaults.Detector.ConfirmLookbackLines)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	viper.SetDefault("paths.data_dir", defaults.Paths.DataDir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.applyLegacyEnv()

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		cfg = Default()
		cfg.applyLegacyEnv()
	}
	return cfg
}

// applyLegacyEnv honors the environment variable names used by earlier
// versions (OPENAI_API_KEY, OPENAI_MODEL, RESPONSE_DELAY, STARTUP_DELAY).
// They only fill in values the config file left unset, except for the API
// key, which is commonly provided via environment only.
func (c *Config) applyLegacyEnv() {
	if c.Advisor.APIKey == "" {
		c.Advisor.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" && !viper.InConfig("advisor.model") {
		c.Advisor.Model = v
	}
	if v := os.Getenv("RESPONSE_DELAY"); v != "" && !viper.InConfig("session.response_delay_seconds") {
		if n, err := strconv.Atoi(v); err == nil {
			c.Session.ResponseDelaySeconds = n
		}
	}
	if v := os.Getenv("STARTUP_DELAY"); v != "" && !viper.InConfig("session.startup_delay_seconds") {
		if n, err := strconv.Atoi(v); err == nil {
			c.Session.StartupDelaySeconds = n
		}
	}
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hansel")
	}
	// Fall back to ~/.config/hansel
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hansel"
	}
	return filepath.Join(home, ".config", "hansel")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
