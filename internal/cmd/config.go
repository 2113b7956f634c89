package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/johanfleming/hansel/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify hansel configuration",
	Long: `View or modify hansel configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  hansel config set advisor.model gpt-4o
  hansel config set session.response_delay_seconds 3
  hansel config set detector.min_question_length 20

Valid keys:
  advisor.model                       - Advisor model name
  advisor.request_timeout_seconds     - Advisor request timeout
  advisor.max_answer_tokens           - Token budget for free-form answers
  advisor.max_menu_tokens             - Token budget for menu picks
  advisor.temperature                 - Sampling temperature
  session.startup_delay_seconds       - Grace period before detection starts
  session.response_delay_seconds      - Pause before typing an answer
  session.type_delay_ms               - Per-character typing delay
  session.inactivity_warning_seconds  - Idle warning threshold
  session.buffer_max_lines            - Context buffer cap
  session.buffer_trim_lines           - Context buffer size after trimming
  detector.min_question_length        - Minimum question line length
  detector.question_interval_seconds  - Minimum gap between questions
  detector.response_mute_seconds      - Mute after a typed response
  detector.menu_mute_seconds          - Shortened mute for menus
  detector.typing_suppress_seconds    - Suppression after a keystroke
  detector.menu_window_lines          - Lines scanned for menu indicators
  detector.confirm_lookback_lines     - Lines scanned for a menu confirmation
  logging.enabled                     - Write a session log (true/false)
  logging.level                       - Log level (DEBUG, INFO, WARN, ERROR)
  paths.data_dir                      - Data directory`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/hansel/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	fmt.Println("Current configuration:")
	fmt.Println()

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Config file: (none - using defaults)\n")
	}
	fmt.Println()

	fmt.Println("advisor:")
	if cfg.Advisor.APIKey != "" {
		fmt.Printf("  api_key: (set)\n")
	} else {
		fmt.Printf("  api_key: (not set)\n")
	}
	fmt.Printf("  model: %s\n", cfg.Advisor.Model)
	fmt.Printf("  endpoint: %s\n", cfg.Advisor.Endpoint)
	fmt.Printf("  request_timeout_seconds: %d\n", cfg.Advisor.RequestTimeoutSeconds)
	fmt.Printf("  max_answer_tokens: %d\n", cfg.Advisor.MaxAnswerTokens)
	fmt.Printf("  max_menu_tokens: %d\n", cfg.Advisor.MaxMenuTokens)
	fmt.Printf("  temperature: %g\n", cfg.Advisor.Temperature)

	fmt.Println("session:")
	fmt.Printf("  startup_delay_seconds: %d\n", cfg.Session.StartupDelaySeconds)
	fmt.Printf("  response_delay_seconds: %d\n", cfg.Session.ResponseDelaySeconds)
	fmt.Printf("  type_delay_ms: %d\n", cfg.Session.TypeDelayMs)
	fmt.Printf("  inactivity_warning_seconds: %d\n", cfg.Session.InactivityWarningSeconds)
	fmt.Printf("  buffer_max_lines: %d\n", cfg.Session.BufferMaxLines)
	fmt.Printf("  buffer_trim_lines: %d\n", cfg.Session.BufferTrimLines)

	fmt.Println("detector:")
	fmt.Printf("  min_question_length: %d\n", cfg.Detector.MinQuestionLength)
	fmt.Printf("  question_interval_seconds: %d\n", cfg.Detector.QuestionIntervalSeconds)
	fmt.Printf("  response_mute_seconds: %d\n", cfg.Detector.ResponseMuteSeconds)
	fmt.Printf("  menu_mute_seconds: %d\n", cfg.Detector.MenuMuteSeconds)
	fmt.Printf("  typing_suppress_seconds: %d\n", cfg.Detector.TypingSuppressSeconds)
	fmt.Printf("  menu_window_lines: %d\n", cfg.Detector.MenuWindowLines)
	fmt.Printf("  confirm_lookback_lines: %d\n", cfg.Detector.ConfirmLookbackLines)

	fmt.Println("logging:")
	fmt.Printf("  enabled: %v\n", cfg.Logging.Enabled)
	fmt.Printf("  level: %s\n", cfg.Logging.Level)
	fmt.Printf("  max_size_mb: %d\n", cfg.Logging.MaxSizeMB)
	fmt.Printf("  max_backups: %d\n", cfg.Logging.MaxBackups)

	fmt.Println("paths:")
	fmt.Printf("  data_dir: %s\n", cfg.Paths.ResolveDataDir())

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// Validate the key exists
	validKeys := map[string]string{
		"advisor.model":                      "string",
		"advisor.endpoint":                   "string",
		"advisor.api_key":                    "string",
		"advisor.request_timeout_seconds":    "int",
		"advisor.max_answer_tokens":          "int",
		"advisor.max_menu_tokens":            "int",
		"advisor.temperature":                "float",
		"session.startup_delay_seconds":      "int",
		"session.response_delay_seconds":     "int",
		"session.type_delay_ms":              "int",
		"session.inactivity_warning_seconds": "int",
		"session.buffer_max_lines":           "int",
		"session.buffer_trim_lines":          "int",
		"detector.min_question_length":       "int",
		"detector.question_interval_seconds": "int",
		"detector.response_mute_seconds":     "int",
		"detector.menu_mute_seconds":         "int",
		"detector.typing_suppress_seconds":   "int",
		"detector.menu_window_lines":         "int",
		"detector.confirm_lookback_lines":    "int",
		"logging.enabled":                    "bool",
		"logging.level":                      "string",
		"logging.max_size_mb":                "int",
		"logging.max_backups":                "int",
		"paths.data_dir":                     "string",
	}

	keyType, ok := validKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'hansel config set --help' to see valid keys", key)
	}

	// Validate the value based on type
	var typedValue interface{}
	switch keyType {
	case "string":
		typedValue = value
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = value == "true"
	case "int":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if intVal < 0 {
			return fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		typedValue = intVal
	case "float":
		floatVal, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected number", key)
		}
		typedValue = floatVal
	}

	// Reject values the validator would refuse at load time
	viper.Set(key, typedValue)
	if _, err := config.Load(); err != nil {
		return fmt.Errorf("rejected: %w", err)
	}

	// Ensure config directory exists
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write to config file
	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Set %s = %v\n", key, typedValue)
	fmt.Printf("Config saved to %s\n", configFile)

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'hansel config set' to modify values", configFile)
	}

	// Create config directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	defaults := config.Default()
	configContent := fmt.Sprintf(`# Hansel configuration

advisor:
  # API key is usually provided via OPENAI_API_KEY instead
  # api_key: sk-...
  model: %s
  request_timeout_seconds: %d
  max_answer_tokens: %d
  max_menu_tokens: %d
  temperature: %g

session:
  startup_delay_seconds: %d
  response_delay_seconds: %d
  type_delay_ms: %d
  inactivity_warning_seconds: %d
  buffer_max_lines: %d
  buffer_trim_lines: %d

detector:
  min_question_length: %d
  question_interval_seconds: %d
  response_mute_seconds: %d
  menu_mute_seconds: %d
  typing_suppress_seconds: %d
  menu_window_lines: %d
  confirm_lookback_lines: %d

logging:
  enabled: %v
  level: %s
  max_size_mb: %d
  max_backups: %d

paths:
  # Empty means ~/.hansel
  data_dir: ""
`,
		defaults.Advisor.Model,
		defaults.Advisor.RequestTimeoutSeconds,
		defaults.Advisor.MaxAnswerTokens,
		defaults.Advisor.MaxMenuTokens,
		defaults.Advisor.Temperature,
		defaults.Session.StartupDelaySeconds,
		defaults.Session.ResponseDelaySeconds,
		defaults.Session.TypeDelayMs,
		defaults.Session.InactivityWarningSeconds,
		defaults.Session.BufferMaxLines,
		defaults.Session.BufferTrimLines,
		defaults.Detector.MinQuestionLength,
		defaults.Detector.QuestionIntervalSeconds,
		defaults.Detector.ResponseMuteSeconds,
		defaults.Detector.MenuMuteSeconds,
		defaults.Detector.TypingSuppressSeconds,
		defaults.Detector.MenuWindowLines,
		defaults.Detector.ConfirmLookbackLines,
		defaults.Logging.Enabled,
		defaults.Logging.Level,
		defaults.Logging.MaxSizeMB,
		defaults.Logging.MaxBackups,
	)

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	fmt.Println(config.ConfigFile())
	return nil
}
