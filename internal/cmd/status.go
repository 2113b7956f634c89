package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/johanfleming/hansel/internal/config"
	"github.com/johanfleming/hansel/internal/logging"
	"github.com/johanfleming/hansel/internal/transcript"
	"github.com/johanfleming/hansel/internal/tui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show hansel's configuration and data files at a glance",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	fmt.Println(tui.TitleStyle.Render("hansel status"))
	fmt.Println()

	if cfg.Advisor.APIKey != "" {
		fmt.Printf("Advisor: %s (API key set)\n", cfg.Advisor.Model)
	} else {
		fmt.Printf("Advisor: %s %s\n", cfg.Advisor.Model,
			tui.ErrorStyle.Render("(no API key - set OPENAI_API_KEY)"))
	}

	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Config file: (none - using defaults)\n")
	}
	fmt.Printf("Data directory: %s\n", cfg.Paths.ResolveDataDir())
	fmt.Printf("Delays: startup %s, response %s, type %s/char\n",
		cfg.Session.StartupDelay(), cfg.Session.ResponseDelay(), cfg.Session.TypeDelay())
	fmt.Println()

	store := transcript.New(cfg.Paths.BufferFile(), logging.NopLogger())
	lines, err := store.Tail(0)
	if err != nil {
		fmt.Printf("Transcript: unreadable (%v)\n", err)
	} else {
		fmt.Printf("Transcript: %d lines recorded\n", len(lines))
	}

	describeFile("System prompt", cfg.Paths.SystemPromptFile())
	describeFile("Pattern file", cfg.Paths.PatternsFile())
	if cfg.Logging.Enabled {
		describeFile("Session log", cfg.Paths.LogFile())
	} else {
		fmt.Println("Session log: disabled")
	}

	return nil
}

func describeFile(label, path string) {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("%s: %s (missing)\n", label, path)
		return
	}
	fmt.Printf("%s: %s (%d bytes)\n", label, path, info.Size())
}
