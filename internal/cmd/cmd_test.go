package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/johanfleming/hansel/internal/config"
)

func TestCommandsRegistered(t *testing.T) {
	want := []string{"auto", "watch", "ask", "transcript", "config", "status", "uninstall"}

	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range want {
		if !registered[name] {
			t.Errorf("command %q not registered on root", name)
		}
	}
}

func TestTranscriptAlias(t *testing.T) {
	for _, c := range rootCmd.Commands() {
		if c.Name() == "transcript" {
			for _, a := range c.Aliases {
				if a == "buffer" {
					return
				}
			}
			t.Fatal("transcript command missing buffer alias")
		}
	}
	t.Fatal("transcript command not found")
}

func TestLoadSystemPromptFallback(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()

	// No file on disk: built-in default.
	if got := loadSystemPrompt(cfg); got != config.DefaultSystemPrompt {
		t.Error("missing prompt file did not fall back to the default")
	}

	// Empty file: still the default.
	path := cfg.Paths.SystemPromptFile()
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := loadSystemPrompt(cfg); got != config.DefaultSystemPrompt {
		t.Error("empty prompt file did not fall back to the default")
	}

	// Real content wins.
	if err := os.WriteFile(path, []byte("You are a terse reviewer."), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := loadSystemPrompt(cfg); got != "You are a terse reviewer." {
		t.Errorf("loadSystemPrompt = %q", got)
	}
}

func TestDefaultCommand(t *testing.T) {
	if defaultCommand != "claude" {
		t.Errorf("defaultCommand = %q", defaultCommand)
	}
}

func TestConfigSetRejectsUnknownKey(t *testing.T) {
	err := runConfigSet(configSetCmd, []string{"nonsense.key", "1"})
	if err == nil || !strings.Contains(err.Error(), "unknown configuration key") {
		t.Errorf("err = %v, want unknown-key error", err)
	}
}

func TestUninstallTargets(t *testing.T) {
	// Sanity check that the data dir resolution the uninstall command
	// relies on expands relative to HOME.
	t.Setenv("HOME", t.TempDir())
	cfg := config.Default()
	dir := cfg.Paths.ResolveDataDir()
	if !strings.HasPrefix(dir, os.Getenv("HOME")) {
		t.Errorf("data dir %q not under HOME", dir)
	}
	if filepath.Base(dir) != ".hansel" {
		t.Errorf("data dir %q, want ~/.hansel", dir)
	}
}
