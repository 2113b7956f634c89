package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/johanfleming/hansel/internal/config"
)

var (
	uninstallYes   bool
	uninstallPurge bool
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the hansel binary and its data directory",
	Long: `Remove the installed binary and the data directory (transcript,
system prompt, pattern file, logs). With --purge the config directory is
removed as well.`,
	RunE: runUninstall,
}

func init() {
	uninstallCmd.Flags().BoolVar(&uninstallYes, "yes", false, "skip the confirmation prompt")
	uninstallCmd.Flags().BoolVar(&uninstallPurge, "purge", false, "also remove the config directory")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	dataDir := cfg.Paths.ResolveDataDir()

	targets := []string{dataDir}
	if uninstallPurge {
		targets = append(targets, config.ConfigDir())
	}
	if exe, err := os.Executable(); err == nil {
		targets = append(targets, exe)
	}

	fmt.Println("This will remove:")
	for _, t := range targets {
		fmt.Printf("  %s\n", t)
	}

	if !uninstallYes {
		fmt.Print("Continue? [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Println("aborted")
			return nil
		}
	}

	for _, t := range targets {
		if err := os.RemoveAll(t); err != nil {
			return fmt.Errorf("removing %s: %w", t, err)
		}
		fmt.Printf("removed %s\n", t)
	}
	return nil
}
