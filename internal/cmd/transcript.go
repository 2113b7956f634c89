package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johanfleming/hansel/internal/config"
	"github.com/johanfleming/hansel/internal/logging"
	"github.com/johanfleming/hansel/internal/transcript"
	"github.com/johanfleming/hansel/internal/tui"
)

var transcriptPlain bool

var transcriptCmd = &cobra.Command{
	Use:     "transcript",
	Aliases: []string{"buffer"},
	Short:   "Review recorded session output",
	RunE:    runTranscriptShow,
}

var transcriptShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Browse the transcript in a scrollable viewer",
	RunE:  runTranscriptShow,
}

var transcriptLastCmd = &cobra.Command{
	Use:   "last [lines]",
	Short: "Print the last lines of the transcript",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTranscriptLast,
}

var transcriptClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the recorded transcript",
	RunE:  runTranscriptClear,
}

func init() {
	transcriptShowCmd.Flags().BoolVar(&transcriptPlain, "plain", false, "print to stdout instead of the viewer")
	transcriptCmd.Flags().BoolVar(&transcriptPlain, "plain", false, "print to stdout instead of the viewer")

	rootCmd.AddCommand(transcriptCmd)
	transcriptCmd.AddCommand(transcriptShowCmd)
	transcriptCmd.AddCommand(transcriptLastCmd)
	transcriptCmd.AddCommand(transcriptClearCmd)
}

func transcriptStore() *transcript.Store {
	cfg := config.Get()
	return transcript.New(cfg.Paths.BufferFile(), logging.NopLogger())
}

func runTranscriptShow(cmd *cobra.Command, args []string) error {
	store := transcriptStore()
	lines, err := store.Tail(0)
	if err != nil {
		return fmt.Errorf("reading transcript: %w", err)
	}

	if transcriptPlain {
		for _, line := range lines {
			fmt.Println(line)
		}
		return nil
	}

	return tui.RunViewer("hansel transcript", lines)
}

func runTranscriptLast(cmd *cobra.Command, args []string) error {
	n := 20
	if len(args) == 1 {
		if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil || n <= 0 {
			return fmt.Errorf("invalid line count %q", args[0])
		}
	}

	store := transcriptStore()
	lines, err := store.Tail(n)
	if err != nil {
		return fmt.Errorf("reading transcript: %w", err)
	}
	if len(lines) == 0 {
		fmt.Println("transcript is empty")
		return nil
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

func runTranscriptClear(cmd *cobra.Command, args []string) error {
	store := transcriptStore()
	if err := store.Clear(); err != nil {
		return fmt.Errorf("clearing transcript: %w", err)
	}
	fmt.Println("transcript cleared")
	return nil
}
