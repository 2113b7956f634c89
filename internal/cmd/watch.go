package cmd

import (
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [command...]",
	Short: "Supervise without typing: print suggestions only",
	Long: `Like "auto", but nothing is ever typed into the supervised terminal.
Detected questions are still sent to the advisor and the suggested answers
are printed alongside the session output, leaving the decision to you.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSupervised(args, true)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
