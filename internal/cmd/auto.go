package cmd

import (
	"github.com/spf13/cobra"
)

var autoCmd = &cobra.Command{
	Use:   "auto [command...]",
	Short: "Supervise a coding assistant and answer its questions",
	Long: `Run a coding-assistant CLI under a pseudo-terminal with full
supervision: detected questions and menus are sent to the advisor and the
advice is typed back automatically.

The command defaults to "claude". Everything after "auto" is passed to the
shell, so flags for the supervised program work unchanged:

  hansel auto
  hansel auto claude --continue
  hansel auto aider --model sonnet`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSupervised(args, false)
	},
}

func init() {
	rootCmd.AddCommand(autoCmd)
}
