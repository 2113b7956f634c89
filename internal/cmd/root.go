package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/johanfleming/hansel/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "hansel",
	Short: "Terminal supervisor that answers a coding assistant's questions",
	Long: `Hansel runs a coding-assistant CLI under a pseudo-terminal, watches its
output for questions and selection menus, consults an external advisor
model, and types the advice back so long-running sessions keep moving
without a human at the keyboard.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/hansel/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/hansel")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("HANSEL")
	// Replace dots with underscores for nested keys in env vars
	// e.g., HANSEL_ADVISOR_MODEL for advisor.model
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
