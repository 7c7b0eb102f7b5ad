// Package cmd defines the rostra command tree.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rostra-dev/rostra/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "rostra",
	Short: "Debate a political party chatbot from your terminal",
	Long: `Rostra is a terminal client for the debate platform: argue with a
party chatbot round by round, get an adjudicated summary when you end the
debate, and browse or vote on completed public debates.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/rostra/config.yaml)")
	rootCmd.PersistentFlags().String("server", "", "backend API base URL")
	rootCmd.PersistentFlags().String("token", "", "API bearer token")
	rootCmd.PersistentFlags().String("log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("server.base_url", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("server.token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
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
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("ROSTRA")
	// ROSTRA_SERVER_TOKEN maps to server.token, and so on for nested keys.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
