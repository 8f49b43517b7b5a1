// Package cmd wires the filetalk command-line interface. The core chat
// library never parses flags itself; everything a launcher must supply (a
// history file path, an identity, a poll interval) flows through here.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/filetalk/filetalk/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "filetalk",
	Short: "Local file-backed chat over a shared append-only log",
	Long: `Filetalk lets several local processes (interactive users and bots)
exchange short text messages through one append-only JSONL file on a
shared filesystem, with no network channel and no broker.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/filetalk/config.yaml)")
	rootCmd.PersistentFlags().StringP("nick", "n", "", "participant nickname")
	rootCmd.PersistentFlags().StringP("history-file", "f", "", "path to the shared history file")
	rootCmd.PersistentFlags().Int("poll-interval-ms", 0, "poll interval in milliseconds")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("chat.nick", rootCmd.PersistentFlags().Lookup("nick"))
	_ = viper.BindPFlag("chat.history_file", rootCmd.PersistentFlags().Lookup("history-file"))
	_ = viper.BindPFlag("chat.poll_interval_ms", rootCmd.PersistentFlags().Lookup("poll-interval-ms"))
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
		viper.AddConfigPath("$HOME/.config/filetalk")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FILETALK")
	// Replace dots with underscores for nested keys in env vars
	// e.g., FILETALK_CHAT_POLL_INTERVAL_MS for chat.poll_interval_ms
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
