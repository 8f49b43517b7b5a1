package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/filetalk/filetalk/internal/chat"
	"github.com/filetalk/filetalk/internal/config"
)

var sendCmd = &cobra.Command{
	Use:   "send <text>...",
	Short: "Publish a single message without opening the client",
	Long: `Send appends one message record to the shared history file and exits.
Useful from scripts and cron jobs; no join or leave records are written.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := buildLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() { _ = log.Close() }()

	client, err := buildClient(cfg, chat.Identity{Nick: cfg.Chat.Nick, Source: cfg.Chat.Source}, log)
	if err != nil {
		return err
	}

	return client.Say(strings.Join(args, " "))
}
