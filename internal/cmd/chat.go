package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filetalk/filetalk/internal/chat"
	"github.com/filetalk/filetalk/internal/config"
	"github.com/filetalk/filetalk/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive terminal chat client",
	Long: `Chat opens the interactive client on the shared history file. A join
record is published on startup and a leave record when you quit with
/quit, /exit, esc, or ctrl+c.`,
	RunE: runChat,
}

var chatReplay bool

func init() {
	chatCmd.Flags().BoolVar(&chatReplay, "replay", false, "show the full existing history before new messages")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := buildLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() { _ = log.Close() }()

	client, err := buildClient(cfg, chat.Identity{Nick: cfg.Chat.Nick, Source: cfg.Chat.Source}, log.WithComponent("tui"))
	if err != nil {
		return err
	}

	return tui.Run(client, tui.Options{
		Timestamps: cfg.TUI.Timestamps,
		MaxLines:   cfg.TUI.MaxLines,
		Replay:     chatReplay || cfg.Chat.Replay,
		WriteWake:  cfg.Chat.WriteWake,
	})
}
