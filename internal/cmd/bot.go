package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/filetalk/filetalk/internal/bot"
	"github.com/filetalk/filetalk/internal/chat"
	"github.com/filetalk/filetalk/internal/config"
	"github.com/filetalk/filetalk/internal/message"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the echo bot against the shared history file",
	Long: `Bot runs an automated participant that tails the history file and
replies to "` + bot.EchoCommand + `" commands. It announces itself with a
join record, runs until interrupted, and announces a leave record on
shutdown.`,
	RunE: runBot,
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := buildLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() { _ = log.Close() }()

	client, err := buildClient(cfg, chat.Identity{Nick: cfg.Bot.Nick, Source: message.SourceBot}, log)
	if err != nil {
		return err
	}

	opts := []bot.Option{
		bot.WithLogger(log),
		bot.WithIgnoreNicks(cfg.Bot.IgnoreNicks),
	}
	if cfg.Bot.CommandPrefix != "" {
		opts = append(opts, bot.WithCommandPrefix(cfg.Bot.CommandPrefix))
	}
	if cfg.Bot.Diagnostics {
		opts = append(opts, bot.WithDiagnostics())
	}

	b := bot.New(client, bot.EchoResponder{}, opts...)
	sub, err := b.Run(subscribeOptions(&cfg.Chat)...)
	if err != nil {
		return fmt.Errorf("failed to start bot: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s listening on %s (ctrl+c to stop)\n", cfg.Bot.Nick, cfg.Chat.HistoryFile)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	sub.Stop()
	if err := client.Leave(); err != nil {
		log.Warn("leave failed on shutdown", "error", err)
	}
	return nil
}
