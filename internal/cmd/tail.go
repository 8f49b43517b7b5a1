package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/filetalk/filetalk/internal/chat"
	"github.com/filetalk/filetalk/internal/config"
	"github.com/filetalk/filetalk/internal/message"
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print the conversation without joining it",
	Long: `Tail prints records from the shared history file to stdout. It never
publishes; no join, leave, or message records are written. By default it
prints the existing history and keeps following new records until
interrupted.`,
	RunE: runTail,
}

var tailFollow bool

func init() {
	tailCmd.Flags().BoolVarP(&tailFollow, "follow", "F", true, "keep following the log for new records")
	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := buildLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() { _ = log.Close() }()

	// Tail is a pure reader. The nick only names the consumer in
	// diagnostics, so it doesn't need to be configured.
	nick := cfg.Chat.Nick
	if nick == "" {
		nick = "tail"
	}

	client, err := buildClient(cfg, chat.Identity{Nick: nick, Source: cfg.Chat.Source}, log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if !tailFollow {
		records, err := client.History()
		if err != nil {
			return err
		}
		for _, rec := range records {
			printRecord(out, rec)
		}
		return nil
	}

	subOpts := append(subscribeOptions(&cfg.Chat), chat.WithReplay())
	sub, err := client.SubscribeFunc(func(rec message.Record) {
		printRecord(out, rec)
	}, subOpts...)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	sub.Stop()
	return nil
}

// printRecord writes one record in the plain text form the interactive
// client uses, without styling.
func printRecord(w io.Writer, rec message.Record) {
	switch rec.Type {
	case message.TypeJoin:
		fmt.Fprintf(w, "[%s] -- %s joined --\n", rec.TS, rec.Nick)
	case message.TypeLeave:
		fmt.Fprintf(w, "[%s] -- %s left --\n", rec.TS, rec.Nick)
	default:
		fmt.Fprintf(w, "[%s] %s: %s\n", rec.TS, rec.Nick, rec.Text)
	}
}
