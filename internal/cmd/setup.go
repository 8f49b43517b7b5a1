package cmd

import (
	"fmt"

	"github.com/filetalk/filetalk/internal/chat"
	"github.com/filetalk/filetalk/internal/config"
	"github.com/filetalk/filetalk/internal/logging"
)

// buildLogger creates the process logger from the logging config. Callers
// must Close it on shutdown so a rotating file writer is flushed.
func buildLogger(cfg *config.LoggingConfig) (*logging.Logger, error) {
	if !cfg.Enabled {
		return logging.Nop(), nil
	}
	level := logging.ParseLevel(cfg.Level)
	if cfg.File == "" {
		return logging.NewStderr(level), nil
	}
	return logging.NewFile(cfg.File, level, logging.RotationConfig{
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	})
}

// buildClient creates a chat client from the resolved config under the
// given identity. The identity comes in separately because the chat and bot
// commands identify themselves through different config fields and sources.
func buildClient(cfg *config.Config, id chat.Identity, log *logging.Logger) (*chat.Client, error) {
	if id.Nick == "" {
		return nil, fmt.Errorf("a nick is required; pass --nick or set chat.nick in %s", config.ConfigFile())
	}

	return chat.NewClient(
		cfg.Chat.HistoryFile,
		id,
		chat.WithPollInterval(cfg.Chat.PollInterval()),
		chat.WithMaxRecordBytes(cfg.Store.MaxRecordBytes),
		chat.WithLogger(log),
	)
}

// subscribeOptions translates the chat config into per-subscription options.
func subscribeOptions(cfg *config.ChatConfig) []chat.SubscribeOption {
	var opts []chat.SubscribeOption
	if cfg.Replay {
		opts = append(opts, chat.WithReplay())
	}
	if cfg.WriteWake {
		opts = append(opts, chat.WithWriteWake())
	}
	return opts
}
