package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete filetalk configuration
type Config struct {
	Chat    ChatConfig    `mapstructure:"chat"`
	Store   StoreConfig   `mapstructure:"store"`
	Bot     BotConfig     `mapstructure:"bot"`
	TUI     TUIConfig     `mapstructure:"tui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ChatConfig controls the client identity and tailing behavior
type ChatConfig struct {
	// Nick is the participant identity written into published records
	Nick string `mapstructure:"nick"`
	// Source is the provenance tag for published records (default: "local")
	Source string `mapstructure:"source"`
	// HistoryFile is the path to the shared append-only log (default: "history.jsonl")
	HistoryFile string `mapstructure:"history_file"`
	// PollIntervalMs is how often the tail polls the log for growth (in milliseconds)
	PollIntervalMs int `mapstructure:"poll_interval_ms"`
	// Replay delivers the full existing history on subscribe instead of
	// starting at the end of the log (default: false)
	Replay bool `mapstructure:"replay"`
	// WriteWake enables a filesystem watcher that wakes the tail as soon as
	// the log grows, instead of waiting out the poll interval (default: true)
	WriteWake bool `mapstructure:"write_wake"`
}

// StoreConfig controls the append log store
type StoreConfig struct {
	// MaxRecordBytes is the upper bound on one encoded record including its
	// newline. It must stay within the platform's atomic-write guarantee.
	MaxRecordBytes int `mapstructure:"max_record_bytes"`
}

// BotConfig controls automated responder behavior
type BotConfig struct {
	// Nick is the bot identity (default: "echo-bot")
	Nick string `mapstructure:"nick"`
	// CommandPrefix is the reserved prefix for commands intended for other
	// handlers; matching records are ignored. Empty disables the filter.
	CommandPrefix string `mapstructure:"command_prefix"`
	// IgnoreNicks lists glob patterns of nicks the bot never replies to
	IgnoreNicks []string `mapstructure:"ignore_nicks"`
	// Diagnostics publishes a best-effort diagnostic message when the
	// responder fails, instead of only logging (default: false)
	Diagnostics bool `mapstructure:"diagnostics"`
}

// TUIConfig controls the interactive terminal client
type TUIConfig struct {
	// Timestamps shows the ts field next to each message (default: true)
	Timestamps bool `mapstructure:"timestamps"`
	// MaxLines limits how many conversation lines are kept in memory
	MaxLines int `mapstructure:"max_lines"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether diagnostic logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// File is the log file path; empty logs to stderr
	File string `mapstructure:"file"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// PollInterval returns the poll interval as a time.Duration
func (c *ChatConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Chat: ChatConfig{
			Nick:           "",
			Source:         "local",
			HistoryFile:    "history.jsonl",
			PollIntervalMs: 500,
			Replay:         false,
			WriteWake:      true,
		},
		Store: StoreConfig{
			MaxRecordBytes: 4096,
		},
		Bot: BotConfig{
			Nick:          "echo-bot",
			CommandPrefix: "",
			IgnoreNicks:   []string{},
			Diagnostics:   false,
		},
		TUI: TUIConfig{
			Timestamps: true,
			MaxLines:   1000,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Chat defaults
	viper.SetDefault("chat.nick", defaults.Chat.Nick)
	viper.SetDefault("chat.source", defaults.Chat.Source)
	viper.SetDefault("chat.history_file", defaults.Chat.HistoryFile)
	viper.SetDefault("chat.poll_interval_ms", defaults.Chat.PollIntervalMs)
	viper.SetDefault("chat.replay", defaults.Chat.Replay)
	viper.SetDefault("chat.write_wake", defaults.Chat.WriteWake)

	// Store defaults
	viper.SetDefault("store.max_record_bytes", defaults.Store.MaxRecordBytes)

	// Bot defaults
	viper.SetDefault("bot.nick", defaults.Bot.Nick)
	viper.SetDefault("bot.command_prefix", defaults.Bot.CommandPrefix)
	viper.SetDefault("bot.ignore_nicks", defaults.Bot.IgnoreNicks)
	viper.SetDefault("bot.diagnostics", defaults.Bot.Diagnostics)

	// TUI defaults
	viper.SetDefault("tui.timestamps", defaults.TUI.Timestamps)
	viper.SetDefault("tui.max_lines", defaults.TUI.MaxLines)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "filetalk")
	}
	// Fall back to ~/.config/filetalk
	home, err := os.UserHomeDir()
	if err != nil {
		return ".filetalk"
	}
	return filepath.Join(home, ".config", "filetalk")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
