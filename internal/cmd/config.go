package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/filetalk/filetalk/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify filetalk configuration",
	Long: `View or modify filetalk configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  filetalk config set chat.nick alice
  filetalk config set chat.history_file /tmp/team-chat.jsonl
  filetalk config set chat.poll_interval_ms 250

Valid keys:
  chat.nick               - Participant nickname
  chat.source             - Provenance tag for published records
  chat.history_file       - Path to the shared history file
  chat.poll_interval_ms   - Tail poll interval in milliseconds
  chat.replay             - Deliver existing history on subscribe (true/false)
  chat.write_wake         - Wake the tail on file writes (true/false)
  store.max_record_bytes  - Maximum encoded record size in bytes
  bot.nick                - Bot nickname
  bot.command_prefix      - Command prefix the bot ignores
  bot.diagnostics         - Publish diagnostics on responder failure (true/false)
  tui.timestamps          - Show timestamps next to messages (true/false)
  tui.max_lines           - Conversation lines kept in memory
  logging.enabled         - Enable diagnostic logging (true/false)
  logging.level           - Log level: debug, info, warn, error
  logging.file            - Log file path (empty logs to stderr)
  logging.max_size_mb     - Log size before rotation
  logging.max_backups     - Rotated log files to keep`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/filetalk/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	fmt.Println("Current configuration:")
	fmt.Println()

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Config file: (none - using defaults)\n")
	}
	fmt.Println()

	fmt.Println("chat:")
	fmt.Printf("  nick: %s\n", cfg.Chat.Nick)
	fmt.Printf("  source: %s\n", cfg.Chat.Source)
	fmt.Printf("  history_file: %s\n", cfg.Chat.HistoryFile)
	fmt.Printf("  poll_interval_ms: %d\n", cfg.Chat.PollIntervalMs)
	fmt.Printf("  replay: %v\n", cfg.Chat.Replay)
	fmt.Printf("  write_wake: %v\n", cfg.Chat.WriteWake)

	fmt.Println("store:")
	fmt.Printf("  max_record_bytes: %d\n", cfg.Store.MaxRecordBytes)

	fmt.Println("bot:")
	fmt.Printf("  nick: %s\n", cfg.Bot.Nick)
	fmt.Printf("  command_prefix: %s\n", cfg.Bot.CommandPrefix)
	fmt.Printf("  ignore_nicks: %s\n", strings.Join(cfg.Bot.IgnoreNicks, ", "))
	fmt.Printf("  diagnostics: %v\n", cfg.Bot.Diagnostics)

	fmt.Println("tui:")
	fmt.Printf("  timestamps: %v\n", cfg.TUI.Timestamps)
	fmt.Printf("  max_lines: %d\n", cfg.TUI.MaxLines)

	fmt.Println("logging:")
	fmt.Printf("  enabled: %v\n", cfg.Logging.Enabled)
	fmt.Printf("  level: %s\n", cfg.Logging.Level)
	fmt.Printf("  file: %s\n", cfg.Logging.File)
	fmt.Printf("  max_size_mb: %d\n", cfg.Logging.MaxSizeMB)
	fmt.Printf("  max_backups: %d\n", cfg.Logging.MaxBackups)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// Validate the key exists
	validKeys := map[string]string{
		"chat.nick":              "string",
		"chat.source":            "string",
		"chat.history_file":      "string",
		"chat.poll_interval_ms":  "int",
		"chat.replay":            "bool",
		"chat.write_wake":        "bool",
		"store.max_record_bytes": "int",
		"bot.nick":               "string",
		"bot.command_prefix":     "string",
		"bot.diagnostics":        "bool",
		"tui.timestamps":         "bool",
		"tui.max_lines":          "int",
		"logging.enabled":        "bool",
		"logging.level":          "string",
		"logging.file":           "string",
		"logging.max_size_mb":    "int",
		"logging.max_backups":    "int",
	}

	keyType, ok := validKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'filetalk config set --help' to see valid keys", key)
	}

	// Validate the value based on type
	var typedValue interface{}
	switch keyType {
	case "string":
		if key == "logging.level" && !isValidLogLevel(value) {
			return fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(config.ValidLogLevels(), ", "))
		}
		typedValue = value
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = value == "true"
	case "int":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if intVal < 0 {
			return fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		typedValue = intVal
	}

	// Ensure config directory exists
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set the value in viper
	viper.Set(key, typedValue)

	// Write to config file
	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Set %s = %v\n", key, typedValue)
	fmt.Printf("Config saved to %s\n", configFile)

	return nil
}

func isValidLogLevel(level string) bool {
	for _, l := range config.ValidLogLevels() {
		if strings.EqualFold(level, l) {
			return true
		}
	}
	return false
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'filetalk config set' to modify values", configFile)
	}

	// Create config directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Generate a commented config file
	configContent := `# Filetalk Configuration

# Client identity and tailing behavior
chat:
  # Participant nickname (required for chat and send)
  nick: ""
  # Provenance tag written into published records
  source: local
  # Path to the shared append-only history file
  history_file: history.jsonl
  # How often the tail polls the file for growth, in milliseconds
  poll_interval_ms: 500
  # Deliver the full existing history on subscribe instead of only new records
  replay: false
  # Wake the tail as soon as the file grows instead of waiting out the interval
  write_wake: true

# Append log store
store:
  # Maximum size of one encoded record including its newline
  max_record_bytes: 4096

# Automated responder
bot:
  nick: echo-bot
  # Records whose text begins with this prefix are ignored (empty disables)
  command_prefix: ""
  # Glob patterns of nicks the bot never replies to, e.g. "*-bot"
  ignore_nicks: []
  # Publish a diagnostic message to the conversation when the responder fails
  diagnostics: false

# Interactive terminal client
tui:
  timestamps: true
  max_lines: 1000

# Diagnostic logging (chat content never goes here)
logging:
  enabled: true
  # debug, info, warn, error
  level: info
  # Log file path; empty logs to stderr
  file: ""
  max_size_mb: 10
  max_backups: 3
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	fmt.Println(config.ConfigFile())
	return nil
}
