package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "chat.poll_interval_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// nickRegex validates nick characters. Nicks start with an alphanumeric and
// can contain alphanumerics, hyphens, underscores, and dots.
var nickRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateChat()...)
	errors = append(errors, c.validateStore()...)
	errors = append(errors, c.validateBot()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateChat validates the ChatConfig
func (c *Config) validateChat() []ValidationError {
	var errors []ValidationError

	if c.Chat.Nick != "" && !nickRegex.MatchString(c.Chat.Nick) {
		errors = append(errors, ValidationError{
			Field:   "chat.nick",
			Value:   c.Chat.Nick,
			Message: "must start with an alphanumeric and contain only alphanumerics, dots, hyphens, underscores",
		})
	}

	if c.Chat.PollIntervalMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "chat.poll_interval_ms",
			Value:   c.Chat.PollIntervalMs,
			Message: "must be positive",
		})
	}

	if c.Chat.HistoryFile == "" {
		errors = append(errors, ValidationError{
			Field:   "chat.history_file",
			Value:   c.Chat.HistoryFile,
			Message: "must not be empty",
		})
	}

	return errors
}

// validateStore validates the StoreConfig
func (c *Config) validateStore() []ValidationError {
	var errors []ValidationError

	if c.Store.MaxRecordBytes <= 0 {
		errors = append(errors, ValidationError{
			Field:   "store.max_record_bytes",
			Value:   c.Store.MaxRecordBytes,
			Message: "must be positive",
		})
	}

	return errors
}

// validateBot validates the BotConfig
func (c *Config) validateBot() []ValidationError {
	var errors []ValidationError

	if c.Bot.Nick != "" && !nickRegex.MatchString(c.Bot.Nick) {
		errors = append(errors, ValidationError{
			Field:   "bot.nick",
			Value:   c.Bot.Nick,
			Message: "must start with an alphanumeric and contain only alphanumerics, dots, hyphens, underscores",
		})
	}

	for _, pattern := range c.Bot.IgnoreNicks {
		if _, err := glob.Compile(pattern); err != nil {
			errors = append(errors, ValidationError{
				Field:   "bot.ignore_nicks",
				Value:   pattern,
				Message: "must be a valid glob pattern",
			})
		}
	}

	return errors
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if c.TUI.MaxLines < 0 {
		errors = append(errors, ValidationError{
			Field:   "tui.max_lines",
			Value:   c.TUI.MaxLines,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative",
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
