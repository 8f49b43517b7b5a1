package message

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of chat record.
type Type string

const (
	// TypeMessage carries ordinary chat content.
	TypeMessage Type = "message"

	// TypeJoin announces a participant entering the conversation.
	TypeJoin Type = "join"

	// TypeLeave announces a participant leaving the conversation.
	TypeLeave Type = "leave"
)

// SourceLocal marks records produced by an interactive local client.
const SourceLocal = "local"

// SourceBot marks records produced by an automated responder.
const SourceBot = "bot"

// Record represents a single entry in the shared history log.
//
// Once appended, a record is immutable; its position in the log is the sole
// total order for the system. Timestamps are informational: they are
// monotonically non-decreasing within a single writer's stream but carry no
// ordering guarantee across concurrent writers.
type Record struct {
	Type   Type   `json:"type"`
	Nick   string `json:"nick"`
	Text   string `json:"text"`
	TS     string `json:"ts"`
	ID     string `json:"id"`
	Source string `json:"source"`

	// Extra holds unknown keys seen during decoding. They are preserved on
	// re-encoding so that newer producers' fields survive a round trip
	// through an older consumer.
	Extra map[string]any `json:"-"`
}

// New creates a Record of the given type with a fresh unique ID and the
// current UTC timestamp. Text may be empty for join/leave records.
func New(t Type, nick, text, source string) Record {
	return Record{
		Type:   t,
		Nick:   nick,
		Text:   text,
		TS:     NowISO(),
		ID:     uuid.NewString(),
		Source: source,
	}
}

// NewID produces a fresh opaque unique record identifier. Consumers use it
// only for duplicate detection; it carries no ordering information.
func NewID() string {
	return uuid.NewString()
}

// NowISO returns the current UTC time in RFC 3339 format with sub-second
// precision, the wire representation used for the ts field.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Time parses the record timestamp. The zero time and false are returned
// when the timestamp is not RFC 3339; consumers treat such timestamps as
// opaque display text rather than rejecting the record.
func (r Record) Time() (time.Time, bool) {
	ts, err := time.Parse(time.RFC3339Nano, r.TS)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// IsPresence returns true for join and leave records.
func (r Record) IsPresence() bool {
	return r.Type == TypeJoin || r.Type == TypeLeave
}

// Valid record types for validation.
var validTypes = map[Type]bool{
	TypeMessage: true,
	TypeJoin:    true,
	TypeLeave:   true,
}

// ValidType returns true if the given type is a recognized record type.
func ValidType(t Type) bool {
	return validTypes[t]
}
