package history

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/filetalk/filetalk/internal/errors"
)

// Cursor tracks how far into the log a single consumer has read. It holds
// the byte offset of the last fully consumed record and only ever moves
// forward. Each consumer owns its own cursor; cursors are never shared.
//
// A cursor is in-memory by default and dies with the consumer. When created
// with WithCursorFile, every advance is also persisted to a sidecar file so
// a restarted consumer can resume where it left off.
type Cursor struct {
	mu     sync.Mutex
	offset int64
	file   string
}

// CursorOption configures a Cursor.
type CursorOption func(*Cursor)

// WithStartOffset positions a new cursor at the given byte offset instead
// of zero. Negative values are ignored.
func WithStartOffset(offset int64) CursorOption {
	return func(c *Cursor) {
		if offset >= 0 {
			c.offset = offset
		}
	}
}

// WithCursorFile enables offset persistence to the given sidecar file. If
// the file already holds an offset, it overrides any configured start
// offset; a consumer resuming from a persisted cursor never replays records
// it already delivered.
func WithCursorFile(path string) CursorOption {
	return func(c *Cursor) {
		c.file = path
		if data, err := os.ReadFile(path); err == nil {
			if v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64); err == nil && v >= 0 {
				c.offset = v
			}
		}
	}
}

// NewCursor creates a cursor at offset zero, replaying the full history.
func NewCursor(opts ...CursorOption) *Cursor {
	c := &Cursor{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewCursorAtEnd creates a cursor positioned at the current end of the
// store, so only records appended after this call are observed.
func NewCursorAtEnd(s *Store, opts ...CursorOption) (*Cursor, error) {
	size, err := s.Size()
	if err != nil {
		return nil, err
	}
	c := NewCursor(opts...)
	// A persisted offset restored by WithCursorFile wins over end-of-file.
	if c.offset == 0 {
		c.offset = size
	}
	return c, nil
}

// Offset returns the current byte offset.
func (c *Cursor) Offset() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

// Advance moves the cursor forward to the given offset. Moving backward is
// refused with ErrCursorRegression; advancing to the current offset is a
// no-op. When persistence is enabled, the new offset is written out
// best-effort: a persistence failure never blocks delivery.
func (c *Cursor) Advance(to int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if to < c.offset {
		return errors.Wrapf(errors.ErrCursorRegression, "advance from %d to %d", c.offset, to)
	}
	if to == c.offset {
		return nil
	}
	c.offset = to

	if c.file != "" {
		_ = os.WriteFile(c.file, []byte(fmt.Sprintf("%d\n", to)), 0o644)
	}
	return nil
}
