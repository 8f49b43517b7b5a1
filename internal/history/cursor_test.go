package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/filetalk/filetalk/internal/errors"
)

func TestCursorStartsAtZero(t *testing.T) {
	c := NewCursor()
	if c.Offset() != 0 {
		t.Errorf("Offset = %d, want 0", c.Offset())
	}
}

func TestCursorStartOffset(t *testing.T) {
	c := NewCursor(WithStartOffset(42))
	if c.Offset() != 42 {
		t.Errorf("Offset = %d, want 42", c.Offset())
	}

	// Negative start offsets are ignored.
	c = NewCursor(WithStartOffset(-1))
	if c.Offset() != 0 {
		t.Errorf("Offset = %d, want 0", c.Offset())
	}
}

func TestCursorAdvanceForwardOnly(t *testing.T) {
	c := NewCursor()

	if err := c.Advance(10); err != nil {
		t.Fatalf("Advance(10) failed: %v", err)
	}
	if c.Offset() != 10 {
		t.Errorf("Offset = %d, want 10", c.Offset())
	}

	// Advancing to the current offset is a no-op.
	if err := c.Advance(10); err != nil {
		t.Errorf("Advance to current offset failed: %v", err)
	}

	// Moving backward is refused and leaves the cursor alone.
	err := c.Advance(5)
	if err == nil {
		t.Fatal("backward Advance succeeded")
	}
	if !errors.Is(err, errors.ErrCursorRegression) {
		t.Errorf("error = %v, want ErrCursorRegression", err)
	}
	if c.Offset() != 10 {
		t.Errorf("Offset after refused regression = %d, want 10", c.Offset())
	}
}

func TestCursorPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consumer.cursor")

	c := NewCursor(WithCursorFile(path))
	if err := c.Advance(128); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	// A new cursor on the same sidecar file resumes at the persisted offset.
	resumed := NewCursor(WithCursorFile(path))
	if resumed.Offset() != 128 {
		t.Errorf("resumed Offset = %d, want 128", resumed.Offset())
	}
}

func TestCursorPersistedOffsetOverridesStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consumer.cursor")
	if err := os.WriteFile(path, []byte("64\n"), 0o644); err != nil {
		t.Fatalf("seed cursor file: %v", err)
	}

	c := NewCursor(WithStartOffset(10), WithCursorFile(path))
	if c.Offset() != 64 {
		t.Errorf("Offset = %d, want persisted 64", c.Offset())
	}
}

func TestCursorIgnoresCorruptSidecar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consumer.cursor")
	if err := os.WriteFile(path, []byte("not a number"), 0o644); err != nil {
		t.Fatalf("seed cursor file: %v", err)
	}

	c := NewCursor(WithCursorFile(path))
	if c.Offset() != 0 {
		t.Errorf("Offset = %d, want 0 for corrupt sidecar", c.Offset())
	}
}

func TestNewCursorAtEnd(t *testing.T) {
	s := testStore(t)
	end, err := s.Append([]byte(`{"n":1}`))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	c, err := NewCursorAtEnd(s)
	if err != nil {
		t.Fatalf("NewCursorAtEnd failed: %v", err)
	}
	if c.Offset() != end {
		t.Errorf("Offset = %d, want end of log %d", c.Offset(), end)
	}
}

func TestNewCursorAtEndEmptyStore(t *testing.T) {
	c, err := NewCursorAtEnd(testStore(t))
	if err != nil {
		t.Fatalf("NewCursorAtEnd failed: %v", err)
	}
	if c.Offset() != 0 {
		t.Errorf("Offset = %d, want 0", c.Offset())
	}
}

func TestNewCursorAtEndPersistedOffsetWins(t *testing.T) {
	s := testStore(t)
	if _, err := s.Append([]byte(`{"n":1}`)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if _, err := s.Append([]byte(`{"n":2}`)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "consumer.cursor")
	if err := os.WriteFile(path, []byte("8\n"), 0o644); err != nil {
		t.Fatalf("seed cursor file: %v", err)
	}

	c, err := NewCursorAtEnd(s, WithCursorFile(path))
	if err != nil {
		t.Fatalf("NewCursorAtEnd failed: %v", err)
	}
	if c.Offset() != 8 {
		t.Errorf("Offset = %d, want persisted 8 over end of file", c.Offset())
	}
}
