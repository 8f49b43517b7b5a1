package history

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/filetalk/filetalk/internal/errors"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "history.jsonl"))
}

func TestAppendCreatesFile(t *testing.T) {
	s := testStore(t)

	end, err := s.Append([]byte(`{"n":1}`))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if end != int64(len(`{"n":1}`)+1) {
		t.Errorf("end offset = %d, want %d", end, len(`{"n":1}`)+1)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "{\"n\":1}\n" {
		t.Errorf("file content = %q", data)
	}
}

func TestAppendCreatesParentDirectory(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nested", "deep", "history.jsonl"))
	if _, err := s.Append([]byte(`{"n":1}`)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
}

func TestAppendNormalizesTrailingNewline(t *testing.T) {
	s := testStore(t)

	// With and without a trailing newline, the stored line ends in exactly one.
	if _, err := s.Append([]byte("{\"n\":1}\n")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if _, err := s.Append([]byte(`{"n":2}`)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "{\"n\":1}\n{\"n\":2}\n" {
		t.Errorf("file content = %q", data)
	}
}

func TestAppendRejectsEmbeddedNewline(t *testing.T) {
	s := testStore(t)

	_, err := s.Append([]byte("{\"n\":1}\n{\"n\":2}"))
	if err == nil {
		t.Fatal("Append with embedded newline succeeded")
	}
	if !errors.Is(err, errors.ErrMalformedRecord) {
		t.Errorf("error = %v, want ErrMalformedRecord", err)
	}

	if size, _ := s.Size(); size != 0 {
		t.Errorf("rejected append wrote %d bytes", size)
	}
}

func TestAppendRejectsOversizeRecord(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "history.jsonl"), WithMaxRecordBytes(16))

	_, err := s.Append(bytes.Repeat([]byte("x"), 32))
	if err == nil {
		t.Fatal("oversize append succeeded")
	}
	if !errors.Is(err, errors.ErrRecordTooLarge) {
		t.Errorf("error = %v, want ErrRecordTooLarge", err)
	}
	if errors.IsRetryable(err) {
		t.Error("oversize rejection reported as retryable")
	}

	// Exactly at the limit (including the newline) is allowed.
	if _, err := s.Append(bytes.Repeat([]byte("x"), 15)); err != nil {
		t.Errorf("append at limit failed: %v", err)
	}
}

func TestAppendEndOffsetsAccumulate(t *testing.T) {
	s := testStore(t)

	var want int64
	for i := 0; i < 5; i++ {
		line := []byte(fmt.Sprintf(`{"n":%d}`, i))
		end, err := s.Append(line)
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		want += int64(len(line) + 1)
		if end != want {
			t.Errorf("append %d: end offset = %d, want %d", i, end, want)
		}
	}
}

func TestReadFromMissingFile(t *testing.T) {
	s := testStore(t)

	lines, offset, err := s.ReadFrom(0)
	if err != nil {
		t.Fatalf("ReadFrom on missing file failed: %v", err)
	}
	if len(lines) != 0 || offset != 0 {
		t.Errorf("got %d lines, offset %d, want none", len(lines), offset)
	}
}

func TestReadFromReturnsCompleteLines(t *testing.T) {
	s := testStore(t)
	for i := 0; i < 3; i++ {
		if _, err := s.Append([]byte(fmt.Sprintf(`{"n":%d}`, i))); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	lines, offset, err := s.ReadFrom(0)
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for i, line := range lines {
		want := fmt.Sprintf(`{"n":%d}`, i)
		if string(line) != want {
			t.Errorf("line %d = %q, want %q", i, line, want)
		}
	}

	size, _ := s.Size()
	if offset != size {
		t.Errorf("new offset = %d, want file size %d", offset, size)
	}

	// Nothing new past the returned offset.
	lines, next, err := s.ReadFrom(offset)
	if err != nil {
		t.Fatalf("second ReadFrom failed: %v", err)
	}
	if len(lines) != 0 || next != offset {
		t.Errorf("second read returned %d lines, offset %d", len(lines), next)
	}
}

func TestReadFromHidesPartialTrailingLine(t *testing.T) {
	s := testStore(t)
	end, err := s.Append([]byte(`{"n":1}`))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// Simulate a concurrent writer's in-progress append: bytes with no
	// terminating newline yet.
	f, err := os.OpenFile(s.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString(`{"n":2`); err != nil {
		t.Fatalf("write partial: %v", err)
	}
	_ = f.Close()

	lines, offset, err := s.ReadFrom(0)
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 (partial line must be invisible)", len(lines))
	}
	if offset != end {
		t.Errorf("offset = %d, want %d (stop before the partial line)", offset, end)
	}

	// Once the newline lands, the line becomes visible from that offset.
	f, err = os.OpenFile(s.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := f.WriteString("}\n"); err != nil {
		t.Fatalf("finish line: %v", err)
	}
	_ = f.Close()

	lines, _, err = s.ReadFrom(offset)
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	if len(lines) != 1 || string(lines[0]) != `{"n":2}` {
		t.Errorf("completed line not picked up: %q", lines)
	}
}

func TestConcurrentAppendsNeverTear(t *testing.T) {
	s := testStore(t)

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				line := fmt.Sprintf(`{"writer":%d,"seq":%d}`, w, i)
				if _, err := s.Append([]byte(line)); err != nil {
					t.Errorf("writer %d append %d: %v", w, i, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	lines, _, err := s.ReadFrom(0)
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	if len(lines) != writers*perWriter {
		t.Fatalf("got %d lines, want %d", len(lines), writers*perWriter)
	}

	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if !bytes.HasPrefix(line, []byte(`{"writer":`)) || !bytes.HasSuffix(line, []byte("}")) {
			t.Fatalf("torn line: %q", line)
		}
		if seen[string(line)] {
			t.Fatalf("duplicate line: %q", line)
		}
		seen[string(line)] = true
	}
}

func TestSize(t *testing.T) {
	s := testStore(t)

	size, err := s.Size()
	if err != nil || size != 0 {
		t.Fatalf("Size on missing file = %d, %v; want 0, nil", size, err)
	}

	end, err := s.Append([]byte(`{"n":1}`))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	size, err = s.Size()
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != end {
		t.Errorf("Size = %d, want %d", size, end)
	}
}
