package history

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/filetalk/filetalk/internal/errors"
)

// DefaultMaxRecordBytes is the default upper bound on a single encoded
// record, including the trailing newline. It is kept well below PIPE_BUF-
// style atomic write limits so a single write(2) never tears.
const DefaultMaxRecordBytes = 4096

// Store provides access to the shared append-only history file.
//
// Writes use O_APPEND so that concurrent appends from multiple processes
// never interleave partial lines; a mutex additionally serializes appends
// within a process. The store never exposes its file handle: consumers read
// through ReadFrom and write through Append only.
type Store struct {
	path      string
	maxRecord int
	mu        sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithMaxRecordBytes overrides the single-record size limit. Zero or
// negative values are ignored.
func WithMaxRecordBytes(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxRecord = n
		}
	}
}

// NewStore creates a Store for the history file at path. The file itself is
// created lazily on first append.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:      path,
		maxRecord: DefaultMaxRecordBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the location of the underlying history file.
func (s *Store) Path() string {
	return s.path
}

// Append writes one record line to the log and returns the end offset of the
// written record (the position immediately after its newline).
//
// The input may or may not carry a trailing newline; the stored line always
// ends in exactly one. The write is performed as a single write(2) on an
// O_APPEND descriptor, which is the atomicity guarantee the whole system
// rests on. Records larger than the configured limit are rejected with
// ErrRecordTooLarge before anything is written.
//
// If the underlying file cannot be opened or written, Append fails with an
// error wrapping ErrStoreUnavailable; the record is undelivered and the
// store does not buffer or retry.
func (s *Store) Append(data []byte) (int64, error) {
	line := bytes.TrimRight(data, "\n")
	if bytes.ContainsRune(line, '\n') {
		return 0, errors.NewValidationError("record contains embedded newline").
			WithCause(errors.ErrMalformedRecord)
	}
	line = append(line, '\n')
	if len(line) > s.maxRecord {
		return 0, errors.NewStoreError("record rejected", errors.ErrRecordTooLarge).
			WithPath(s.path).
			WithOp("append").
			WithRetryable(false)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, errors.NewStoreError("create directory",
				errors.Join(errors.ErrStoreUnavailable, err)).WithPath(s.path).WithOp("append")
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, errors.NewStoreError("open for append",
			errors.Join(errors.ErrStoreUnavailable, err)).WithPath(s.path).WithOp("append")
	}

	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return 0, errors.NewStoreError("append",
			errors.Join(errors.ErrStoreUnavailable, err)).WithPath(s.path).WithOp("append")
	}

	// With O_APPEND the descriptor offset sits just past the written bytes,
	// which is exactly the end offset of this record.
	end, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		_ = f.Close()
		return 0, errors.NewStoreError("locate end offset",
			errors.Join(errors.ErrStoreUnavailable, err)).WithPath(s.path).WithOp("append")
	}

	if err := f.Close(); err != nil {
		return 0, errors.NewStoreError("close",
			errors.Join(errors.ErrStoreUnavailable, err)).WithPath(s.path).WithOp("append")
	}
	return end, nil
}

// ReadFrom returns all complete lines available past offset without
// blocking, along with the offset just past the last complete line.
//
// A trailing partial line (a concurrent writer's in-progress append) is
// never returned; the new offset stops before it so a later call picks the
// line up once its newline lands. Returned lines do not include their
// newline terminator. A missing file is not an error: it simply means no
// records exist yet.
func (s *Store) ReadFrom(offset int64) ([][]byte, int64, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, offset, nil
		}
		return nil, offset, errors.NewStoreError("open for read",
			errors.Join(errors.ErrStoreUnavailable, err)).WithPath(s.path).WithOp("read_from")
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, errors.NewStoreError("seek",
			errors.Join(errors.ErrStoreUnavailable, err)).WithPath(s.path).WithOp("read_from")
	}

	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, offset, errors.NewStoreError("read",
			errors.Join(errors.ErrStoreUnavailable, err)).WithPath(s.path).WithOp("read_from")
	}

	// Only the portion up to the last newline is visible; everything after
	// it is a partial line still being written.
	complete := bytes.LastIndexByte(buf, '\n')
	if complete < 0 {
		return nil, offset, nil
	}

	var lines [][]byte
	rest := buf[:complete+1]
	for len(rest) > 0 {
		nl := bytes.IndexByte(rest, '\n')
		lines = append(lines, rest[:nl])
		rest = rest[nl+1:]
	}

	return lines, offset + int64(complete) + 1, nil
}

// Size returns the current size of the history file in bytes. A missing
// file has size zero.
func (s *Store) Size() (int64, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.NewStoreError("stat",
			errors.Join(errors.ErrStoreUnavailable, err)).WithPath(s.path).WithOp("size")
	}
	return info.Size(), nil
}
