// Package history owns the shared append-only conversation log.
//
// Several independent processes (interactive clients and bots) exchange
// messages through a single newline-delimited JSON file instead of a network
// channel. This package provides the two primitives everything else is built
// on: atomic single-line appends and non-blocking snapshot reads from a byte
// offset.
//
// # Layout
//
// The log is one UTF-8 text file, one JSON object per line, append-only and
// growing monotonically. There is no index and no compaction; append
// position is the single source of truth for ordering.
//
// # Main Types
//
//   - [Store]: file-level access with atomic appends and ReadFrom snapshots
//   - [Cursor]: a consumer's private, forward-only bookmark into the log
//
// # Concurrency
//
// Appends from multiple processes are serialized only at the filesystem
// level: each append is a single flushed write on an O_APPEND descriptor,
// ending in exactly one newline. Readers never block writers and never block
// each other; a reader only ever observes complete, newline-terminated
// records, so a concurrent writer's in-progress line is invisible.
package history
