// Package tail implements the polling tail protocol over the shared history
// log: a cancellable periodic task that advances a per-consumer cursor and
// delivers newly appended records, in log order, to a single callback.
//
// # State machine
//
// A poller moves through INITIALIZING -> IDLE -> READING -> DELIVERING and
// back to IDLE on every tick; STOPPED is terminal and entered cooperatively
// at the next tick boundary after Stop is called.
//
// # Delivery rules
//
//   - every complete record past the cursor is decoded in order
//   - a record is delivered at most once per continuous run
//   - the cursor advances only after a record is fully parsed and delivered
//   - a malformed line is skipped (logged, never fatal) and the cursor
//     advances past it, so one corrupt record cannot wedge the tail
//   - delivery is single-threaded: the callback is never invoked
//     concurrently with itself for the same poller
//
// Errors inside one poller are invisible to every other consumer; isolation
// is per process.
package tail
