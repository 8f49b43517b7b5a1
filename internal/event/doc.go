// Package event provides an in-process pub-sub bus used to decouple the
// tailing loop from observers. A launcher can watch delivered records,
// decode skips, presence changes, and poller state transitions without
// depending on the poller, and the poller publishes without knowing who
// listens.
//
// The bus is strictly in-process and optional: the core publish/subscribe
// path over the shared history file works without it.
package event
