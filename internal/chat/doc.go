// Package chat provides the high-level client for the file-backed
// conversation: publishing records to the shared history log and
// subscribing to newly appended ones.
//
// A Client is built from three things a launcher supplies: a history file
// path, an identity (nick plus source tag), and a poll interval. Producers
// call Publish (or the Say/Join/Leave helpers); consumers implement
// Subscriber and call Subscribe, which returns a handle supporting Stop.
//
// There is no coordination between producers and consumers beyond the log
// itself. A bot's reply published from inside its OnRecord callback is an
// ordinary independent append, subject to the same ordering and visibility
// rules as any other record.
package chat
