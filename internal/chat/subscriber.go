package chat

import "github.com/filetalk/filetalk/internal/message"

// Identity names a participant: the nick shown in the conversation and the
// provenance tag written into the source field of published records.
type Identity struct {
	Nick   string
	Source string
}

// Matches reports whether a record originated from this identity, by nick
// or by source. Bots use it for self-filtering to prevent reply loops.
func (id Identity) Matches(rec message.Record) bool {
	if id.Nick != "" && rec.Nick == id.Nick {
		return true
	}
	return id.Source != "" && rec.Source == id.Source && id.Source != message.SourceLocal
}

// Subscriber reacts to newly observed records. OnRecord is invoked exactly
// once per record per consumer, in log order, and never concurrently with
// another invocation for the same consumer.
type Subscriber interface {
	// Identity returns who this subscriber is in the conversation.
	Identity() Identity

	// OnRecord handles one newly delivered record.
	OnRecord(rec message.Record)
}

// subscriberFunc adapts a plain function to the Subscriber interface.
type subscriberFunc struct {
	id Identity
	fn func(message.Record)
}

func (s subscriberFunc) Identity() Identity          { return s.id }
func (s subscriberFunc) OnRecord(rec message.Record) { s.fn(rec) }

// NewSubscriber wraps a callback function as a Subscriber with the given
// identity.
func NewSubscriber(id Identity, fn func(message.Record)) Subscriber {
	return subscriberFunc{id: id, fn: fn}
}
