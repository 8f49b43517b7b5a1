package bot

import (
	"strings"

	"github.com/gobwas/glob"

	"github.com/filetalk/filetalk/internal/chat"
	"github.com/filetalk/filetalk/internal/errors"
	"github.com/filetalk/filetalk/internal/logging"
	"github.com/filetalk/filetalk/internal/message"
)

// Responder generates a reply to a chat message. Implementations may call
// external services (an AI provider, a search index); the bot catches their
// errors at the subscriber boundary.
//
// Respond returns the reply text and true, or false when the record
// warrants no reply.
type Responder interface {
	Respond(rec message.Record) (reply string, ok bool, err error)
}

// ResponderFunc adapts a plain function to the Responder interface.
type ResponderFunc func(rec message.Record) (string, bool, error)

// Respond implements Responder.
func (f ResponderFunc) Respond(rec message.Record) (string, bool, error) {
	return f(rec)
}

// Bot is a chat.Subscriber that filters incoming records and publishes
// generated replies. Create one with New and run it with Run.
type Bot struct {
	client        *chat.Client
	responder     Responder
	commandPrefix string
	ignoreNicks   []glob.Glob
	diagnostics   bool
	log           *logging.Logger
}

// Option configures a Bot.
type Option func(*Bot)

// WithCommandPrefix sets the reserved prefix for commands intended for
// other handlers; records whose text begins with it are ignored. Empty
// (the default) disables the command filter, which is what command-handling
// bots like the echo bot want.
func WithCommandPrefix(prefix string) Option {
	return func(b *Bot) {
		b.commandPrefix = prefix
	}
}

// WithIgnoreNicks ignores records from nicks matching any of the given
// glob patterns (e.g. "*-bot" to stay silent toward other bots). Patterns
// that fail to compile are dropped.
func WithIgnoreNicks(patterns []string) Option {
	return func(b *Bot) {
		for _, p := range patterns {
			g, err := glob.Compile(p)
			if err != nil {
				b.log.Warn("invalid ignore pattern", "pattern", p, "error", err)
				continue
			}
			b.ignoreNicks = append(b.ignoreNicks, g)
		}
	}
}

// WithDiagnostics publishes a best-effort diagnostic message to the
// conversation when the responder fails, instead of only logging.
func WithDiagnostics() Option {
	return func(b *Bot) {
		b.diagnostics = true
	}
}

// WithLogger attaches a logger.
func WithLogger(log *logging.Logger) Option {
	return func(b *Bot) {
		if log != nil {
			b.log = log
		}
	}
}

// New creates a Bot publishing and subscribing through client, generating
// replies with responder.
func New(client *chat.Client, responder Responder, opts ...Option) *Bot {
	b := &Bot{
		client:    client,
		responder: responder,
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.WithComponent("bot").WithNick(client.Identity().Nick)
	return b
}

// Identity implements chat.Subscriber.
func (b *Bot) Identity() chat.Identity {
	return b.client.Identity()
}

// OnRecord implements chat.Subscriber. It applies the dispatch contract
// (self-filter, command-filter, type-filter) and publishes the responder's
// reply, if any, as a new independent record.
func (b *Bot) OnRecord(rec message.Record) {
	if b.Identity().Matches(rec) {
		return
	}
	if b.commandPrefix != "" && strings.HasPrefix(rec.Text, b.commandPrefix) {
		return
	}
	for _, g := range b.ignoreNicks {
		if g.Match(rec.Nick) {
			return
		}
	}
	if rec.Type != message.TypeMessage {
		return
	}

	reply, ok, err := b.responder.Respond(rec)
	if err != nil {
		botErr := errors.NewBotError("responder failed", err).
			WithNick(b.Identity().Nick).
			WithRecordID(rec.ID)
		b.log.Warn("responder failed", "record_id", rec.ID, "error", botErr)
		if b.diagnostics {
			// Best-effort: a failed diagnostic is only logged, never
			// propagated into the tailing loop.
			if sayErr := b.client.Say("(error generating reply)"); sayErr != nil {
				b.log.Warn("diagnostic publish failed", "error", sayErr)
			}
		}
		return
	}
	if !ok {
		return
	}

	if err := b.client.Say(reply); err != nil {
		b.log.Error("reply publish failed", "record_id", rec.ID, "error", err)
	}
}

// Run announces the bot with a join record and subscribes it to the log.
// The returned subscription's Stop cancels the tail; Run does not block.
func (b *Bot) Run(opts ...chat.SubscribeOption) (*chat.Subscription, error) {
	if err := b.client.Join(); err != nil {
		return nil, err
	}
	return b.client.Subscribe(b, opts...)
}
