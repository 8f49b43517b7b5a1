package chat

import (
	"time"

	"github.com/filetalk/filetalk/internal/errors"
	"github.com/filetalk/filetalk/internal/event"
	"github.com/filetalk/filetalk/internal/history"
	"github.com/filetalk/filetalk/internal/logging"
	"github.com/filetalk/filetalk/internal/message"
	"github.com/filetalk/filetalk/internal/tail"
)

// Client publishes to and subscribes on one shared history log under a
// fixed identity. It is safe for concurrent use; every subscription runs
// its own independent poller and cursor.
type Client struct {
	store    *history.Store
	id       Identity
	interval time.Duration
	log      *logging.Logger
	bus      *event.Bus
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithPollInterval sets the default poll interval for subscriptions.
// Zero or negative values are ignored.
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogger attaches a logger for diagnostics.
func WithLogger(log *logging.Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithBus attaches an event bus that subscriptions publish delivery and
// state events on.
func WithBus(bus *event.Bus) ClientOption {
	return func(c *Client) {
		c.bus = bus
	}
}

// WithMaxRecordBytes overrides the store's single-record size limit.
func WithMaxRecordBytes(n int) ClientOption {
	return func(c *Client) {
		c.store = history.NewStore(c.store.Path(), history.WithMaxRecordBytes(n))
	}
}

// NewClient creates a Client for the history file at path under the given
// identity. The file is created lazily on the first publish.
func NewClient(path string, id Identity, opts ...ClientOption) (*Client, error) {
	if path == "" {
		return nil, errors.NewValidationError("history file path must not be empty").WithField("path")
	}
	if id.Nick == "" {
		return nil, errors.NewValidationError("nick must not be empty").WithField("nick")
	}
	if id.Source == "" {
		id.Source = message.SourceLocal
	}

	c := &Client{
		store:    history.NewStore(path),
		id:       id,
		interval: tail.DefaultPollInterval,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithNick(id.Nick)
	return c, nil
}

// Identity returns the client's identity.
func (c *Client) Identity() Identity {
	return c.id
}

// Store exposes the underlying append log store. Bots use it only through
// Publish; the raw store is exported for launchers that need Size or Path.
func (c *Client) Store() *history.Store {
	return c.store
}

// Publish encodes the record and appends it to the shared log. Empty
// identity, ID, and timestamp fields are filled in from the client before
// encoding. Returns the end offset of the appended record.
//
// A failure wraps ErrStoreUnavailable; the record is then undelivered and
// retrying or surfacing the failure is the caller's responsibility.
func (c *Client) Publish(rec message.Record) (int64, error) {
	if rec.Nick == "" {
		rec.Nick = c.id.Nick
	}
	if rec.Source == "" {
		rec.Source = c.id.Source
	}
	if rec.ID == "" {
		rec.ID = message.NewID()
	}
	if rec.TS == "" {
		rec.TS = message.NowISO()
	}

	line, err := message.Encode(rec)
	if err != nil {
		return 0, err
	}

	offset, err := c.store.Append(line)
	if err != nil {
		c.log.Error("publish failed", "record_id", rec.ID, "error", err)
		return 0, err
	}
	c.log.Debug("published", "record_id", rec.ID, "type", string(rec.Type), "offset", offset)
	return offset, nil
}

// Say publishes an ordinary chat message.
func (c *Client) Say(text string) error {
	_, err := c.Publish(message.New(message.TypeMessage, c.id.Nick, text, c.id.Source))
	return err
}

// Join announces this participant entering the conversation.
func (c *Client) Join() error {
	_, err := c.Publish(message.New(message.TypeJoin, c.id.Nick, "", c.id.Source))
	return err
}

// Leave announces this participant leaving the conversation.
func (c *Client) Leave() error {
	_, err := c.Publish(message.New(message.TypeLeave, c.id.Nick, "", c.id.Source))
	return err
}

// History reads the full log from the beginning and returns every valid
// record in log order. Malformed lines are skipped, matching the tail
// behavior.
func (c *Client) History() ([]message.Record, error) {
	lines, _, err := c.store.ReadFrom(0)
	if err != nil {
		return nil, err
	}

	records := make([]message.Record, 0, len(lines))
	for _, line := range lines {
		rec, err := message.Decode(line)
		if err != nil {
			c.log.Debug("history decode skip", "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// subscribeConfig holds per-subscription settings resolved from the client
// defaults and SubscribeOptions.
type subscribeConfig struct {
	interval   time.Duration
	replay     bool
	cursorFile string
	writeWake  bool
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscribeConfig)

// WithInterval overrides the client's poll interval for this subscription.
func WithInterval(d time.Duration) SubscribeOption {
	return func(sc *subscribeConfig) {
		if d > 0 {
			sc.interval = d
		}
	}
}

// WithReplay starts the subscription's cursor at offset zero so the full
// history is delivered before new records. The default is to start at the
// current end of the log.
func WithReplay() SubscribeOption {
	return func(sc *subscribeConfig) {
		sc.replay = true
	}
}

// WithCursorFile persists the subscription's cursor to a sidecar file so a
// restarted consumer resumes where it left off.
func WithCursorFile(path string) SubscribeOption {
	return func(sc *subscribeConfig) {
		sc.cursorFile = path
	}
}

// WithWriteWake enables the filesystem watcher that wakes the poller as
// soon as the log grows.
func WithWriteWake() SubscribeOption {
	return func(sc *subscribeConfig) {
		sc.writeWake = true
	}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	poller *tail.Poller
	cursor *history.Cursor
}

// Stop cancels the subscription's poller at the next tick boundary and
// waits for it to finish. Safe to call more than once.
func (s *Subscription) Stop() {
	s.poller.Stop()
}

// State returns the underlying poller state.
func (s *Subscription) State() tail.State {
	return s.poller.State()
}

// Offset returns the subscription cursor's current byte offset.
func (s *Subscription) Offset() int64 {
	return s.cursor.Offset()
}

// Subscribe starts tailing the log and delivering new records to sub.
// Delivery order is log order; each record is delivered at most once per
// continuous run; delivery is single-threaded per subscription.
func (c *Client) Subscribe(sub Subscriber, opts ...SubscribeOption) (*Subscription, error) {
	sc := subscribeConfig{interval: c.interval}
	for _, opt := range opts {
		opt(&sc)
	}

	var cursorOpts []history.CursorOption
	if sc.cursorFile != "" {
		cursorOpts = append(cursorOpts, history.WithCursorFile(sc.cursorFile))
	}

	var cursor *history.Cursor
	if sc.replay {
		cursor = history.NewCursor(cursorOpts...)
	} else {
		var err error
		cursor, err = history.NewCursorAtEnd(c.store, cursorOpts...)
		if err != nil {
			return nil, err
		}
	}

	pollerOpts := []tail.PollerOption{
		tail.WithInterval(sc.interval),
		tail.WithConsumer(sub.Identity().Nick),
		tail.WithLogger(c.log),
	}
	if c.bus != nil {
		pollerOpts = append(pollerOpts, tail.WithBus(c.bus))
	}
	if sc.writeWake {
		pollerOpts = append(pollerOpts, tail.WithWriteWake())
	}

	poller := tail.New(c.store, cursor, sub.OnRecord, pollerOpts...)
	if err := poller.Start(); err != nil {
		return nil, err
	}
	return &Subscription{poller: poller, cursor: cursor}, nil
}

// SubscribeFunc is a convenience wrapper around Subscribe for plain
// callback functions using the client's own identity.
func (c *Client) SubscribeFunc(fn func(message.Record), opts ...SubscribeOption) (*Subscription, error) {
	return c.Subscribe(NewSubscriber(c.id, fn), opts...)
}
