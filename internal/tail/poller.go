package tail

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/filetalk/filetalk/internal/errors"
	"github.com/filetalk/filetalk/internal/event"
	"github.com/filetalk/filetalk/internal/history"
	"github.com/filetalk/filetalk/internal/logging"
	"github.com/filetalk/filetalk/internal/message"
)

// DefaultPollInterval is the tick interval used when none is configured.
// Shorter intervals reduce latency at the cost of wasted reads on a
// quiescent log.
const DefaultPollInterval = 500 * time.Millisecond

// State identifies where a poller is in its lifecycle.
type State int32

const (
	// StateInitializing is the state before Start has been called.
	StateInitializing State = iota

	// StateIdle means the poller is waiting for the next tick.
	StateIdle

	// StateReading means the poller is fetching and decoding new records.
	StateReading

	// StateDelivering means the poller is invoking the handler.
	StateDelivering

	// StateStopped is the terminal state, entered on cancellation.
	StateStopped
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateIdle:
		return "idle"
	case StateReading:
		return "reading"
	case StateDelivering:
		return "delivering"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Handler receives each newly observed valid record, in log order.
type Handler func(message.Record)

// Poller periodically reads the shared log past its cursor and delivers new
// records to a handler. Create one with New, run it with Start, and cancel
// it with Stop. Each consumer owns exactly one poller and cursor; nothing
// is shared between consumers except the log file itself.
type Poller struct {
	store       *history.Store
	cursor      *history.Cursor
	handler     Handler
	interval    time.Duration
	consumer    string
	log         *logging.Logger
	bus         *event.Bus
	wakeOnWrite bool

	state    atomic.Int32
	started  atomic.Bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval sets the poll tick interval. Zero or negative values are
// ignored.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithConsumer names the consumer for logs and events.
func WithConsumer(name string) PollerOption {
	return func(p *Poller) {
		p.consumer = name
	}
}

// WithLogger attaches a logger for decode skips and read failures.
func WithLogger(log *logging.Logger) PollerOption {
	return func(p *Poller) {
		if log != nil {
			p.log = log
		}
	}
}

// WithBus attaches an event bus. When set, the poller publishes
// record.delivered, record.skipped, presence.changed and poller.state
// events.
func WithBus(bus *event.Bus) PollerOption {
	return func(p *Poller) {
		p.bus = bus
	}
}

// WithWriteWake enables a filesystem watcher on the history file that wakes
// the poller as soon as the file grows, instead of waiting out the rest of
// the tick. The periodic tick still runs; the watcher is a latency aid, not
// a correctness mechanism.
func WithWriteWake() PollerOption {
	return func(p *Poller) {
		p.wakeOnWrite = true
	}
}

// New creates a Poller tailing store from cursor, delivering to handler.
func New(store *history.Store, cursor *history.Cursor, handler Handler, opts ...PollerOption) *Poller {
	p := &Poller{
		store:    store,
		cursor:   cursor,
		handler:  handler,
		interval: DefaultPollInterval,
		consumer: "consumer",
		log:      logging.Nop(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.WithComponent("poller")
	return p
}

// State returns the poller's current state.
func (p *Poller) State() State {
	return State(p.state.Load())
}

// Start launches the polling loop in its own goroutine. It fails with
// ErrPollerStopped if the poller was already started or stopped.
func (p *Poller) Start() error {
	if !p.started.CompareAndSwap(false, true) {
		return errors.Wrap(errors.ErrPollerStopped, "poller already started")
	}

	var wake <-chan struct{}
	var watcher *writeWatcher
	if p.wakeOnWrite {
		w, err := newWriteWatcher(p.store.Path())
		if err != nil {
			// The watcher is best-effort; fall back to pure ticking.
			p.log.Warn("write watcher unavailable, falling back to polling only", "error", err)
		} else {
			watcher = w
			wake = w.C()
		}
	}

	go p.run(wake, watcher)
	return nil
}

// Stop cancels the poller cooperatively and waits until the loop has
// reached its terminal state. Safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
	if p.started.Load() {
		<-p.doneCh
	}
}

// run is the polling loop. It owns all cursor mutation.
func (p *Poller) run(wake <-chan struct{}, watcher *writeWatcher) {
	defer close(p.doneCh)
	defer p.setState(StateStopped)
	if watcher != nil {
		defer watcher.Close()
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Drain whatever is already past the cursor before the first sleep, so
	// a consumer that replays history sees it immediately.
	p.poll()

	for {
		p.setState(StateIdle)
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
		case <-wake:
		}
		p.poll()
	}
}

// poll performs one READING/DELIVERING pass over everything new in the log.
func (p *Poller) poll() {
	p.setState(StateReading)

	offset := p.cursor.Offset()
	lines, _, err := p.store.ReadFrom(offset)
	if err != nil {
		// Transient read failures leave the cursor alone; the next tick
		// retries from the same position.
		p.log.Warn("read from log failed", "offset", offset, "error", err)
		return
	}

	pos := offset
	for _, line := range lines {
		end := pos + int64(len(line)) + 1 // +1 for the newline terminator

		rec, err := message.Decode(line)
		if err != nil {
			// Skip-and-continue: advance past the malformed line so it can
			// never wedge the tail.
			p.log.Warn("decode skip", "offset", pos, "error", err)
			if p.bus != nil {
				p.bus.Publish(event.NewRecordSkippedEvent(p.consumer, end, err.Error()))
			}
			if err := p.cursor.Advance(end); err != nil {
				p.log.Error("cursor advance failed", "offset", end, "error", err)
				return
			}
			pos = end
			continue
		}

		p.setState(StateDelivering)
		p.deliver(rec)

		if err := p.cursor.Advance(end); err != nil {
			p.log.Error("cursor advance failed", "offset", end, "error", err)
			return
		}
		pos = end

		if p.bus != nil {
			p.bus.Publish(event.NewRecordDeliveredEvent(p.consumer, rec, end))
			if rec.IsPresence() {
				p.bus.Publish(event.NewPresenceChangedEvent(rec.Nick, rec.Type == message.TypeJoin))
			}
		}
		p.setState(StateReading)
	}
}

// deliver invokes the handler with panic isolation: a misbehaving
// subscriber must never crash the tailing loop.
func (p *Poller) deliver(rec message.Record) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("handler panicked", "record_id", rec.ID, "panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	p.handler(rec)
}

// setState records a state transition and publishes it when a bus is
// attached.
func (p *Poller) setState(s State) {
	prev := State(p.state.Swap(int32(s)))
	if prev == s {
		return
	}
	if p.bus != nil {
		p.bus.Publish(event.NewPollerStateEvent(p.consumer, s.String()))
	}
}
