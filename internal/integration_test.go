// Package internal contains integration tests that verify the packages work
// together over one shared history file: multiple clients, a bot, the event
// bus, and the polling tail exchanging records end to end.
package internal

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/filetalk/filetalk/internal/bot"
	"github.com/filetalk/filetalk/internal/chat"
	"github.com/filetalk/filetalk/internal/event"
	"github.com/filetalk/filetalk/internal/message"
)

const pollInterval = 10 * time.Millisecond

func newClient(t *testing.T, path, nick, source string, opts ...chat.ClientOption) *chat.Client {
	t.Helper()
	opts = append([]chat.ClientOption{chat.WithPollInterval(pollInterval)}, opts...)
	c, err := chat.NewClient(path, chat.Identity{Nick: nick, Source: source}, opts...)
	if err != nil {
		t.Fatalf("NewClient(%s) failed: %v", nick, err)
	}
	return c
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

// TestMultiClientConversation runs two interactive participants against one
// history file and verifies that both observe the same conversation in the
// same order.
func TestMultiClientConversation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	alice := newClient(t, path, "alice", message.SourceLocal)
	bob := newClient(t, path, "bob", message.SourceLocal)

	type view struct {
		mu   sync.Mutex
		recs []message.Record
	}
	collect := func(v *view) func(message.Record) {
		return func(rec message.Record) {
			v.mu.Lock()
			defer v.mu.Unlock()
			v.recs = append(v.recs, rec)
		}
	}
	snapshot := func(v *view) []message.Record {
		v.mu.Lock()
		defer v.mu.Unlock()
		out := make([]message.Record, len(v.recs))
		copy(out, v.recs)
		return out
	}

	aliceView, bobView := &view{}, &view{}

	aliceSub, err := alice.SubscribeFunc(collect(aliceView), chat.WithReplay())
	if err != nil {
		t.Fatalf("alice Subscribe failed: %v", err)
	}
	defer aliceSub.Stop()

	bobSub, err := bob.SubscribeFunc(collect(bobView), chat.WithReplay())
	if err != nil {
		t.Fatalf("bob Subscribe failed: %v", err)
	}
	defer bobSub.Stop()

	if err := alice.Join(); err != nil {
		t.Fatalf("alice Join failed: %v", err)
	}
	if err := bob.Join(); err != nil {
		t.Fatalf("bob Join failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := alice.Say(fmt.Sprintf("from alice %d", i)); err != nil {
			t.Fatalf("alice Say failed: %v", err)
		}
		if err := bob.Say(fmt.Sprintf("from bob %d", i)); err != nil {
			t.Fatalf("bob Say failed: %v", err)
		}
	}
	if err := bob.Leave(); err != nil {
		t.Fatalf("bob Leave failed: %v", err)
	}

	const total = 9 // 2 joins + 6 messages + 1 leave
	waitFor(t, func() bool {
		return len(snapshot(aliceView)) == total && len(snapshot(bobView)) == total
	}, "both views complete")

	a, b := snapshot(aliceView), snapshot(bobView)
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("views diverge at %d: alice saw %s, bob saw %s", i, a[i].ID, b[i].ID)
		}
	}
}

// TestBotConversationFlow wires a user, an echo bot, and a bus-observing
// watcher together and checks the full command/reply round trip.
func TestBotConversationFlow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")

	bus := event.NewBus()
	var mu sync.Mutex
	delivered := 0
	bus.Subscribe("record.delivered", func(event.Event) {
		mu.Lock()
		defer mu.Unlock()
		delivered++
	})

	user := newClient(t, path, "alice", message.SourceLocal)
	botClient := newClient(t, path, "echo-bot", message.SourceBot, chat.WithBus(bus))

	b := bot.New(botClient, bot.EchoResponder{}, bot.WithIgnoreNicks([]string{"*-spammer"}))
	sub, err := b.Run()
	if err != nil {
		t.Fatalf("bot Run failed: %v", err)
	}
	defer sub.Stop()

	if err := user.Say("!echo integration"); err != nil {
		t.Fatalf("Say failed: %v", err)
	}
	if err := user.Say("just chatting"); err != nil {
		t.Fatalf("Say failed: %v", err)
	}

	waitFor(t, func() bool {
		records, err := user.History()
		if err != nil {
			return false
		}
		for _, rec := range records {
			if rec.Nick == "echo-bot" && rec.Text == "Echo: integration" {
				return true
			}
		}
		return false
	}, "echo reply")

	// No feedback loop, no reply to the non-command message.
	time.Sleep(10 * pollInterval)
	records, err := user.History()
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	replies := 0
	for _, rec := range records {
		if rec.Nick == "echo-bot" && rec.Type == message.TypeMessage {
			replies++
		}
	}
	if replies != 1 {
		t.Errorf("bot published %d replies, want exactly 1", replies)
	}

	mu.Lock()
	defer mu.Unlock()
	if delivered == 0 {
		t.Error("no record.delivered events observed on the bus")
	}
}

// TestTailSurvivesForeignGarbage exercises the whole skip-and-continue path:
// another process wrote junk into the shared file, and every consumer keeps
// delivering the valid records around it.
func TestTailSurvivesForeignGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	writer := newClient(t, path, "alice", message.SourceLocal)

	if err := writer.Say("before"); err != nil {
		t.Fatalf("Say failed: %v", err)
	}
	if _, err := writer.Store().Append([]byte("}{ not even close")); err != nil {
		t.Fatalf("append garbage: %v", err)
	}
	if err := writer.Say("after"); err != nil {
		t.Fatalf("Say failed: %v", err)
	}

	reader := newClient(t, path, "bob", message.SourceLocal)
	var mu sync.Mutex
	var texts []string
	sub, err := reader.SubscribeFunc(func(rec message.Record) {
		mu.Lock()
		defer mu.Unlock()
		texts = append(texts, rec.Text)
	}, chat.WithReplay())
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Stop()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(texts) == 2
	}, "valid records around the garbage")

	mu.Lock()
	defer mu.Unlock()
	if texts[0] != "before" || texts[1] != "after" {
		t.Errorf("texts = %v", texts)
	}
}
