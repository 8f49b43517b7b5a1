package tui

import (
	"github.com/filetalk/filetalk/internal/chat"
	"github.com/filetalk/filetalk/internal/message"
)

// recordMsg carries one newly delivered record from the subscription
// goroutine into the bubbletea update loop.
type recordMsg struct {
	record message.Record
}

// subStartedMsg delivers the subscription handle once the tail is running.
type subStartedMsg struct {
	sub *chat.Subscription
}

// publishErrMsg reports a failed publish so the user sees that their
// message is undelivered.
type publishErrMsg struct {
	err error
}
