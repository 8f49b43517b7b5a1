package bot

import (
	"strings"

	"github.com/filetalk/filetalk/internal/message"
)

// EchoCommand is the command the echo responder reacts to.
const EchoCommand = "!echo "

// EchoResponder replies "Echo: <payload>" to messages beginning with
// "!echo ". Everything else warrants no reply. It is the reference
// responder implementation and doubles as a liveness check for the log:
// if the echo bot answers, appends and tails are working end to end.
type EchoResponder struct{}

// Respond implements Responder.
func (EchoResponder) Respond(rec message.Record) (string, bool, error) {
	if !strings.HasPrefix(rec.Text, EchoCommand) {
		return "", false, nil
	}
	return "Echo: " + strings.TrimPrefix(rec.Text, EchoCommand), true, nil
}
