// Package tui implements the interactive terminal chat client.
//
// The input-handling path and the tailing path run independently: records
// arrive on a channel fed by the client's subscription goroutine while the
// bubbletea loop handles keystrokes, so a blocking read never stalls
// message delivery and vice versa.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/filetalk/filetalk/internal/chat"
	"github.com/filetalk/filetalk/internal/message"
)

// Options controls presentation details of the chat view.
type Options struct {
	// Timestamps shows the ts field next to each message.
	Timestamps bool
	// MaxLines limits how many conversation lines are kept in memory.
	// Zero means unlimited.
	MaxLines int
	// Replay delivers existing history before new records.
	Replay bool
	// WriteWake enables the filesystem watcher on the log.
	WriteWake bool
}

// Model is the bubbletea model for the chat client.
type Model struct {
	client *chat.Client
	sub    *chat.Subscription
	opts   Options

	input   textinput.Model
	records chan message.Record
	lines   []string
	width   int
	height  int
	quit    bool
}

// NewModel creates the chat model. The subscription is started by Init.
func NewModel(client *chat.Client, opts Options) *Model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(client.Identity().Nick + "> ")
	ti.Placeholder = "type a message, /quit to leave"
	ti.Focus()

	return &Model{
		client:  client,
		opts:    opts,
		input:   ti,
		records: make(chan message.Record, 64),
	}
}

// Init implements tea.Model. It announces the join, starts the tail, and
// begins waiting for records.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.start, m.waitForRecord)
}

// start publishes the join record and opens the subscription.
func (m *Model) start() tea.Msg {
	var subOpts []chat.SubscribeOption
	if m.opts.Replay {
		subOpts = append(subOpts, chat.WithReplay())
	}
	if m.opts.WriteWake {
		subOpts = append(subOpts, chat.WithWriteWake())
	}

	sub, err := m.client.Subscribe(
		chat.NewSubscriber(m.client.Identity(), func(rec message.Record) {
			m.records <- rec
		}),
		subOpts...,
	)
	if err != nil {
		return publishErrMsg{err: err}
	}

	if err := m.client.Join(); err != nil {
		sub.Stop()
		return publishErrMsg{err: err}
	}
	return subStartedMsg{sub: sub}
}

// waitForRecord blocks on the record channel and feeds the update loop.
func (m *Model) waitForRecord() tea.Msg {
	rec, ok := <-m.records
	if !ok {
		return nil
	}
	return recordMsg{record: rec}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - len(m.client.Identity().Nick) - 4
		return m, nil

	case subStartedMsg:
		m.sub = msg.sub
		return m, nil

	case recordMsg:
		m.appendLine(m.formatRecord(msg.record))
		return m, m.waitForRecord

	case publishErrMsg:
		m.appendLine(errorStyle.Render(fmt.Sprintf("! %v", msg.err)))
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, m.shutdown()
		case tea.KeyEnter:
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit handles one line of user input.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if text == "" {
		return nil
	}

	if text == "/quit" || text == "/exit" {
		return m.shutdown()
	}

	return func() tea.Msg {
		if err := m.client.Say(text); err != nil {
			return publishErrMsg{err: err}
		}
		return nil
	}
}

// shutdown announces the leave, stops the tail, and quits. The record
// channel is drained while the poller winds down so an in-flight delivery
// cannot block Stop.
func (m *Model) shutdown() tea.Cmd {
	if m.quit {
		return tea.Quit
	}
	m.quit = true
	sub := m.sub
	return func() tea.Msg {
		_ = m.client.Leave()
		if sub != nil {
			done := make(chan struct{})
			go func() {
				sub.Stop()
				close(done)
			}()
			for {
				select {
				case <-m.records:
				case <-done:
					return tea.QuitMsg{}
				}
			}
		}
		return tea.QuitMsg{}
	}
}

// appendLine adds one rendered line, trimming to the configured window.
func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	if m.opts.MaxLines > 0 && len(m.lines) > m.opts.MaxLines {
		m.lines = m.lines[len(m.lines)-m.opts.MaxLines:]
	}
}

// formatRecord renders a record the way the original client prints them:
// presence notices for join/leave, "[ts] nick: text" for messages.
func (m *Model) formatRecord(rec message.Record) string {
	var ts string
	if m.opts.Timestamps {
		display := rec.TS
		if t, ok := rec.Time(); ok {
			display = t.Local().Format("15:04:05")
		}
		ts = tsStyle.Render("[" + display + "] ")
	}

	switch rec.Type {
	case message.TypeJoin:
		return ts + presenceStyle.Render(fmt.Sprintf("-- %s joined --", rec.Nick))
	case message.TypeLeave:
		return ts + presenceStyle.Render(fmt.Sprintf("-- %s left --", rec.Nick))
	default:
		style := nickStyle
		if rec.Nick == m.client.Identity().Nick {
			style = selfNickStyle
		}
		return ts + style.Render(rec.Nick) + ": " + rec.Text
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	// Leave room for the input line and the help footer.
	visible := m.lines
	if m.height > 2 && len(visible) > m.height-2 {
		visible = visible[len(visible)-(m.height-2):]
	}
	for _, line := range visible {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: send · /quit: leave · ctrl+c: quit"))
	return b.String()
}

// Run starts the interactive chat client and blocks until the user leaves.
func Run(client *chat.Client, opts Options) error {
	p := tea.NewProgram(NewModel(client, opts))
	_, err := p.Run()
	return err
}
