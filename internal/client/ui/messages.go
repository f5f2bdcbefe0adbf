package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yourusername/elalgpt/internal/client/transport"
)

// replyMsg is sent when the transport has resolved a request
type replyMsg struct {
	text string
	at   time.Time // when the reply arrived, before the display delay
}

// deliverMsg is sent once the display delay for a reply has passed
type deliverMsg replyMsg

// typingTickMsg advances the typing indicator animation
type typingTickMsg time.Time

// statusClearMsg hides the status line unless a newer status replaced it
type statusClearMsg struct {
	seq int
}

// sendCmd runs one request in the background and reports the reply.
// Transports never fail, so a replyMsg always comes back.
func sendCmd(t transport.Transport, text string, now func() time.Time) tea.Cmd {
	return func() tea.Msg {
		reply := t.Send(context.Background(), text)
		return replyMsg{text: reply, at: now()}
	}
}

// deliverAfter holds a reply back for the display delay
func deliverAfter(delay time.Duration, reply replyMsg) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return deliverMsg(reply)
	})
}

// typingTickCmd returns a command that sends tick messages for the typing indicator
func typingTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return typingTickMsg(t)
	})
}

func clearStatusCmd(after time.Duration, seq int) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}
