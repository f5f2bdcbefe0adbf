// Package conversation holds the chat screen's state as a plain value.
//
// Every change goes through one of the Apply functions, which return a new State and
// leave the argument untouched. The message list is append-only: existing messages are
// never edited, removed or reordered, so display order always equals append order.
//
// More than one request may be in flight. Each reply is appended when it arrives, so
// replies land in arrival order, and the typing flag stays set until every outstanding
// request has been answered.
package conversation

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeLayout renders timestamps as "hh:mm AM/PM"
const TimeLayout = "03:04 PM"

// DefaultGreeting is the bot message a new conversation starts with
const DefaultGreeting = "Hi, welcome! What question do you have?"

// Message is one chat bubble. It is never modified after creation.
type Message struct {
	ID     string
	Text   string
	IsUser bool
	Time   string
}

// NewMessage stamps text with a fresh ID and the formatted time
func NewMessage(text string, isUser bool, at time.Time) Message {
	return Message{
		ID:     uuid.NewString(),
		Text:   text,
		IsUser: isUser,
		Time:   FormatTime(at),
	}
}

// FormatTime formats t the way message timestamps are displayed
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// State is the conversation: messages, the input buffer and the number of
// requests waiting for a reply.
type State struct {
	messages []Message
	input    string
	pending  int
}

// New starts a conversation. A non-empty greeting becomes the first bot message.
func New(greeting string, now time.Time) State {
	var s State
	if greeting != "" {
		s.messages = []Message{NewMessage(greeting, false, now)}
	}
	return s
}

// Messages returns a copy of the messages, oldest first
func (s State) Messages() []Message {
	return slices.Clone(s.messages)
}

// Len returns the number of messages
func (s State) Len() int {
	return len(s.messages)
}

// At returns the i-th message
func (s State) At(i int) Message {
	return s.messages[i]
}

// Last returns the newest message, if any
func (s State) Last() (Message, bool) {
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// Input returns the input buffer
func (s State) Input() string {
	return s.input
}

// Pending returns how many requests are still waiting for a reply
func (s State) Pending() int {
	return s.pending
}

// IsTyping reports whether the typing indicator should be shown
func (s State) IsTyping() bool {
	return s.pending > 0
}

// ApplyInput replaces the input buffer
func ApplyInput(s State, text string) State {
	s.input = text
	return s
}

// ApplyUserSend appends the trimmed text as a user message, clears the input buffer and
// marks one more request as pending. Text that is empty after trimming is ignored: the
// state comes back unchanged and ok is false.
func ApplyUserSend(s State, text string, now time.Time) (next State, sent Message, ok bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return s, Message{}, false
	}

	sent = NewMessage(trimmed, true, now)
	s.messages = appendMessage(s.messages, sent)
	s.input = ""
	s.pending++
	return s, sent, true
}

// ApplyReplyArrived appends a bot message stamped with the time the reply arrived and
// settles one pending request.
func ApplyReplyArrived(s State, text string, at time.Time) State {
	s.messages = appendMessage(s.messages, NewMessage(text, false, at))
	if s.pending > 0 {
		s.pending--
	}
	return s
}

// appendMessage always copies so that states derived from the same parent never share
// a backing array.
func appendMessage(msgs []Message, m Message) []Message {
	return append(slices.Clip(msgs), m)
}
