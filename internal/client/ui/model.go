package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/yourusername/elalgpt/internal/client/transport"
	"github.com/yourusername/elalgpt/internal/conversation"
)

// Fixed rows around the message list
const (
	headerHeight = 1
	footerHeight = 2 // status line + input bar
)

const (
	defaultReplyDelay     = 800 * time.Millisecond
	defaultTypingInterval = 200 * time.Millisecond
	statusTTL             = 2 * time.Second
	bubbleWidthRatio      = 0.7
)

// Options configures a chat screen
type Options struct {
	Transport transport.Transport // required
	Greeting  string
	Dark      bool
	Haptics   Haptics
	Logger    *zap.Logger

	// ReplyDelay is the pause between a reply arriving and it being shown; negative disables it
	ReplyDelay     time.Duration
	TypingInterval time.Duration
	Now            func() time.Time
}

// span records which rendered lines of the message list belong to a message
type span struct {
	index      int
	start, end int // [start, end) in content lines
}

// Model is the Bubble Tea model for the chat screen. All conversation data lives in
// conv; the widgets only mirror it.
type Model struct {
	conv      conversation.State
	transport transport.Transport
	haptics   Haptics
	logger    *zap.Logger
	now       func() time.Time

	input    textinput.Model
	viewport viewport.Model
	styles   styles
	dark     bool

	width  int
	height int
	spans  []span

	selected    int // index of the highlighted bot message, -1 for none
	typingFrame int
	animating   bool // a typing tick is scheduled

	replyDelay     time.Duration
	typingInterval time.Duration

	status      string
	statusError bool
	statusSeq   int
}

// NewModel creates the chat screen
func NewModel(opts Options) Model {
	if opts.Haptics == nil {
		opts.Haptics = NoHaptics{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ReplyDelay == 0 {
		opts.ReplyDelay = defaultReplyDelay
	}
	if opts.TypingInterval <= 0 {
		opts.TypingInterval = defaultTypingInterval
	}

	in := textinput.New()
	in.Placeholder = "Type a message..."
	in.Prompt = ""
	in.CharLimit = 0
	in.Focus()

	m := Model{
		conv:           conversation.New(opts.Greeting, opts.Now()),
		transport:      opts.Transport,
		haptics:        opts.Haptics,
		logger:         opts.Logger,
		now:            opts.Now,
		input:          in,
		viewport:       viewport.New(80, 24-headerHeight-footerHeight),
		dark:           opts.Dark,
		width:          80,
		height:         24,
		selected:       -1,
		replyDelay:     opts.ReplyDelay,
		typingInterval: opts.TypingInterval,
	}
	m.applyTheme()
	m.layout()
	m.refresh(true)
	return m
}

// Conversation returns the current conversation state
func (m Model) Conversation() conversation.State {
	return m.conv
}

// Dark reports whether the dark display mode is active
func (m Model) Dark() bool {
	return m.dark
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refresh(true)
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case replyMsg:
		if m.replyDelay < 0 {
			return m.deliver(msg.text, msg.at)
		}
		return m, deliverAfter(m.replyDelay, msg)

	case deliverMsg:
		return m.deliver(msg.text, msg.at)

	case typingTickMsg:
		if !m.conv.IsTyping() {
			m.animating = false
			m.typingFrame = 0
			return m, nil
		}
		m.typingFrame = (m.typingFrame + 1) % 3
		m.refresh(false)
		return m, typingTickCmd(m.typingInterval)

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusError = false
		}
		return m, nil
	}

	// cursor blink and other widget-internal messages
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat screen
func (m Model) View() string {
	return m.viewHeader() + "\n" +
		m.viewport.View() + "\n" +
		m.viewStatus() + "\n" +
		m.viewInput()
}

// applyTheme rebuilds every style for the current display mode
func (m *Model) applyTheme() {
	m.styles = newStyles(m.dark)
	m.viewport.Style = m.styles.canvas

	m.input.TextStyle = m.styles.field.UnsetPadding()
	m.input.PlaceholderStyle = m.styles.field.UnsetPadding().Foreground(m.styles.palette.muted)
	m.input.Cursor.Style = m.styles.field.UnsetPadding()
}

// layout sizes the widgets to the terminal
func (m *Model) layout() {
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-headerHeight-footerHeight, 1)
	m.input.Width = max(m.width-m.sendButtonWidth()-m.styles.field.GetHorizontalFrameSize()-1, 1)
}

// refresh re-renders the message list; bottom scrolls to the newest line
func (m *Model) refresh(bottom bool) {
	content, spans := m.renderHistory()
	m.spans = spans
	m.viewport.SetContent(content)
	if bottom {
		m.viewport.GotoBottom()
	}
}
