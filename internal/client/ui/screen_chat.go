package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/yourusername/elalgpt/internal/conversation"
	"github.com/yourusername/elalgpt/internal/linkify"
)

const (
	appTitle  = "elalgpt"
	sendLabel = "➤"
	helpText  = "enter send • ctrl+t theme • alt+↑/↓ select • ctrl+y copy • esc quit"

	underlineOn  = termenv.CSI + termenv.UnderlineSeq + "m"
	underlineOff = termenv.CSI + "24m"
)

// updateKeys handles keyboard input
func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "enter", "ctrl+s":
		return m.submit()

	case "ctrl+t":
		return m.toggleTheme(), nil

	case "alt+up":
		return m.moveSelection(-1), nil

	case "alt+down":
		return m.moveSelection(1), nil

	case "ctrl+y":
		idx := m.selected
		if idx < 0 {
			idx = m.lastBotIndex()
		}
		return m.copyMessage(idx)

	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.conv = conversation.ApplyInput(m.conv, m.input.Value())
	return m, cmd
}

// updateMouse maps clicks onto the toggle, the send button and bot bubbles
func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if tea.MouseEvent(msg).IsWheel() {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	switch {
	case msg.Y < headerHeight:
		if msg.X >= m.width-m.toggleWidth() {
			return m.toggleTheme(), nil
		}

	case msg.Y == m.height-1:
		if msg.X >= m.width-m.sendButtonWidth() {
			return m.submit()
		}

	case msg.Y < headerHeight+m.viewport.Height:
		line := m.viewport.YOffset + msg.Y - headerHeight
		if idx := m.messageAtLine(line); idx >= 0 {
			return m.copyMessage(idx)
		}
	}

	return m, nil
}

// submit sends the input buffer. Blank input is dropped without a request.
func (m Model) submit() (tea.Model, tea.Cmd) {
	next, sent, ok := conversation.ApplyUserSend(m.conv, m.conv.Input(), m.now())
	if !ok {
		return m, nil
	}

	m.conv = next
	m.input.SetValue("")
	m.haptics.Impact()
	m.refresh(true)

	m.logger.Debug("message sent",
		zap.String("id", sent.ID),
		zap.Int("pending", m.conv.Pending()))

	cmds := []tea.Cmd{sendCmd(m.transport, sent.Text, m.now)}
	if !m.animating {
		m.animating = true
		cmds = append(cmds, typingTickCmd(m.typingInterval))
	}
	return m, tea.Batch(cmds...)
}

// deliver appends a reply whose display delay has passed
func (m Model) deliver(text string, at time.Time) (tea.Model, tea.Cmd) {
	m.conv = conversation.ApplyReplyArrived(m.conv, text, at)
	m.haptics.Impact()
	m.refresh(true)

	m.logger.Debug("reply shown", zap.Int("pending", m.conv.Pending()))
	return m, nil
}

func (m Model) toggleTheme() Model {
	m.dark = !m.dark
	m.applyTheme()
	m.refresh(false)
	return m
}

// moveSelection steps the highlight across bot messages; stepping past the newest
// clears it
func (m Model) moveSelection(step int) Model {
	bots := m.botIndices()
	if len(bots) == 0 {
		return m
	}

	pos := -1
	for i, idx := range bots {
		if idx == m.selected {
			pos = i
			break
		}
	}

	switch {
	case pos < 0 && step < 0:
		pos = len(bots) - 1
	case pos < 0:
		return m
	default:
		pos += step
	}

	if pos < 0 {
		pos = 0
	}
	if pos >= len(bots) {
		m.selected = -1
		m.refresh(true)
		return m
	}

	m.selected = bots[pos]
	m.refresh(false)
	m.scrollTo(m.selected)
	return m
}

// copyMessage puts a bot message's raw text on the clipboard
func (m Model) copyMessage(idx int) (tea.Model, tea.Cmd) {
	if idx < 0 || idx >= m.conv.Len() {
		return m, nil
	}
	msg := m.conv.At(idx)
	if msg.IsUser {
		return m, nil
	}

	if err := clipboardWriteAll(msg.Text); err != nil {
		m.logger.Warn("clipboard write failed", zap.Error(err))
		return m.setStatus("Failed to copy message", true)
	}

	m.haptics.Impact()
	return m.setStatus("Copied to clipboard", false)
}

func (m Model) setStatus(text string, isError bool) (tea.Model, tea.Cmd) {
	m.statusSeq++
	m.status = text
	m.statusError = isError
	return m, clearStatusCmd(statusTTL, m.statusSeq)
}

func (m Model) botIndices() []int {
	var out []int
	for i := 0; i < m.conv.Len(); i++ {
		if !m.conv.At(i).IsUser {
			out = append(out, i)
		}
	}
	return out
}

func (m Model) lastBotIndex() int {
	for i := m.conv.Len() - 1; i >= 0; i-- {
		if !m.conv.At(i).IsUser {
			return i
		}
	}
	return -1
}

// messageAtLine returns the message rendered on a content line, or -1
func (m Model) messageAtLine(line int) int {
	for _, s := range m.spans {
		if line >= s.start && line < s.end {
			return s.index
		}
	}
	return -1
}

// scrollTo brings a message fully into view
func (m *Model) scrollTo(idx int) {
	for _, s := range m.spans {
		if s.index != idx {
			continue
		}
		switch {
		case s.start < m.viewport.YOffset:
			m.viewport.SetYOffset(s.start)
		case s.end > m.viewport.YOffset+m.viewport.Height:
			m.viewport.SetYOffset(s.end - m.viewport.Height)
		}
		return
	}
}

func (m Model) toggleWidth() int {
	return lipgloss.Width(m.styles.toggle.Render(m.styles.palette.toggleIcon))
}

func (m Model) sendButtonWidth() int {
	return lipgloss.Width(m.styles.sendButton.Render(sendLabel))
}

// viewHeader renders the title bar with the display mode toggle on the right
func (m Model) viewHeader() string {
	title := m.styles.title.Render(appTitle)
	toggle := m.styles.toggle.Render(m.styles.palette.toggleIcon)
	gap := max(m.width-lipgloss.Width(title)-lipgloss.Width(toggle), 0)
	return title + m.styles.bar.Render(strings.Repeat(" ", gap)) + toggle
}

// viewStatus shows the last status message, or the key help
func (m Model) viewStatus() string {
	style, text := m.styles.help, helpText
	if m.status != "" {
		style, text = m.styles.status, m.status
		if m.statusError {
			style = m.styles.statusError
		}
	}
	return style.Width(m.width).MaxWidth(m.width).Render(text)
}

// viewInput renders the text field and the send button
func (m Model) viewInput() string {
	send := m.styles.sendButton.Render(sendLabel)
	fieldWidth := max(m.width-lipgloss.Width(send)-1, 1)
	field := m.styles.field.Width(fieldWidth).MaxWidth(fieldWidth).Render(m.input.View())
	return field + m.styles.bar.Render(" ") + send
}

// renderHistory renders every bubble plus the typing indicator and records which
// lines each message occupies
func (m Model) renderHistory() (string, []span) {
	width := m.viewport.Width
	gap := m.styles.canvas.Width(width).Render("")

	var lines []string
	spans := make([]span, 0, m.conv.Len())

	for i := 0; i < m.conv.Len(); i++ {
		msg := m.conv.At(i)

		pos := lipgloss.Left
		if msg.IsUser {
			pos = lipgloss.Right
		}
		placed := lipgloss.PlaceHorizontal(width, pos, m.renderBubble(msg, i == m.selected),
			lipgloss.WithWhitespaceBackground(m.styles.palette.canvas))

		start := len(lines)
		lines = append(lines, strings.Split(placed, "\n")...)
		spans = append(spans, span{index: i, start: start, end: len(lines)})
		lines = append(lines, gap)
	}

	if m.conv.IsTyping() {
		placed := lipgloss.PlaceHorizontal(width, lipgloss.Left, m.renderTyping(),
			lipgloss.WithWhitespaceBackground(m.styles.palette.canvas))
		lines = append(lines, strings.Split(placed, "\n")...)
	}

	return strings.Join(lines, "\n"), spans
}

// renderBubble renders one message with its timestamp underneath
func (m Model) renderBubble(msg conversation.Message, selected bool) string {
	body, stamp := m.styles.botBubble, m.styles.botStamp
	align := lipgloss.Left
	switch {
	case msg.IsUser:
		body, stamp = m.styles.userBubble, m.styles.userStamp
		align = lipgloss.Right
	case selected:
		body, stamp = m.styles.selected, m.styles.selectedStamp
	}

	maxWidth := max(int(float64(m.viewport.Width)*bubbleWidthRatio), 8)
	width := max(lipgloss.Width(msg.Text), lipgloss.Width(msg.Time)) + body.GetHorizontalFrameSize()
	width = min(width, maxWidth)

	text := body.Width(width).Render(linkify.Render(msg.Text, hyperlink))
	when := stamp.Width(width).Align(align).Render(msg.Time)
	return lipgloss.JoinVertical(align, text, when)
}

// renderTyping renders the three-dot indicator with one dot lit per frame
func (m Model) renderTyping() string {
	pad := m.styles.typingPad.Render(" ")
	parts := []string{pad}
	for i := 0; i < 3; i++ {
		dot := m.styles.dotOff
		if i == m.typingFrame {
			dot = m.styles.dotOn
		}
		parts = append(parts, dot.Render("●"), pad)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// hyperlink makes a URL clickable in terminals that support OSC 8 and underlines it
// everywhere else
func hyperlink(url string) string {
	return termenv.Hyperlink(url, underlineOn+url+underlineOff)
}
