package ui

import "github.com/charmbracelet/lipgloss"

// Brand palette
var (
	brandPink     = lipgloss.Color("#FF69B4") // bot bubbles, title, send button
	brandPinkDeep = lipgloss.Color("#D94F98") // highlighted bot bubble
	sunYellow     = lipgloss.Color("#FFD700") // theme toggle
	white         = lipgloss.Color("#FFFFFF")
	black         = lipgloss.Color("#000000")
	stampGray     = lipgloss.Color("#808080")
	stampPink     = lipgloss.Color("#FFE1F0") // white at 80% over pink
	errorRed      = lipgloss.Color("#E07B7B")
)

// palette holds the colours that change with the display mode
type palette struct {
	canvas     lipgloss.Color // message list background
	bar        lipgloss.Color // header and input bar background
	fieldBg    lipgloss.Color
	fieldFg    lipgloss.Color
	muted      lipgloss.Color
	dotDimmed  lipgloss.Color
	toggleIcon string
}

var (
	darkPalette = palette{
		canvas:     black,
		bar:        lipgloss.Color("#1A1A1A"),
		fieldBg:    white,
		fieldFg:    black,
		muted:      lipgloss.Color("#8A8A8A"),
		dotDimmed:  lipgloss.Color("#FFB4DA"),
		toggleIcon: "☀",
	}

	lightPalette = palette{
		canvas:     lipgloss.Color("#F2F2F2"),
		bar:        lipgloss.Color("#FAFAFA"),
		fieldBg:    lipgloss.Color("#E6E6E6"),
		fieldFg:    black,
		muted:      lipgloss.Color("#6E6E6E"),
		dotDimmed:  lipgloss.Color("#FFB4DA"),
		toggleIcon: "☾",
	}
)

// styles is the full set of styles for one display mode
type styles struct {
	palette palette

	canvas lipgloss.Style
	bar    lipgloss.Style
	title  lipgloss.Style
	toggle lipgloss.Style

	userBubble    lipgloss.Style
	userStamp     lipgloss.Style
	botBubble     lipgloss.Style
	botStamp      lipgloss.Style
	selected      lipgloss.Style
	selectedStamp lipgloss.Style

	typingPad lipgloss.Style
	dotOn     lipgloss.Style
	dotOff    lipgloss.Style

	field      lipgloss.Style
	sendButton lipgloss.Style

	help        lipgloss.Style
	status      lipgloss.Style
	statusError lipgloss.Style
}

func newStyles(dark bool) styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}

	bubble := lipgloss.NewStyle().Padding(0, 1)

	return styles{
		palette: p,

		canvas: lipgloss.NewStyle().Background(p.canvas),
		bar:    lipgloss.NewStyle().Background(p.bar),
		title: lipgloss.NewStyle().
			Background(p.bar).
			Foreground(brandPink).
			Bold(true).
			Padding(0, 1),
		toggle: lipgloss.NewStyle().
			Background(p.bar).
			Foreground(sunYellow).
			Padding(0, 1),

		userBubble: bubble.
			Background(white).
			Foreground(black),
		userStamp: bubble.
			Background(white).
			Foreground(stampGray),
		botBubble: bubble.
			Background(brandPink).
			Foreground(white),
		botStamp: bubble.
			Background(brandPink).
			Foreground(stampPink),
		selected: bubble.
			Background(brandPinkDeep).
			Foreground(white).
			Bold(true),
		selectedStamp: bubble.
			Background(brandPinkDeep).
			Foreground(stampPink),

		typingPad: lipgloss.NewStyle().Background(brandPink),
		dotOn: lipgloss.NewStyle().
			Background(brandPink).
			Foreground(white).
			Bold(true),
		dotOff: lipgloss.NewStyle().
			Background(brandPink).
			Foreground(p.dotDimmed),

		field: lipgloss.NewStyle().
			Background(p.fieldBg).
			Foreground(p.fieldFg).
			Padding(0, 1),
		sendButton: lipgloss.NewStyle().
			Background(brandPink).
			Foreground(white).
			Bold(true).
			Padding(0, 1),

		help: lipgloss.NewStyle().
			Background(p.bar).
			Foreground(p.muted).
			Italic(true).
			Padding(0, 1),
		status: lipgloss.NewStyle().
			Background(p.bar).
			Foreground(brandPink).
			Padding(0, 1),
		statusError: lipgloss.NewStyle().
			Background(p.bar).
			Foreground(errorRed).
			Bold(true).
			Padding(0, 1),
	}
}
