package tui

import (
	"github.com/charmbracelet/lipgloss"
)

const (
	colorCyan   = lipgloss.Color("12")
	colorYellow = lipgloss.Color("11")
	colorGreen  = lipgloss.Color("10")
	colorRed    = lipgloss.Color("9")
	colorGray   = lipgloss.Color("8")
	colorBar    = lipgloss.Color("236")
	colorPink   = lipgloss.Color("205")
)

// Status item icons. Unknown icon names render as their name in brackets.
var iconSymbols = map[string]string{
	"debug-start": "▶",
	"debug-stop":  "■",
	"warning":     "⚠",
	"terminal":    "❯",
}

var (
	statusBarStyle = lipgloss.NewStyle().
			Background(colorBar).
			Foreground(lipgloss.Color("252"))

	statusItemStyle = lipgloss.NewStyle().
			Background(colorBar).
			Foreground(colorGreen).
			Bold(true)

	statusItemOffStyle = statusItemStyle.Foreground(colorRed)

	notificationStyle = lipgloss.NewStyle().Foreground(colorYellow)

	dimStyle = lipgloss.NewStyle().Foreground(colorGray)

	ghostStyle = lipgloss.NewStyle().Foreground(colorGray).Italic(true)

	cursorStyle = lipgloss.NewStyle().Reverse(true)

	paneTitleStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)

	lineNumberStyle = lipgloss.NewStyle().Foreground(colorGray).Width(4).Align(lipgloss.Right).MarginRight(1)

	warningBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorYellow).
			Padding(1, 2)

	warningActionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(colorYellow).
				Padding(0, 1)

	paletteBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorCyan).
			Padding(0, 1)

	paletteSelectedStyle = lipgloss.NewStyle().Foreground(colorPink).Bold(true)

	paletteMatchStyle = lipgloss.NewStyle().Underline(true)
)

func iconSymbol(icon string) string {
	if icon == "" {
		return ""
	}
	if s, ok := iconSymbols[icon]; ok {
		return s
	}
	return "[" + icon + "]"
}
